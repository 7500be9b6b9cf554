package user

import (
	"strings"
	"time"
)

type Type string

const (
	TypeWorker   Type = "worker"
	TypeEmployer Type = "employer"
	TypeAdmin    Type = "admin"
)

func ParseType(raw string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeWorker:
		return TypeWorker, true
	case TypeEmployer:
		return TypeEmployer, true
	case TypeAdmin:
		return TypeAdmin, true
	default:
		return "", false
	}
}

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"passwordHash,omitempty"`
	Phone           string    `json:"phone"`
	UserType        Type      `json:"userType"`
	Location        string    `json:"location"`
	Pincode         string    `json:"pincode,omitempty"`
	Area            string    `json:"area,omitempty"`
	Skills          []string  `json:"skills,omitempty"`
	Company         string    `json:"company,omitempty"`
	Experience      string    `json:"experience,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	ProfileComplete *int      `json:"profileComplete,omitempty"`
	Rating          *float64  `json:"rating,omitempty"`
	TotalRatings    *int      `json:"totalRatings,omitempty"`
}

// Sanitized returns a copy safe to hand to callers or sessions.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	if u.Skills != nil {
		u.Skills = append([]string(nil), u.Skills...)
	}
	return u
}

// PublicProfile is what other users may see about a user.
type PublicProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	UserType     Type      `json:"userType"`
	Location     string    `json:"location"`
	Area         string    `json:"area,omitempty"`
	Skills       []string  `json:"skills,omitempty"`
	Company      string    `json:"company,omitempty"`
	Experience   string    `json:"experience,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	Rating       *float64  `json:"rating,omitempty"`
	TotalRatings *int      `json:"totalRatings,omitempty"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{
		ID:           u.ID,
		Name:         u.Name,
		UserType:     u.UserType,
		Location:     u.Location,
		Area:         u.Area,
		Skills:       append([]string(nil), u.Skills...),
		Company:      u.Company,
		Experience:   u.Experience,
		Bio:          u.Bio,
		CreatedAt:    u.CreatedAt,
		Rating:       u.Rating,
		TotalRatings: u.TotalRatings,
	}
}

// Patch holds the fields of a partial update. Nil fields are left as is.
type Patch struct {
	Name       *string   `json:"name,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Location   *string   `json:"location,omitempty"`
	Pincode    *string   `json:"pincode,omitempty"`
	Area       *string   `json:"area,omitempty"`
	Skills     *[]string `json:"skills,omitempty"`
	Company    *string   `json:"company,omitempty"`
	Experience *string   `json:"experience,omitempty"`
	Bio        *string   `json:"bio,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Location == nil &&
		p.Pincode == nil && p.Area == nil && p.Skills == nil && p.Company == nil &&
		p.Experience == nil && p.Bio == nil
}

func (p Patch) Apply(u *User) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&u.Name, p.Name)
	set(&u.Email, p.Email)
	set(&u.Phone, p.Phone)
	set(&u.Location, p.Location)
	set(&u.Pincode, p.Pincode)
	set(&u.Area, p.Area)
	set(&u.Company, p.Company)
	set(&u.Experience, p.Experience)
	set(&u.Bio, p.Bio)
	if p.Skills != nil {
		u.Skills = cleanSkills(*p.Skills)
	}
}

func cleanSkills(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Completeness scores how much of the profile is filled in, 0 to 100.
func Completeness(u User) int {
	fields := []bool{
		u.Name != "",
		u.Email != "",
		u.Phone != "",
		u.Location != "",
		u.Pincode != "",
		u.Area != "",
		u.Bio != "",
	}
	switch u.UserType {
	case TypeWorker:
		fields = append(fields, len(u.Skills) > 0, u.Experience != "")
	case TypeEmployer:
		fields = append(fields, u.Company != "")
	}
	filled := 0
	for _, f := range fields {
		if f {
			filled++
		}
	}
	return filled * 100 / len(fields)
}

// Actor is the identity a mutation is performed as.
type Actor struct {
	ID   string
	Type Type
}

// System acts with admin rights, for maintenance tools.
var System = Actor{ID: "system", Type: TypeAdmin}

func (a Actor) IsAdmin() bool {
	return a.Type == TypeAdmin
}

// Can reports whether a may act on a resource owned by ownerID.
func (a Actor) Can(ownerID string) bool {
	return a.IsAdmin() || (a.ID != "" && a.ID == ownerID)
}
