package job

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusOpen:
		return StatusOpen, true
	case StatusClosed:
		return StatusClosed, true
	default:
		return "", false
	}
}

type Type string

const (
	TypeFullTime Type = "full-time"
	TypePartTime Type = "part-time"
	TypeContract Type = "contract"
)

func ParseType(raw string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeFullTime:
		return TypeFullTime, true
	case TypePartTime:
		return TypePartTime, true
	case TypeContract:
		return TypeContract, true
	default:
		return "", false
	}
}

// Categories offered on the job search screen.
var Categories = []string{
	"Construction",
	"Delivery",
	"Cleaning",
	"Painting",
	"Electrical",
	"Plumbing",
	"Carpentry",
}

type Job struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	EmployerID         string     `json:"employerId"`
	EmployerName       string     `json:"employerName"`
	Location           string     `json:"location"`
	Pincode            string     `json:"pincode,omitempty"`
	Area               string     `json:"area,omitempty"`
	Wage               int        `json:"wage"`
	Duration           string     `json:"duration"`
	Category           string     `json:"category"`
	Status             Status     `json:"status"`
	Applicants         []string   `json:"applicants"`
	CreatedAt          time.Time  `json:"createdAt"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
	JobType            Type       `json:"jobType,omitempty"`
	ExperienceRequired string     `json:"experienceRequired,omitempty"`
}

func (j Job) IsOpen() bool {
	return j.Status == StatusOpen
}

// Expired reports whether an expiry is set and has passed at now.
func (j Job) Expired(now time.Time) bool {
	return j.ExpiresAt != nil && !j.ExpiresAt.After(now)
}

// ExperienceYears parses the leading integer of ExperienceRequired, as in
// "3+ years". ok is false when there is none.
func (j Job) ExperienceYears() (int, bool) {
	s := strings.TrimSpace(j.ExperienceRequired)
	end := 0
	for end < len(s) && unicode.IsDigit(rune(s[end])) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// HasApplicant reports whether workerID is in the applicant list.
func (j Job) HasApplicant(workerID string) bool {
	for _, id := range j.Applicants {
		if id == workerID {
			return true
		}
	}
	return false
}

// Patch holds the fields of a partial update. Nil fields are left as is.
type Patch struct {
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	Location           *string    `json:"location,omitempty"`
	Pincode            *string    `json:"pincode,omitempty"`
	Area               *string    `json:"area,omitempty"`
	Wage               *int       `json:"wage,omitempty"`
	Duration           *string    `json:"duration,omitempty"`
	Category           *string    `json:"category,omitempty"`
	Status             *Status    `json:"status,omitempty"`
	ExpiresAt          *time.Time `json:"expiresAt,omitempty"`
	JobType            *Type      `json:"jobType,omitempty"`
	ExperienceRequired *string    `json:"experienceRequired,omitempty"`
}

func (p Patch) Apply(j *Job) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&j.Title, p.Title)
	set(&j.Description, p.Description)
	set(&j.Location, p.Location)
	set(&j.Pincode, p.Pincode)
	set(&j.Area, p.Area)
	set(&j.Duration, p.Duration)
	set(&j.Category, p.Category)
	set(&j.ExperienceRequired, p.ExperienceRequired)
	if p.Wage != nil {
		j.Wage = *p.Wage
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.ExpiresAt != nil {
		t := *p.ExpiresAt
		j.ExpiresAt = &t
	}
	if p.JobType != nil {
		j.JobType = *p.JobType
	}
}
