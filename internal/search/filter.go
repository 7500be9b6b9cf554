package search

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"bluujobs/internal/domain/job"
)

const (
	SortNewest    = "newest"
	SortWageHigh  = "wage-high"
	SortWageLow   = "wage-low"
	SortNearest   = "nearest"
	SortRelevance = "relevance"

	ExperienceEntry        = "entry"
	ExperienceIntermediate = "intermediate"
	ExperienceExpert       = "expert"

	// MaxWage is the top of the wage slider on the search screen.
	MaxWage = 2000
)

type Options struct {
	Query       string `json:"query,omitempty"`
	Category    string `json:"category,omitempty"`
	Location    string `json:"location,omitempty"`
	MinWage     int    `json:"minWage,omitempty"`
	MaxWage     int    `json:"maxWage,omitempty"`
	JobType     string `json:"jobType,omitempty"`
	Experience  string `json:"experience,omitempty"`
	SortBy      string `json:"sortBy,omitempty"`
	NearPincode string `json:"nearPincode,omitempty"`
	OpenOnly    bool   `json:"openOnly,omitempty"`
}

// Normalize trims the options and folds "all" selections to empty.
func (o Options) Normalize() Options {
	pick := func(s string) string {
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, "all") {
			return ""
		}
		return s
	}
	o.Query = strings.TrimSpace(o.Query)
	o.Category = pick(o.Category)
	o.Location = strings.TrimSpace(o.Location)
	o.JobType = pick(o.JobType)
	o.Experience = strings.ToLower(pick(o.Experience))
	o.SortBy = strings.ToLower(strings.TrimSpace(o.SortBy))
	if o.SortBy == "" {
		o.SortBy = SortNewest
	}
	o.NearPincode = strings.TrimSpace(o.NearPincode)
	if o.MinWage < 0 {
		o.MinWage = 0
	}
	if o.MaxWage < 0 {
		o.MaxWage = 0
	}
	return o
}

// Apply filters and sorts jobs. The input slice is not modified.
func Apply(jobs []job.Job, opts Options) []job.Job {
	opts = opts.Normalize()
	variants := ExpandQuery(NormalizeQuery(opts.Query))

	out := make([]job.Job, 0, len(jobs))
	for _, j := range jobs {
		if Match(j, opts, variants) {
			out = append(out, j)
		}
	}
	Sort(out, opts, variants)
	return out
}

// Match reports whether j passes every filter in opts.
func Match(j job.Job, opts Options, variants []string) bool {
	if opts.OpenOnly && !j.IsOpen() {
		return false
	}
	if len(variants) > 0 && !matchQuery(j, variants) {
		return false
	}
	if opts.Category != "" && Fold(j.Category) != Fold(opts.Category) {
		return false
	}
	if opts.Location != "" {
		loc := Fold(opts.Location)
		if !strings.Contains(Fold(j.Location), loc) &&
			!strings.Contains(Fold(j.Area), loc) &&
			!strings.Contains(j.Pincode, opts.Location) {
			return false
		}
	}
	if j.Wage < opts.MinWage {
		return false
	}
	if opts.MaxWage > 0 && j.Wage > opts.MaxWage {
		return false
	}
	if opts.JobType != "" && !strings.EqualFold(string(j.JobType), opts.JobType) {
		return false
	}
	if opts.Experience != "" && !matchExperience(j, opts.Experience) {
		return false
	}
	return true
}

func matchQuery(j job.Job, variants []string) bool {
	fields := []string{Fold(j.Title), Fold(j.Category), Fold(j.Location), Fold(j.Description)}
	for _, v := range variants {
		for _, f := range fields {
			if strings.Contains(f, v) {
				return true
			}
		}
	}
	return false
}

func matchExperience(j job.Job, level string) bool {
	years, ok := j.ExperienceYears()
	if !ok {
		return true
	}
	switch level {
	case ExperienceEntry:
		return years <= 1
	case ExperienceIntermediate:
		return years >= 2 && years <= 4
	case ExperienceExpert:
		return years >= 5
	default:
		return true
	}
}

// Sort orders jobs in place by opts.SortBy. Ties fall back to newest first.
func Sort(jobs []job.Job, opts Options, variants []string) {
	newer := func(a, b job.Job) bool { return a.CreatedAt.After(b.CreatedAt) }

	switch opts.SortBy {
	case SortWageHigh:
		sort.SliceStable(jobs, func(i, k int) bool {
			if jobs[i].Wage != jobs[k].Wage {
				return jobs[i].Wage > jobs[k].Wage
			}
			return newer(jobs[i], jobs[k])
		})
	case SortWageLow:
		sort.SliceStable(jobs, func(i, k int) bool {
			if jobs[i].Wage != jobs[k].Wage {
				return jobs[i].Wage < jobs[k].Wage
			}
			return newer(jobs[i], jobs[k])
		})
	case SortNearest:
		origin, ok := parsePincode(opts.NearPincode)
		if !ok {
			sort.SliceStable(jobs, func(i, k int) bool { return newer(jobs[i], jobs[k]) })
			return
		}
		sort.SliceStable(jobs, func(i, k int) bool {
			di, oki := distance(jobs[i], origin)
			dk, okk := distance(jobs[k], origin)
			if oki != okk {
				return oki
			}
			if di != dk {
				return di < dk
			}
			return newer(jobs[i], jobs[k])
		})
	case SortRelevance:
		if len(variants) == 0 {
			sort.SliceStable(jobs, func(i, k int) bool { return newer(jobs[i], jobs[k]) })
			return
		}
		RankJobs(jobs, variants, time.Now())
	default:
		sort.SliceStable(jobs, func(i, k int) bool { return newer(jobs[i], jobs[k]) })
	}
}

func parsePincode(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func distance(j job.Job, origin int) (int, bool) {
	p, ok := parsePincode(j.Pincode)
	if !ok {
		return 0, false
	}
	d := p - origin
	if d < 0 {
		d = -d
	}
	return d, true
}
