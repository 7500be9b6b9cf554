package search

import (
	"sort"
	"strings"
	"time"

	"bluujobs/internal/domain/job"
)

type JobScore struct {
	JobID     string
	Relevance float64
	Freshness float64
	Final     float64
}

// ComputeRelevance weighs query hits by field, capped at 10.
func ComputeRelevance(j job.Job, variants []string) float64 {
	if len(variants) == 0 {
		return 0
	}
	title := Fold(j.Title)
	category := Fold(j.Category)
	location := Fold(j.Location)
	desc := Fold(j.Description)

	score := 0.0
	for _, v := range variants {
		if v == "" {
			continue
		}
		if strings.Contains(title, v) {
			score += 3
		}
		if strings.Contains(category, v) {
			score += 2
		}
		if strings.Contains(location, v) {
			score += 1
		}
		if strings.Contains(desc, v) {
			score += 1
		}
		if score >= 10 {
			return 10
		}
	}
	return score
}

func ComputeFreshness(j job.Job, now time.Time) float64 {
	if j.CreatedAt.IsZero() {
		return 0
	}
	age := now.Sub(j.CreatedAt)
	if age < 0 {
		age = 0
	}
	switch {
	case age <= 24*time.Hour:
		return 5
	case age <= 3*24*time.Hour:
		return 4
	case age <= 7*24*time.Hour:
		return 3
	case age <= 14*24*time.Hour:
		return 2
	case age <= 30*24*time.Hour:
		return 1
	default:
		return 0
	}
}

func ScoreJob(j job.Job, variants []string, now time.Time) JobScore {
	rel := ComputeRelevance(j, variants)
	fresh := ComputeFreshness(j, now)
	return JobScore{
		JobID:     j.ID,
		Relevance: rel,
		Freshness: fresh,
		Final:     rel*2.0 + fresh*1.5,
	}
}

// RankJobs sorts jobs in place by descending score. Equal scores keep their
// relative order.
func RankJobs(jobs []job.Job, variants []string, now time.Time) {
	if len(jobs) < 2 {
		return
	}
	scores := make(map[string]float64, len(jobs))
	for _, j := range jobs {
		scores[j.ID] = ScoreJob(j, variants, now).Final
	}
	sort.SliceStable(jobs, func(i, k int) bool {
		return scores[jobs[i].ID] > scores[jobs[k].ID]
	})
}
