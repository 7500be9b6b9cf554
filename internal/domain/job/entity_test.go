package job_test

import (
	"testing"
	"time"

	"bluujobs/internal/domain/job"

	"github.com/stretchr/testify/assert"
)

func TestExperienceYears(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"3+ years", 3, true},
		{"10 years", 10, true},
		{" 1+ year", 1, true},
		{"Fresher", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		n, ok := job.Job{ExperienceRequired: tc.in}.ExperienceYears()
		assert.Equal(t, tc.want, n, tc.in)
		assert.Equal(t, tc.wantOK, ok, tc.in)
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	assert.False(t, job.Job{}.Expired(now))
	assert.True(t, job.Job{ExpiresAt: &past}.Expired(now))
	assert.True(t, job.Job{ExpiresAt: &now}.Expired(now))
	assert.False(t, job.Job{ExpiresAt: &future}.Expired(now))
}

func TestPatchApplyLeavesUnsetFields(t *testing.T) {
	j := job.Job{Title: "Plumber", Wage: 800, Status: job.StatusOpen}
	wage := 950
	closed := job.StatusClosed
	job.Patch{Wage: &wage, Status: &closed}.Apply(&j)

	assert.Equal(t, "Plumber", j.Title)
	assert.Equal(t, 950, j.Wage)
	assert.Equal(t, job.StatusClosed, j.Status)
}
