package search_test

import (
	"testing"
	"time"

	"bluujobs/internal/domain/job"
	"bluujobs/internal/search"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func fixtures() []job.Job {
	return []job.Job{
		{ID: "1", Title: "Urgent: Plumber Needed for Pipe Leakage", Category: "Plumbing", Location: "Andheri West, Mumbai", Pincode: "400058", Wage: 800, Status: job.StatusOpen, JobType: job.TypeContract, ExperienceRequired: "3+ years", CreatedAt: base.Add(-24 * time.Hour)},
		{ID: "2", Title: "House Cleaning for 2BHK Apartment", Category: "Cleaning", Location: "Bandra West, Mumbai", Pincode: "400050", Wage: 600, Status: job.StatusOpen, JobType: job.TypeContract, ExperienceRequired: "2+ years", CreatedAt: base.Add(-48 * time.Hour)},
		{ID: "7", Title: "Construction Labor - Urgent", Category: "Construction", Location: "Thane West", Pincode: "400601", Wage: 750, Status: job.StatusOpen, JobType: job.TypeFullTime, ExperienceRequired: "1+ years", CreatedAt: base.Add(-24*time.Hour - time.Minute)},
		{ID: "9", Title: "Electrician for Office Wiring Setup", Category: "Electrical", Location: "Powai, Mumbai", Pincode: "400076", Wage: 1200, Status: job.StatusClosed, JobType: job.TypeContract, ExperienceRequired: "7+ years", CreatedAt: base.Add(-72 * time.Hour)},
		{ID: "x", Title: "Helper", Category: "Delivery", Location: "Somewhere", Wage: 500, Status: job.StatusOpen, CreatedAt: base.Add(-96 * time.Hour)},
	}
}

func ids(jobs []job.Job) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ID)
	}
	return out
}

func TestDefaultSortIsNewestFirst(t *testing.T) {
	got := search.Apply(fixtures(), search.Options{})
	assert.Equal(t, []string{"1", "7", "2", "9", "x"}, ids(got))
}

func TestQueryMatchesTitleCategoryLocation(t *testing.T) {
	assert.Equal(t, []string{"1"}, ids(search.Apply(fixtures(), search.Options{Query: "PIPE"})))
	assert.Equal(t, []string{"2"}, ids(search.Apply(fixtures(), search.Options{Query: "cleaning"})))
	assert.Equal(t, []string{"9"}, ids(search.Apply(fixtures(), search.Options{Query: "powai"})))
	assert.Equal(t, []string{"9"}, ids(search.Apply(fixtures(), search.Options{Query: "electrician"})))
}

func TestQuerySynonyms(t *testing.T) {
	assert.Equal(t, []string{"2"}, ids(search.Apply(fixtures(), search.Options{Query: "maid"})))
}

func TestCategoryAllAndExact(t *testing.T) {
	assert.Len(t, search.Apply(fixtures(), search.Options{Category: "all"}), 5)
	assert.Equal(t, []string{"7"}, ids(search.Apply(fixtures(), search.Options{Category: "construction"})))
}

func TestLocationMatchesPincode(t *testing.T) {
	assert.Equal(t, []string{"1"}, ids(search.Apply(fixtures(), search.Options{Location: "400058"})))
	assert.Equal(t, []string{"7"}, ids(search.Apply(fixtures(), search.Options{Location: "thane"})))
}

func TestWageRange(t *testing.T) {
	got := search.Apply(fixtures(), search.Options{MinWage: 600, MaxWage: 800})
	assert.Equal(t, []string{"1", "7", "2"}, ids(got))

	got = search.Apply(fixtures(), search.Options{MinWage: 1000})
	assert.Equal(t, []string{"9"}, ids(got))
}

func TestJobTypeAndExperience(t *testing.T) {
	assert.Equal(t, []string{"7"}, ids(search.Apply(fixtures(), search.Options{JobType: "full-time"})))

	// Jobs without a requirement match every level.
	assert.Equal(t, []string{"7", "x"}, ids(search.Apply(fixtures(), search.Options{Experience: "entry"})))
	assert.Equal(t, []string{"1", "2", "x"}, ids(search.Apply(fixtures(), search.Options{Experience: "intermediate"})))
	assert.Equal(t, []string{"9", "x"}, ids(search.Apply(fixtures(), search.Options{Experience: "expert"})))
}

func TestOpenOnly(t *testing.T) {
	got := search.Apply(fixtures(), search.Options{OpenOnly: true})
	assert.NotContains(t, ids(got), "9")
}

func TestSortByWage(t *testing.T) {
	assert.Equal(t, []string{"9", "1", "7", "2", "x"}, ids(search.Apply(fixtures(), search.Options{SortBy: "wage-high"})))
	assert.Equal(t, []string{"x", "2", "7", "1", "9"}, ids(search.Apply(fixtures(), search.Options{SortBy: "wage-low"})))
}

func TestSortNearest(t *testing.T) {
	got := search.Apply(fixtures(), search.Options{SortBy: "nearest", NearPincode: "400060"})
	// 400058 (2), 400050 (10), 400076 (16), 400601 (541), no pincode last.
	assert.Equal(t, []string{"1", "2", "9", "7", "x"}, ids(got))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := fixtures()
	_ = search.Apply(in, search.Options{SortBy: "wage-high"})
	assert.Equal(t, "1", in[0].ID)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "construction labor urgent", search.NormalizeQuery("  Construction Labor - URGENT!! "))
	assert.Equal(t, "", search.NormalizeQuery("   "))
}

func TestExpandQuery(t *testing.T) {
	assert.Equal(t, []string{"plumber", "plumbing", "pipe"}, search.ExpandQuery("plumber"))
	assert.Equal(t, []string{"plumber andheri", "plumbing andheri", "pipe andheri"}, search.ExpandQuery("plumber andheri"))
	assert.Empty(t, search.ExpandQuery(""))
}

func TestRelevanceSort(t *testing.T) {
	got := search.Apply(fixtures(), search.Options{Query: "urgent", SortBy: "relevance"})
	assert.ElementsMatch(t, []string{"1", "7"}, ids(got))
	assert.Equal(t, 2, len(got))
}
