// Package integrity keeps denormalized fields and cross-collection
// references consistent inside a single store transaction.
package integrity

import (
	"context"
	"fmt"

	"bluujobs/internal/domain/application"
	"bluujobs/internal/domain/favorite"
	"bluujobs/internal/domain/job"
	"bluujobs/internal/domain/review"
	"bluujobs/internal/domain/user"
	"bluujobs/internal/store"
)

type Repos struct {
	Users        user.Repository
	Jobs         job.Repository
	Applications application.Repository
	Favorites    favorite.Repository
	Reviews      review.Repository
}

// SyncApplicants recomputes the applicant list of the given jobs, or of every
// job when ids is empty. It returns how many jobs changed.
func SyncApplicants(ctx context.Context, tx *store.Txn, r Repos, ids ...string) (int, error) {
	apps, err := r.Applications.List(ctx, tx)
	if err != nil {
		return 0, err
	}
	jobs, err := r.Jobs.List(ctx, tx)
	if err != nil {
		return 0, err
	}

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	changed := 0
	for i := range jobs {
		if len(want) > 0 {
			if _, ok := want[jobs[i].ID]; !ok {
				continue
			}
		}
		next := application.ApplicantsFor(jobs[i].ID, apps)
		if jobs[i].Applicants != nil && equalIDs(jobs[i].Applicants, next) {
			continue
		}
		jobs[i].Applicants = next
		changed++
	}
	if changed == 0 {
		return 0, nil
	}
	if err := r.Jobs.SaveAll(ctx, tx, jobs); err != nil {
		return 0, fmt.Errorf("sync applicants: %w", err)
	}
	return changed, nil
}

// SyncRatings recomputes rating and totalRatings from reviews for the given
// users, or for every user when ids is empty. Users without reviews keep
// their stored aggregate. It returns the users that changed.
func SyncRatings(ctx context.Context, tx *store.Txn, r Repos, ids ...string) ([]user.User, error) {
	reviews, err := r.Reviews.List(ctx, tx)
	if err != nil {
		return nil, err
	}
	users, err := r.Users.List(ctx, tx)
	if err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	aggs := review.Aggregates(reviews)

	var changed []user.User
	for i := range users {
		if len(want) > 0 {
			if _, ok := want[users[i].ID]; !ok {
				continue
			}
		}
		agg, ok := aggs[users[i].ID]
		if !ok {
			continue
		}
		if users[i].Rating != nil && users[i].TotalRatings != nil &&
			*users[i].Rating == agg.Rating && *users[i].TotalRatings == agg.Count {
			continue
		}
		rating, count := agg.Rating, agg.Count
		users[i].Rating = &rating
		users[i].TotalRatings = &count
		changed = append(changed, users[i])
	}
	if len(changed) == 0 {
		return nil, nil
	}
	if err := r.Users.SaveAll(ctx, tx, users); err != nil {
		return nil, fmt.Errorf("sync ratings: %w", err)
	}
	return changed, nil
}

// DeleteJobs removes matching jobs together with their applications and
// favorites. It returns the ids of the removed jobs.
func DeleteJobs(ctx context.Context, tx *store.Txn, r Repos, match func(job.Job) bool) ([]string, error) {
	jobs, err := r.Jobs.List(ctx, tx)
	if err != nil {
		return nil, err
	}

	removed := make(map[string]struct{})
	kept := make([]job.Job, 0, len(jobs))
	var ids []string
	for _, j := range jobs {
		if match(j) {
			removed[j.ID] = struct{}{}
			ids = append(ids, j.ID)
			continue
		}
		kept = append(kept, j)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if err := r.Jobs.SaveAll(ctx, tx, kept); err != nil {
		return nil, fmt.Errorf("delete jobs: %w", err)
	}
	if _, err := r.Applications.DeleteWhere(ctx, tx, func(a application.Application) bool {
		_, ok := removed[a.JobID]
		return ok
	}); err != nil {
		return nil, fmt.Errorf("delete job applications: %w", err)
	}
	if _, err := r.Favorites.DeleteWhere(ctx, tx, func(f favorite.Favorite) bool {
		_, ok := removed[f.JobID]
		return ok
	}); err != nil {
		return nil, fmt.Errorf("delete job favorites: %w", err)
	}
	return ids, nil
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
