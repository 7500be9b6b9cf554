package store

import "strings"

const DefaultPrefix = "bluujobs_"

const (
	CollectionUsers         = "users"
	CollectionJobs          = "jobs"
	CollectionApplications  = "applications"
	CollectionNotifications = "notifications"
	CollectionFavorites     = "favorites"
	CollectionMessages      = "messages"
	CollectionReviews       = "reviews"
)

// Collections lists every entity collection in seeding order.
var Collections = []string{
	CollectionUsers,
	CollectionJobs,
	CollectionApplications,
	CollectionNotifications,
	CollectionFavorites,
	CollectionMessages,
	CollectionReviews,
}

// Keys maps logical names to namespaced storage keys.
type Keys struct {
	Prefix string
}

func NewKeys(prefix string) Keys {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keys{Prefix: prefix}
}

func (k Keys) Collection(name string) string {
	return k.Prefix + name
}

func (k Keys) CurrentUser() string {
	return k.Prefix + "current_user"
}

func (k Keys) Session(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return k.CurrentUser()
	}
	return k.CurrentUser() + ":" + scope
}

func (k Keys) SessionIndex() string {
	return k.Prefix + "sessions"
}

// CollectionName strips the prefix from a storage key. ok is false for keys
// outside the namespace or non-collection keys.
func (k Keys) CollectionName(key string) (string, bool) {
	if !strings.HasPrefix(key, k.Prefix) {
		return "", false
	}
	name := strings.TrimPrefix(key, k.Prefix)
	for _, c := range Collections {
		if c == name {
			return name, true
		}
	}
	return "", false
}
