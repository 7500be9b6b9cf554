package repository

import "bluujobs/internal/store"

// Set bundles the collection-backed repositories over one key namespace.
type Set struct {
	Users         *KVUserRepository
	Jobs          *KVJobRepository
	Applications  *KVApplicationRepository
	Notifications *KVNotificationRepository
	Favorites     *KVFavoriteRepository
	Messages      *KVMessageRepository
	Reviews       *KVReviewRepository
}

func NewSet(keys store.Keys) Set {
	return Set{
		Users:         NewKVUserRepository(keys),
		Jobs:          NewKVJobRepository(keys),
		Applications:  NewKVApplicationRepository(keys),
		Notifications: NewKVNotificationRepository(keys),
		Favorites:     NewKVFavoriteRepository(keys),
		Messages:      NewKVMessageRepository(keys),
		Reviews:       NewKVReviewRepository(keys),
	}
}
