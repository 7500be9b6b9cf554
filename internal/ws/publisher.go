package ws

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"bluujobs/internal/store"
)

const EventCollectionChanged = "collection_changed"

type CollectionChangedEvent struct {
	Type        string   `json:"type"`
	Collections []string `json:"collections"`
	Timestamp   string   `json:"timestamp"`
}

// Broadcaster is the part of Hub a Publisher needs.
type Broadcaster interface {
	Broadcast(message []byte)
}

// Publisher turns store commits into collection_changed events.
type Publisher struct {
	keys store.Keys
	out  Broadcaster
	now  func() time.Time
}

func NewPublisher(keys store.Keys, out Broadcaster) *Publisher {
	return &Publisher{keys: keys, out: out, now: time.Now}
}

// OnCommit is a store.CommitHook. Session keys are never published.
func (p *Publisher) OnCommit(_ context.Context, keys []string) {
	if p == nil || p.out == nil {
		return
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if name, ok := p.keys.CollectionName(k); ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)

	b, err := json.Marshal(CollectionChangedEvent{
		Type:        EventCollectionChanged,
		Collections: names,
		Timestamp:   p.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	p.out.Broadcast(b)
}
