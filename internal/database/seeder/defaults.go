package seeder

import (
	"fmt"
	"time"

	"bluujobs/internal/store"
)

// Defaults builds one seeder per collection from the embedded demo dataset,
// in store.Collections order. Records are encoded, and demo passwords hashed,
// only when a seeder finds its key absent.
func Defaults(keys store.Keys, now time.Time, bcryptCost int) ([]Seeder, error) {
	raw, err := decodeDataset(datasetYAML, now)
	if err != nil {
		return nil, err
	}
	out := make([]Seeder, 0, len(store.Collections))
	for _, name := range store.Collections {
		records, ok := raw[name]
		if !ok {
			return nil, fmt.Errorf("dataset has no %s", name)
		}
		out = append(out, CollectionSeeder{
			Collection: name,
			Key:        keys.Collection(name),
			Build: func() ([]byte, error) {
				return encodeRecords(name, records, bcryptCost)
			},
		})
	}
	return out, nil
}
