package seeder

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed dataset.yaml
var datasetYAML []byte

var generateHash = bcrypt.GenerateFromPassword

const (
	tagAgo = "!ago"
	tagIn  = "!in"
)

// Dataset holds the demo records of every collection as JSON arrays, ready
// to be written under the collection keys.
type Dataset map[string]json.RawMessage

// LoadDataset resolves the embedded demo data against now and hashes the
// demo passwords with the given bcrypt cost.
func LoadDataset(now time.Time, bcryptCost int) (Dataset, error) {
	return parseDataset(datasetYAML, now, bcryptCost)
}

func parseDataset(src []byte, now time.Time, bcryptCost int) (Dataset, error) {
	raw, err := decodeDataset(src, now)
	if err != nil {
		return nil, err
	}
	out := make(Dataset, len(raw))
	for name, records := range raw {
		b, err := encodeRecords(name, records, bcryptCost)
		if err != nil {
			return nil, err
		}
		out[name] = b
	}
	return out, nil
}

// decodeDataset parses the YAML document with timestamps resolved. User
// records still carry their plain "password" field.
func decodeDataset(src []byte, now time.Time) (map[string][]map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if err := resolveOffsets(&doc, now.UTC()); err != nil {
		return nil, err
	}

	var raw map[string][]map[string]any
	if err := doc.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return raw, nil
}

// encodeRecords marshals one collection, hashing passwords for users.
func encodeRecords(name string, records []map[string]any, bcryptCost int) ([]byte, error) {
	if name == "users" {
		if err := hashPasswords(records, bcryptCost); err != nil {
			return nil, err
		}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return b, nil
}

// resolveOffsets rewrites !ago and !in scalars into RFC3339 timestamps.
func resolveOffsets(n *yaml.Node, now time.Time) error {
	if n.Kind == yaml.ScalarNode && (n.Tag == tagAgo || n.Tag == tagIn) {
		d, err := parseOffset(n.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		if n.Tag == tagAgo {
			d = -d
		}
		n.Value = now.Add(d).Format(time.RFC3339Nano)
		n.Tag = "!!str"
		return nil
	}
	for _, c := range n.Content {
		if err := resolveOffsets(c, now); err != nil {
			return err
		}
	}
	return nil
}

func parseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid offset %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return d, nil
}

func hashPasswords(users []map[string]any, cost int) error {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	for _, u := range users {
		pw, _ := u["password"].(string)
		delete(u, "password")
		if pw == "" {
			continue
		}
		hash, err := generateHash([]byte(pw), cost)
		if err != nil {
			return fmt.Errorf("hash password for user %v: %w", u["id"], err)
		}
		u["passwordHash"] = string(hash)
	}
	return nil
}
