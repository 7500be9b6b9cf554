package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
)

// Field is one line of text output.
type Field struct {
	Key   string
	Value any
}

// write renders v as indented JSON, or fields as key: value lines.
func write(w io.Writer, format string, v any, fields []Field) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%s: %v\n", f.Key, f.Value); err != nil {
			return err
		}
	}
	return nil
}

func sortedCounts(prefix string, m map[string]int) []Field {
	out := make([]Field, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, Field{Key: prefix + k, Value: m[k]})
	}
	return out
}
