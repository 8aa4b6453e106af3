package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/evalsample/pkg/stratify"
)

// ErrNotArray is returned when a fixture file is valid JSON but not an array.
var ErrNotArray = errors.New("instances file must be a JSON array")

// ErrNoValidRows is returned when the fixture files contain no usable rows.
var ErrNoValidRows = errors.New("instances file has no valid rows")

// FixtureSource implements ports.RecordSource over local JSON array files.
type FixtureSource struct {
	paths      []string
	idField    string
	groupField string
}

// NewFixtureSource reads records from paths. Each object contributes its
// idField and groupField values.
func NewFixtureSource(paths []string, idField, groupField string) *FixtureSource {
	return &FixtureSource{paths: paths, idField: idField, groupField: groupField}
}

// Describe returns the fixture paths.
func (s *FixtureSource) Describe() string {
	return "file:" + strings.Join(s.paths, ",")
}

// Load reads all files concurrently and concatenates their rows in path
// order. Items that are not objects, or lack a non-empty id or group, are
// skipped.
func (s *FixtureSource) Load(ctx context.Context) ([]stratify.Record, error) {
	perFile := make([][]stratify.Record, len(s.paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range s.paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows, err := s.readFile(p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			perFile[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []stratify.Record
	for _, rows := range perFile {
		out = append(out, rows...)
	}
	if len(out) == 0 {
		return nil, ErrNoValidRows
	}
	return out, nil
}

func (s *FixtureSource) readFile(path string) ([]stratify.Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeRecords(b, s.idField, s.groupField)
}

// DecodeRecords parses a JSON array of objects into records.
func DecodeRecords(b []byte, idField, groupField string) ([]stratify.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var payload interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	items, ok := payload.([]interface{})
	if !ok {
		return nil, ErrNotArray
	}

	out := make([]stratify.Record, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		id := FieldString(obj[idField])
		group := FieldString(obj[groupField])
		if id == "" || group == "" {
			continue
		}
		out = append(out, stratify.Record{ID: id, Group: group})
	}
	return out, nil
}

// FieldString renders a decoded JSON scalar as trimmed text. Strings and
// numbers are kept; null, booleans and nested values yield "".
func FieldString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strings.TrimSpace(fmt.Sprint(x))
	default:
		return ""
	}
}
