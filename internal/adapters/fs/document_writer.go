package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bft-labs/evalsample/internal/domain"
)

// JSONWriter implements ports.DocumentWriter with an indented JSON file.
type JSONWriter struct {
	path string
}

// NewJSONWriter creates a writer targeting path.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// Write persists doc atomically: parent directories are created, the
// document goes to a temp file which is then renamed over path.
func (w *JSONWriter) Write(ctx context.Context, doc *domain.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", err
	}

	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, w.path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return w.path, nil
}
