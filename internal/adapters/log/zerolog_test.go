package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/evalsample/internal/ports"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapter(zerolog.New(&buf))

	l.Info("sample written",
		ports.String("sampleId", "swebench-test-n3-seed1"),
		ports.Int("count", 3),
		ports.Int64("seed", 1),
		ports.Float64("chiSquare", 0.5),
		ports.Duration("took", 2*time.Second),
		ports.Err(errors.New("boom")),
		ports.Any("strata", []string{"a", "b"}),
	)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "info", got["level"])
	assert.Equal(t, "sample written", got["message"])
	assert.Equal(t, "swebench-test-n3-seed1", got["sampleId"])
	assert.Equal(t, float64(3), got["count"])
	assert.Equal(t, float64(1), got["seed"])
	assert.Equal(t, 0.5, got["chiSquare"])
	assert.Equal(t, "boom", got["error"])
	assert.Equal(t, []interface{}{"a", "b"}, got["strata"])
	assert.Contains(t, got, "took")
}

func TestZerologAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.WarnLevel))

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
