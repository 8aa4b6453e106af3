package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logAdapter "github.com/bft-labs/evalsample/internal/adapters/log"
	"github.com/bft-labs/evalsample/internal/domain"
	"github.com/bft-labs/evalsample/pkg/stratify"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(New(Defaults{
		Dataset: "SWE-bench/SWE-bench_Verified",
		Split:   "test",
		Prefix:  "swebench",
	}, logAdapter.NewNoopLogger()))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	resp, err := http.Post(url+"/v1/samples", "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestSample(t *testing.T) {
	ts := newTestServer(t)

	var records []stratify.Record
	for i := 0; i < 10; i++ {
		records = append(records, stratify.Record{ID: fmt.Sprintf("A-%d", i), Group: "A"})
		records = append(records, stratify.Record{ID: fmt.Sprintf("B-%d", i), Group: "B"})
	}
	req := SampleRequest{Count: 10, Seed: 1, Records: records}

	resp := post(t, ts.URL, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc domain.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "swebench-test-n10-seed1", doc.SampleID)
	assert.Equal(t, "SWE-bench/SWE-bench_Verified", doc.Dataset)
	assert.Equal(t, []domain.StratumRow{
		{Repo: "A", Available: 10, Selected: 5},
		{Repo: "B", Available: 10, Selected: 5},
	}, doc.Strata)
	assert.Len(t, doc.Instances, 10)

	again := post(t, ts.URL, req)
	var doc2 domain.Document
	require.NoError(t, json.NewDecoder(again.Body).Decode(&doc2))
	assert.Equal(t, doc, doc2)
}

func TestSample_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "malformed json", body: `{"count":`},
		{name: "zero count", body: SampleRequest{Count: 0, Records: []stratify.Record{{ID: "a", Group: "g"}}}},
		{name: "empty pool", body: SampleRequest{Count: 3}},
		{name: "record without id", body: SampleRequest{Count: 1, Records: []stratify.Record{{Group: "g"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var body errorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}
