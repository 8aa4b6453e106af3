// Package hf loads records from the Hugging Face datasets-server rows API.
package hf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bft-labs/evalsample/internal/adapters/fs"
	"github.com/bft-labs/evalsample/internal/ports"
	"github.com/bft-labs/evalsample/pkg/stratify"
)

// DefaultBaseURL is the public datasets-server endpoint.
const DefaultBaseURL = "https://datasets-server.huggingface.co"

// MaxPageSize is the largest page the rows endpoint serves.
const MaxPageSize = 100

const (
	rowsEndpoint = "/rows"
	maxAttempts  = 5
)

// ErrNoValidRows is returned when the dataset yields no usable rows.
var ErrNoValidRows = errors.New("dataset returned zero valid rows")

// Config describes which dataset split to read and how to reach it.
type Config struct {
	BaseURL    string
	Dataset    string
	Config     string
	Split      string
	IDField    string
	GroupField string
	Token      string

	// PageSize is clamped to MaxPageSize.
	PageSize int

	// RequestsPerSecond limits page fetches; zero disables the limit.
	RequestsPerSecond float64

	// RetryBase and RetryMax bound the backoff between retries of 429 and
	// 5xx responses.
	RetryBase time.Duration
	RetryMax  time.Duration
}

// RowsSource implements ports.RecordSource by paging through /rows.
type RowsSource struct {
	cfg     Config
	client  ports.HTTPClient
	limiter *rate.Limiter
	logger  ports.Logger
}

// NewRowsSource creates a source. client is typically an *http.Client with
// a timeout.
func NewRowsSource(cfg Config, client ports.HTTPClient, logger ports.Logger) *RowsSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Config == "" {
		cfg.Config = "default"
	}
	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &RowsSource{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Describe returns the dataset coordinates.
func (s *RowsSource) Describe() string {
	return fmt.Sprintf("hf:%s/%s/%s", s.cfg.Dataset, s.cfg.Config, s.cfg.Split)
}

type rowsPage struct {
	Rows []struct {
		RowIdx int                    `json:"row_idx"`
		Row    map[string]interface{} `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// statusError is a non-2xx response from the hub.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.code, e.body)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// Load fetches every page of the split in row order.
func (s *RowsSource) Load(ctx context.Context) ([]stratify.Record, error) {
	var out []stratify.Record
	bo := newBackoff(s.cfg.RetryBase, s.cfg.RetryMax)
	offset := 0
	for {
		page, err := s.fetchWithRetry(ctx, bo, offset)
		if err != nil {
			return nil, err
		}
		bo.Reset()
		for _, r := range page.Rows {
			id := fs.FieldString(r.Row[s.cfg.IDField])
			group := fs.FieldString(r.Row[s.cfg.GroupField])
			if id == "" || group == "" {
				continue
			}
			out = append(out, stratify.Record{ID: id, Group: group})
		}
		offset += len(page.Rows)
		s.logger.Debug("fetched rows page",
			ports.Int("offset", offset),
			ports.Int("total", page.NumRowsTotal))
		if len(page.Rows) == 0 || offset >= page.NumRowsTotal {
			break
		}
	}
	if len(out) == 0 {
		return nil, ErrNoValidRows
	}
	return out, nil
}

func (s *RowsSource) fetchWithRetry(ctx context.Context, bo *backoff, offset int) (*rowsPage, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := s.fetch(ctx, offset)
		if err == nil {
			return page, nil
		}
		lastErr = err
		var se *statusError
		if !errors.As(err, &se) || !se.retryable() {
			return nil, err
		}
		s.logger.Warn("rows request failed, retrying",
			ports.Int("offset", offset),
			ports.Int("attempt", attempt),
			ports.Err(err))
		if attempt < maxAttempts {
			if err := bo.Sleep(ctx); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("fetch rows at offset %d: %w", offset, lastErr)
}

func (s *RowsSource) fetch(ctx context.Context, offset int) (*rowsPage, error) {
	q := url.Values{}
	q.Set("dataset", s.cfg.Dataset)
	q.Set("config", s.cfg.Config)
	q.Set("split", s.cfg.Split)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(s.cfg.PageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+rowsEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &statusError{code: resp.StatusCode, body: string(body)}
	}

	var page rowsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return &page, nil
}
