package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/evalsample/internal/domain"
	"github.com/bft-labs/evalsample/internal/ports"
	"github.com/bft-labs/evalsample/pkg/stratify"
)

// SamplerConfig contains the parameters of one sampling run.
type SamplerConfig struct {
	Dataset string
	Split   string
	Count   int
	Seed    int64
	// Prefix names the sample family in the sample id.
	Prefix string
}

// Sampler runs the pipeline: load records, draw the sample, write the
// document and report a summary.
type Sampler struct {
	config SamplerConfig
	source ports.RecordSource
	writer ports.DocumentWriter
	logger ports.Logger

	newRunID func() string
}

// NewSampler creates a new sampler with the given dependencies.
func NewSampler(
	config SamplerConfig,
	source ports.RecordSource,
	writer ports.DocumentWriter,
	logger ports.Logger,
) *Sampler {
	return &Sampler{
		config:   config,
		source:   source,
		writer:   writer,
		logger:   logger,
		newRunID: newRunID,
	}
}

// newRunID returns a time-ordered UUIDv7, falling back to v4.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// Run executes one sampling run. Nothing is written unless the whole
// sample was built successfully.
func (s *Sampler) Run(ctx context.Context) (domain.Summary, error) {
	start := time.Now()
	runID := s.newRunID()

	records, err := s.source.Load(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("load records from %s: %w", s.source.Describe(), err)
	}
	s.logger.Info("records loaded",
		ports.String("runId", runID),
		ports.String("source", s.source.Describe()),
		ports.Int("records", len(records)))

	doc, err := BuildDocument(records, s.config)
	if err != nil {
		return domain.Summary{}, err
	}
	for _, st := range doc.Strata {
		s.logger.Debug("stratum",
			ports.String("repo", st.Repo),
			ports.Int("available", st.Available),
			ports.Int("selected", st.Selected))
	}

	out, err := s.writer.Write(ctx, doc)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("write sample: %w", err)
	}

	audit := AuditStrata(doc.Strata)
	s.logger.Info("sample written",
		ports.String("runId", runID),
		ports.String("sampleId", doc.SampleID),
		ports.String("output", out),
		ports.Int("count", doc.Count),
		ports.Float64("maxShareDeviation", audit.MaxShareDeviation),
		ports.Duration("took", time.Since(start)))

	return domain.Summary{
		OK:        true,
		RunID:     runID,
		Output:    out,
		SampleID:  doc.SampleID,
		Count:     doc.Count,
		Requested: s.config.Count,
		Dataset:   s.config.Dataset,
		Split:     s.config.Split,
		Seed:      s.config.Seed,
		Audit:     audit,
	}, nil
}

// BuildDocument draws a sample from records and converts it into the output
// document. It is a pure function of its arguments.
func BuildDocument(records []stratify.Record, cfg SamplerConfig) (*domain.Document, error) {
	pool, err := stratify.NewPool(records)
	if err != nil {
		return nil, err
	}
	sample, err := stratify.Build(pool, cfg.Count, stratify.Int64Seed(cfg.Seed))
	if err != nil {
		return nil, err
	}
	return domain.NewDocument(domain.DocumentMeta{
		Dataset: cfg.Dataset,
		Split:   cfg.Split,
		Seed:    cfg.Seed,
		Prefix:  cfg.Prefix,
	}, sample), nil
}
