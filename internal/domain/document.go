package domain

import (
	"fmt"

	"github.com/bft-labs/evalsample/pkg/stratify"
)

// Document is the sample file. Field names match the layout consumed by
// existing evaluation harnesses.
type Document struct {
	Dataset   string        `json:"dataset"`
	Split     string        `json:"split"`
	Seed      int64         `json:"seed"`
	Count     int           `json:"count"`
	SampleID  string        `json:"sampleId"`
	Strata    []StratumRow  `json:"strata"`
	Instances []InstanceRow `json:"instances"`
}

// StratumRow is one line of the strata report.
type StratumRow struct {
	Repo      string `json:"repo"`
	Available int    `json:"available"`
	Selected  int    `json:"selected"`
}

// InstanceRow is one selected record in output order.
type InstanceRow struct {
	InstanceID    string `json:"instance_id"`
	Repo          string `json:"repo"`
	Stratum       string `json:"stratum"`
	InstanceIndex int    `json:"instanceIndex"`
}

// DocumentMeta identifies where a sample came from.
type DocumentMeta struct {
	Dataset string
	Split   string
	Seed    int64
	// Prefix names the sample family, e.g. "swebench".
	Prefix string
}

// SampleID composes a stable identifier from the run parameters, so two
// runs with identical parameters are recognizable as the same sample.
func SampleID(prefix, split string, count int, seed int64) string {
	return fmt.Sprintf("%s-%s-n%d-seed%d", prefix, split, count, seed)
}

// NewDocument converts a sample into its output document.
func NewDocument(meta DocumentMeta, s *stratify.Sample) *Document {
	doc := &Document{
		Dataset:   meta.Dataset,
		Split:     meta.Split,
		Seed:      meta.Seed,
		Count:     s.Len(),
		SampleID:  SampleID(meta.Prefix, meta.Split, s.Len(), meta.Seed),
		Strata:    make([]StratumRow, len(s.Strata)),
		Instances: make([]InstanceRow, len(s.Selections)),
	}
	for i, st := range s.Strata {
		doc.Strata[i] = StratumRow{Repo: st.Group, Available: st.Available, Selected: st.Selected}
	}
	for i, sel := range s.Selections {
		doc.Instances[i] = InstanceRow{
			InstanceID:    sel.Record.ID,
			Repo:          sel.Record.Group,
			Stratum:       sel.Stratum,
			InstanceIndex: sel.InstanceIndex,
		}
	}
	return doc
}
