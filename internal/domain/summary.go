package domain

// Audit measures how closely the selected counts follow the pool's group
// proportions. It is informational and never alters a sample.
type Audit struct {
	// MeanShareDeviation is the mean of |selected/count - available/total|
	// across strata.
	MeanShareDeviation float64 `json:"meanShareDeviation"`

	// MaxShareDeviation is the largest per-stratum share deviation.
	MaxShareDeviation float64 `json:"maxShareDeviation"`

	// ChiSquare is Pearson's statistic of selected against expected counts.
	ChiSquare float64 `json:"chiSquare"`
}

// Summary is the machine-readable report printed after each run.
type Summary struct {
	OK        bool   `json:"ok"`
	RunID     string `json:"runId"`
	Output    string `json:"output"`
	SampleID  string `json:"sampleId"`
	Count     int    `json:"count"`
	Requested int    `json:"requested"`
	Dataset   string `json:"dataset"`
	Split     string `json:"split"`
	Seed      int64  `json:"seed"`
	Audit     Audit  `json:"audit"`
}
