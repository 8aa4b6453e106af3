package xlsx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bft-labs/evalsample/internal/domain"
)

func TestWriter_Write(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "sample.xlsx")
	doc := &domain.Document{
		Dataset:  "local",
		Split:    "test",
		Seed:     7,
		Count:    2,
		SampleID: "swebench-test-n2-seed7",
		Strata: []domain.StratumRow{
			{Repo: "a/a", Available: 3, Selected: 1},
			{Repo: "b/b", Available: 1, Selected: 1},
		},
		Instances: []domain.InstanceRow{
			{InstanceID: "b-1", Repo: "b/b", Stratum: "b/b", InstanceIndex: 1},
			{InstanceID: "a-2", Repo: "a/a", Stratum: "a/a", InstanceIndex: 2},
		},
	}

	got, err := NewWriter(out).Write(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, out, got)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, strataSheet, instancesSheet}, f.GetSheetList())

	id, err := f.GetCellValue(summarySheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "swebench-test-n2-seed7", id)

	strata, err := f.GetRows(strataSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"repo", "available", "selected"},
		{"a/a", "3", "1"},
		{"b/b", "1", "1"},
	}, strata)

	instances, err := f.GetRows(instancesSheet)
	require.NoError(t, err)
	require.Len(t, instances, 3)
	assert.Equal(t, []string{"1", "b-1", "b/b", "b/b"}, instances[1])
}
