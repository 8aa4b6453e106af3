// Package xlsx writes sample documents as Excel workbooks for reviewers who
// audit samples in a spreadsheet.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/bft-labs/evalsample/internal/domain"
)

const (
	summarySheet   = "Summary"
	strataSheet    = "Strata"
	instancesSheet = "Instances"
)

// Writer implements ports.DocumentWriter with an .xlsx workbook.
type Writer struct {
	path string
}

// NewWriter creates a writer targeting path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Write saves doc as a workbook with Summary, Strata and Instances sheets.
// The workbook is saved to a temp file and renamed over path.
func (w *Writer) Write(ctx context.Context, doc *domain.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	summary := [][]interface{}{
		{"dataset", doc.Dataset},
		{"split", doc.Split},
		{"seed", doc.Seed},
		{"count", doc.Count},
		{"sampleId", doc.SampleID},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return "", err
	}

	strata := [][]interface{}{{"repo", "available", "selected"}}
	for _, s := range doc.Strata {
		strata = append(strata, []interface{}{s.Repo, s.Available, s.Selected})
	}
	if err := addSheet(f, strataSheet, strata); err != nil {
		return "", err
	}

	instances := [][]interface{}{{"instanceIndex", "instance_id", "repo", "stratum"}}
	for _, in := range doc.Instances {
		instances = append(instances, []interface{}{in.InstanceIndex, in.InstanceID, in.Repo, in.Stratum})
	}
	if err := addSheet(f, instancesSheet, instances); err != nil {
		return "", err
	}

	tmp := w.path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return w.path, nil
}

func addSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, r+1, err)
		}
	}
	return nil
}
