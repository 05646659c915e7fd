package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dataroomhq/dataroom/internal/model"
)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH (install poppler-utils)")

// ErrUnsupportedType is returned for file extensions with no modality.
var ErrUnsupportedType = errors.New("unsupported file type")

// InferModality maps a filename extension to its modality.
// .pdf and .txt are paginated (.txt uses form-feed page separators,
// the pdftotext convention); .csv is tabular.
func InferModality(filename string) (model.Modality, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".txt":
		return model.ModalityPaginated, nil
	case ".csv":
		return model.ModalityTabular, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(filename))
	}
}

// CommandRunner executes an external command and returns its stdout.
// It exists so tests can stub out the pdftotext dependency.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// extractPDFText converts a PDF to plain text with form feeds between
// pages, via the pdftotext tool.
func extractPDFText(ctx context.Context, runner CommandRunner, path string) (string, error) {
	out, err := runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrPDFToolNotFound
		}
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// page is one physical page of a paginated document. Number is the
// 1-indexed physical page position, kept even when earlier pages are
// blank.
type page struct {
	Number int
	Text   string
}

// splitPages splits extracted text on form feeds into physical pages.
// Blank pages are dropped but keep their physical numbering.
func splitPages(text string) []page {
	raw := strings.Split(text, "\f")
	pages := make([]page, 0, len(raw))
	for i, p := range raw {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		pages = append(pages, page{Number: i + 1, Text: trimmed})
	}
	return pages
}

// row is one data row of a tabular document, header excluded.
// Number is 1-indexed over data rows.
type row struct {
	Number int
	Fields map[string]string
	Text   string
}

// readRows decodes CSV content into rows keyed by the header line.
// Every field becomes part of the row text so it is both embeddable
// and human-readable.
func readRows(r io.Reader) ([]row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []row
	num := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", num+1, err)
		}
		num++

		fields := make(map[string]string, len(header))
		var parts []string
		for i, col := range header {
			val := ""
			if i < len(record) {
				val = strings.TrimSpace(record[i])
			}
			fields[col] = val
			parts = append(parts, fmt.Sprintf("%s: %s", col, val))
		}

		text := strings.Join(parts, ", ")
		if allEmpty(fields) {
			// A row with no values is not citable content.
			continue
		}

		rows = append(rows, row{Number: num, Fields: fields, Text: text})
	}

	return rows, nil
}

func allEmpty(fields map[string]string) bool {
	for _, v := range fields {
		if v != "" {
			return false
		}
	}
	return true
}
