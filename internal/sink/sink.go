// Package sink persists run output as flat files: the tabular CSV, the
// JSON export with run metadata, the YAML run report, and an optional raw
// HTML snapshot for offline debugging of the web strategies.
package sink

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harvestlabs/modelharvest/internal/record"
)

// Metadata heads the JSON export so consumers can tell runs apart.
type Metadata struct {
	TotalRecords int       `json:"total_records"`
	GeneratedAt  time.Time `json:"generated_at"`
	SourceMethod string    `json:"source_method"`
	RunID        string    `json:"run_id"`
}

type jsonExport struct {
	Metadata Metadata             `json:"metadata"`
	Models   []record.ModelRecord `json:"models"`
}

// Writer writes run artifacts into a single output directory.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// WriteCSV writes records in the fixed column order. An empty batch still
// produces a file with the header row.
func (w *Writer) WriteCSV(name string, records []record.ModelRecord) (string, error) {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(record.Columns); err != nil {
		return "", fmt.Errorf("writing CSV header: %w", err)
	}
	for i := range records {
		if err := cw.Write(records[i].Row()); err != nil {
			return "", fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flushing CSV: %w", err)
	}
	return path, nil
}

// WriteJSON writes the metadata-headed JSON export.
func (w *Writer) WriteJSON(name string, meta Metadata, records []record.ModelRecord) (string, error) {
	meta.TotalRecords = len(records)
	if records == nil {
		records = []record.ModelRecord{}
	}

	data, err := json.MarshalIndent(jsonExport{Metadata: meta, Models: records}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON export: %w", err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// WriteYAML marshals any document as YAML, used for the run report.
func (w *Writer) WriteYAML(name string, doc any) (string, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML report: %w", err)
	}

	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ReadJSON loads a previously written JSON export back, for re-auditing
// persisted output.
func ReadJSON(path string) (Metadata, []record.ModelRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var export jsonExport
	if err := json.Unmarshal(data, &export); err != nil {
		return Metadata{}, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return export.Metadata, export.Models, nil
}

// WriteSnapshot saves the raw fetched HTML next to the run output.
func (w *Writer) WriteSnapshot(name string, body []byte) (string, error) {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
