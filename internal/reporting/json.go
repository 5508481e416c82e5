package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/apiprobe/scanner/internal/scanner"
)

// SaveJSON persists the report as an indented JSON document, creating the
// output directory if needed.
func SaveJSON(report *scanner.Report, filename string) error {
	if dir := filepath.Dir(filename); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// LoadJSON reads a report previously written by SaveJSON.
func LoadJSON(filename string) (*scanner.Report, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var report scanner.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
