// Package testdata reads and writes test fixtures under the data/
// directory: JSON documents and CSV row tables. Missing files degrade to
// empty values with a logged warning.
package testdata

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devicelab-dev/appium-pilot/pkg/config"
	"github.com/devicelab-dev/appium-pilot/pkg/logger"
)

// Store reads fixtures from a single data directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at the configured test data directory.
func NewStore(cfg *config.Manager) *Store {
	dir := cfg.ProjectPath(cfg.GetString("data.test_data_dir", "data"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("failed to create data dir %s: %v", dir, err)
	}
	return &Store{dir: dir}
}

// NewStoreAt creates a store rooted at an explicit directory.
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

// ReadJSON reads a JSON fixture into a map. A missing file yields an
// empty map plus a warning; an unparsable file an empty map plus an error
// log.
func (s *Store) ReadJSON(filename string) map[string]interface{} {
	path := filepath.Join(s.dir, filename)

	raw, err := os.ReadFile(path) //#nosec G304 -- fixture under data dir
	if err != nil {
		logger.Warn("data file not found: %s", path)
		return map[string]interface{}{}
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Error("failed to parse data file %s: %v", path, err)
		return map[string]interface{}{}
	}
	return data
}

// WriteJSON writes a JSON fixture. Returns false on failure.
func (s *Store) WriteJSON(filename string, data map[string]interface{}) bool {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		logger.Error("failed to marshal data for %s: %v", filename, err)
		return false
	}

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		logger.Error("failed to write data file %s: %v", path, err)
		return false
	}
	return true
}

// ReadCSV reads a CSV fixture into row maps keyed by the header line.
func (s *Store) ReadCSV(filename string) []map[string]string {
	path := filepath.Join(s.dir, filename)

	f, err := os.Open(path) //#nosec G304 -- fixture under data dir
	if err != nil {
		logger.Warn("data file not found: %s", path)
		return nil
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		logger.Error("failed to parse CSV file %s: %v", path, err)
		return nil
	}
	if len(records) < 2 {
		return nil
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := map[string]string{}
		for i, field := range record {
			if i < len(header) {
				row[header[i]] = field
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// CaseData returns the named block from a JSON fixture, for fixtures laid
// out as {"case_name": {...}, ...}.
func (s *Store) CaseData(filename, caseName string) (map[string]interface{}, error) {
	data := s.ReadJSON(filename)
	block, ok := data[caseName].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("no data block %q in %s", caseName, filename)
	}
	return block, nil
}
