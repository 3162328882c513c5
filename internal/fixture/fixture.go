// Package fixture holds static service-catalog data compiled into the binary.
// The seed catalog populates an empty store at startup; the mock shortlist is
// the search path's last-resort data source when the store has no candidates.
package fixture

import (
	"embed"
	"encoding/json"
	"fmt"

	"bridge-go/internal/model"
)

//go:embed nyc_services.json mock_services.json
var files embed.FS

func load(name string) ([]model.ServiceRecord, error) {
	data, err := files.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	var records []model.ServiceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", name, err)
	}
	return records, nil
}

// SeedServices returns the NYC service catalog used for initial import.
func SeedServices() ([]model.ServiceRecord, error) {
	return load("nyc_services.json")
}

// MockServices returns the last-resort shortlist data. Callers receive a
// fresh slice on every call.
func MockServices() []model.ServiceRecord {
	records, err := load("mock_services.json")
	if err != nil {
		// The file is embedded; a parse failure is a build defect.
		panic(err)
	}
	return records
}
