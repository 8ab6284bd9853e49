package sequence

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Dataset is the on-disk form of a pre-encoded corpus: one index sequence per
// example and a parallel label list.
type Dataset struct {
	Sequences [][]int `json:"sequences"`
	Labels    []int   `json:"labels"`
}

// LoadDataset reads a Dataset from a JSON file.
func LoadDataset(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset json: %w", err)
	}
	return &ds, nil
}
