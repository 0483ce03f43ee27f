package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
	"gopkg.in/yaml.v3"
)

// ReadYAML reads a sequence of mappings.
func ReadYAML(r io.Reader) (*Dataset, error) {
	var rows []grid.Row
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return &Dataset{}, nil
		}
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}
	return datasetOf(rows), nil
}
