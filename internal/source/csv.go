package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// ReadCSV reads a header row followed by records. Cells are typed with
// parseScalar so numeric columns sort numerically.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Dataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}

	var rows []grid.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		row := make(grid.Row, len(header))
		for i, key := range header {
			if i < len(record) {
				row[key] = parseScalar(record[i])
			} else {
				row[key] = nil
			}
		}
		rows = append(rows, row)
	}

	return &Dataset{Columns: InferColumns(header), Rows: rows}, nil
}
