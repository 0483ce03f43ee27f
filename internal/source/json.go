package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// ReadJSON reads an array of objects, or an object holding that array
// under "rows" or "data".
func ReadJSON(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Dataset{}, nil
	}

	var rows []grid.Row
	if data[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode json object: %w", err)
		}
		inner, ok := wrapper["rows"]
		if !ok {
			if inner, ok = wrapper["data"]; !ok {
				return nil, errors.New(`json object has no "rows" or "data" array`)
			}
		}
		data = inner
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode json array: %w", err)
	}

	return datasetOf(rows), nil
}

// ReadJSONLines reads one object per line; blank lines are skipped.
func ReadJSONLines(r io.Reader) (*Dataset, error) {
	var rows []grid.Row
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var row grid.Row
		if err := json.Unmarshal(text, &row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return datasetOf(rows), nil
}

func datasetOf(rows []grid.Row) *Dataset {
	return &Dataset{Columns: InferColumns(keysOf(rows)), Rows: rows}
}
