package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapgrid/internal/render"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks the configuration for values no command can use.
func (c *Config) Validate() error {
	if c.PageSize < 0 {
		return fmt.Errorf("%w: page_size must be zero or more, got %d", ErrInvalidConfig, c.PageSize)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("%w: debounce_ms must be zero or more, got %d", ErrInvalidConfig, c.DebounceMS)
	}
	if c.Limit < 0 {
		return fmt.Errorf("%w: limit must be zero or more, got %d", ErrInvalidConfig, c.Limit)
	}
	if _, err := render.ParseMode(c.Output); err != nil {
		return fmt.Errorf("%w: output: %w", ErrInvalidConfig, err)
	}
	if _, err := render.ParseLayout(c.View); err != nil {
		return fmt.Errorf("%w: view: %w", ErrInvalidConfig, err)
	}
	if _, err := grid.ParseSort(c.Sort); err != nil {
		return fmt.Errorf("%w: sort: %w", ErrInvalidConfig, err)
	}
	if c.IDField != "" && c.IDExpr != "" {
		return fmt.Errorf("%w: id_field and id_expr are mutually exclusive", ErrInvalidConfig)
	}
	if c.UI.Port < 0 || c.UI.Port > 65535 {
		return fmt.Errorf("%w: ui.port out of range: %d", ErrInvalidConfig, c.UI.Port)
	}

	seen := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if col.Key == "" {
			return fmt.Errorf("%w: columns[%d]: key is required", ErrInvalidConfig, i)
		}
		if seen[col.Key] {
			return fmt.Errorf("%w: columns[%d]: duplicate key %q", ErrInvalidConfig, i, col.Key)
		}
		seen[col.Key] = true
		if col.Collate != "" {
			if _, err := language.Parse(col.Collate); err != nil {
				return fmt.Errorf("%w: columns[%d]: collate: %w", ErrInvalidConfig, i, err)
			}
		}
	}
	return nil
}
