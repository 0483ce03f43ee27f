package source

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/leapstack-labs/leapgrid/pkg/grid"
)

// FromStructs converts a slice of structs (or struct pointers) into rows.
// Keys follow `mapstructure` tags, falling back to the field name, and
// column order follows field order.
func FromStructs(items any) (*Dataset, error) {
	v := reflect.ValueOf(items)
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected a slice of structs, got %T", items)
	}

	elem := v.Type().Elem()
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected a slice of structs, got %T", items)
	}

	rows := make([]grid.Row, 0, v.Len())
	for i := range v.Len() {
		item := v.Index(i)
		if item.Kind() == reflect.Pointer && item.IsNil() {
			continue
		}
		row := grid.Row{}
		if err := mapstructure.Decode(item.Interface(), &row); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	return &Dataset{Columns: InferColumns(structKeys(elem)), Rows: rows}, nil
}

func structKeys(t reflect.Type) []string {
	var keys []string
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("mapstructure"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		keys = append(keys, name)
	}
	return keys
}
