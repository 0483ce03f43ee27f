package grid

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator orders two cell values. It returns a negative number when a
// sorts before b, zero when they are equal and a positive number otherwise.
type Comparator func(a, b any) int

// Values of different kinds are ordered by rank; values of the same kind
// are compared natively.
const (
	rankNil = iota
	rankBool
	rankNumber
	rankTime
	rankString
	rankOther
)

// DefaultCompare is the relational comparator used when a column does not
// supply its own.
//
// Absent and nil values sort first, then booleans, numbers, times, strings
// and anything else. Numbers compare numerically across all integer and
// float kinds. Numbers are never coerced from strings: 10 sorts before "9".
func DefaultCompare(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case rankNil:
		return 0
	case rankBool:
		return compareBool(a.(bool), b.(bool))
	case rankNumber:
		return compareNumbers(reflect.ValueOf(a), reflect.ValueOf(b))
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time))
	case rankString:
		as, _ := Stringify(a)
		bs, _ := Stringify(b)
		return strings.Compare(as, bs)
	default:
		return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
	}
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return rankNil
	case bool:
		return rankBool
	case time.Time:
		return rankTime
	case string, []byte:
		return rankString
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return rankNumber
	}
	return rankOther
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func isFloat(v reflect.Value) bool {
	return v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64
}

func isSigned(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isFloat(v):
		return v.Float()
	case isSigned(v):
		return float64(v.Int())
	default:
		return float64(v.Uint())
	}
}

func compareNumbers(a, b reflect.Value) int {
	if isFloat(a) || isFloat(b) {
		return cmp.Compare(toFloat(a), toFloat(b))
	}

	as, bs := isSigned(a), isSigned(b)
	switch {
	case as && bs:
		return cmp.Compare(a.Int(), b.Int())
	case !as && !bs:
		return cmp.Compare(a.Uint(), b.Uint())
	case as:
		if a.Int() < 0 {
			return -1
		}
		return cmp.Compare(uint64(a.Int()), b.Uint())
	default:
		if b.Int() < 0 {
			return 1
		}
		return cmp.Compare(a.Uint(), uint64(b.Int()))
	}
}

// CollateStrings returns a Comparator that orders strings by the collation
// rules of tag (case- and accent-aware). Non-string values fall back to
// DefaultCompare.
func CollateStrings(tag language.Tag, opts ...collate.Option) Comparator {
	var mu sync.Mutex
	c := collate.New(tag, opts...)

	return func(a, b any) int {
		as, aok := a.(string)
		bs, bok := b.(string)
		if !aok || !bok {
			return DefaultCompare(a, b)
		}
		// Collator keeps internal buffers.
		mu.Lock()
		defer mu.Unlock()
		return c.CompareString(as, bs)
	}
}
