package codec

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// CoerceInt returns v as an int64 when it is an integral number or a string
// holding one. Anything else, including non-numeric strings, reports false.
func CoerceInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// CoerceFloat returns v as a float64 when it is a number or a string holding
// one. Non-finite values and non-numeric strings report false.
func CoerceFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// Decimal is a JSON field that accepts either a number or a numeric string.
// Null, empty and non-numeric values decode without error and leave Valid false.
type Decimal struct {
	Value apd.Decimal
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	*d = Decimal{}
	s, ok := rawScalar(data)
	if !ok {
		return nil
	}
	if _, _, err := d.Value.SetString(s); err != nil {
		d.Value = apd.Decimal{}
		return nil
	}
	if d.Value.Form != apd.Finite {
		d.Value = apd.Decimal{}
		return nil
	}
	d.Valid = true
	return nil
}

// Ptr returns a copy of the value, or nil when absent.
func (d Decimal) Ptr() *apd.Decimal {
	if !d.Valid {
		return nil
	}
	return new(apd.Decimal).Set(&d.Value)
}

// Int is a JSON field that accepts either an integral number or a string
// holding one. Anything else decodes without error and leaves Valid false.
type Int struct {
	Value int64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Int) UnmarshalJSON(data []byte) error {
	*i = Int{}
	s, ok := rawScalar(data)
	if !ok {
		return nil
	}
	if data[0] == '"' {
		i.Value, i.Valid = CoerceInt(s)
	} else {
		i.Value, i.Valid = CoerceInt(json.Number(s))
	}
	return nil
}

// Ptr returns a copy of the value, or nil when absent.
func (i Int) Ptr() *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Value
	return &v
}

// rawScalar unwraps a JSON number or string token. Objects, arrays, booleans,
// null and empty strings report false.
func rawScalar(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	switch data[0] {
	case '"':
		s, err := strconv.Unquote(string(data))
		if err != nil || s == "" {
			return "", false
		}
		return s, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(data), true
	default:
		return "", false
	}
}
