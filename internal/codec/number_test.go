package codec

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{"int", 5, 5, true},
		{"int64", int64(1711699200000), 1711699200000, true},
		{"integral_float", float64(8), 8, true},
		{"fractional_float", 1.5, 0, false},
		{"min_int64_float", float64(math.MinInt64), math.MinInt64, true},
		{"overflowing_float", float64(math.MaxInt64), 0, false},
		{"overflowing_json_number", json.Number("9223372036854775808"), 0, false},
		{"overflowing_exponent", json.Number("1e19"), 0, false},
		{"json_number", json.Number("42"), 42, true},
		{"numeric_string", "5000", 5000, true},
		{"negative_string", "-3", -3, true},
		{"decimal_string", "1.5", 0, false},
		{"garbage_string", "abc", 0, false},
		{"empty_string", "", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceInt(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float", 0.0005, 0.0005, true},
		{"int", 3, 3, true},
		{"json_number", json.Number("0.01"), 0.01, true},
		{"numeric_string", "0.0001", 0.0001, true},
		{"garbage_string", "n/a", 0, false},
		{"nan_string", "NaN", 0, false},
		{"map", map[string]any{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CoerceFloat(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestDecimal_UnmarshalJSON(t *testing.T) {
	type row struct {
		Fee Decimal `json:"fee"`
	}

	tests := []struct {
		name  string
		input string
		want  string
		valid bool
	}{
		{"string", `{"fee":"0.0005"}`, "0.0005", true},
		{"number", `{"fee":0.25}`, "0.25", true},
		{"exponent", `{"fee":"1e-8"}`, "1E-8", true},
		{"null", `{"fee":null}`, "", false},
		{"empty_string", `{"fee":""}`, "", false},
		{"not_numeric", `{"fee":"free"}`, "", false},
		{"missing", `{}`, "", false},
		{"object", `{"fee":{"a":1}}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r row
			require.NoError(t, sonic.Unmarshal([]byte(tt.input), &r))
			assert.Equal(t, tt.valid, r.Fee.Valid)
			if tt.valid {
				require.NotNil(t, r.Fee.Ptr())
				assert.Equal(t, tt.want, r.Fee.Ptr().String())
			} else {
				assert.Nil(t, r.Fee.Ptr())
				assert.True(t, r.Fee.Value.IsZero())
			}
		})
	}
}

func TestInt_UnmarshalJSON(t *testing.T) {
	type envelope struct {
		RetCode Int `json:"retCode"`
	}

	tests := []struct {
		name  string
		input string
		want  int64
		valid bool
	}{
		{"number", `{"retCode":10001}`, 10001, true},
		{"string", `{"retCode":"0"}`, 0, true},
		{"fraction", `{"retCode":1.5}`, 0, false},
		{"overflow", `{"retCode":9223372036854775808}`, 0, false},
		{"not_numeric", `{"retCode":"oops"}`, 0, false},
		{"missing", `{}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e envelope
			require.NoError(t, sonic.Unmarshal([]byte(tt.input), &e))
			assert.Equal(t, tt.valid, e.RetCode.Valid)
			assert.Equal(t, tt.want, e.RetCode.Value)
			if tt.valid {
				require.NotNil(t, e.RetCode.Ptr())
				assert.Equal(t, tt.want, *e.RetCode.Ptr())
			}
		})
	}
}
