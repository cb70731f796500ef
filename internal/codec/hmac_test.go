package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignHMACSHA256(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		message string
		want    string
	}{
		{
			name:    "linear_query",
			secret:  "XXXXXXXXXX",
			message: "1765272009594XXXXXXXXXX5000category=linear&settleCoin=USDT",
			want:    "3fe1cc838786f0fcd9af3ec01c12918a818d62ada8f9dd13c3e8f5b61dbb695f",
		},
		{
			name:    "empty_payload",
			secret:  "test-secret",
			message: "1700000000000test-key5000",
			want:    "d8d5e71d8f986368aa5c13405f059ab6adb4f41df59d2f11bb056226b63457d6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SignHMACSHA256(tt.secret, tt.message))
		})
	}
}

func TestSignHMACSHA256_Deterministic(t *testing.T) {
	first := SignHMACSHA256("secret", "payload")
	second := SignHMACSHA256("secret", "payload")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, SignHMACSHA256("other", "payload"))
}
