package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerFunc(t *testing.T) {
	var gotMethod, gotQuery string
	var signer Signer = SignerFunc(func(method, query string, body []byte) (map[string]string, error) {
		gotMethod, gotQuery = method, query
		return map[string]string{"X-Test": "1"}, nil
	})

	headers, err := signer.Sign("GET", "a=1", nil)
	require.NoError(t, err)
	assert.Equal(t, "GET", gotMethod)
	assert.Equal(t, "a=1", gotQuery)
	assert.Equal(t, "1", headers["X-Test"])
}

func TestSignerFunc_Error(t *testing.T) {
	want := errors.New("boom")
	signer := SignerFunc(func(string, string, []byte) (map[string]string, error) { return nil, want })

	_, err := signer.Sign("POST", "", []byte("{}"))
	assert.ErrorIs(t, err, want)
}
