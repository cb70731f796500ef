package core

// Signer produces the authentication headers for one request.
// method is the HTTP method, query the already encoded query string and body the raw POST body.
// A nil map with a nil error means the request is sent without authentication headers.
type Signer interface {
	Sign(method, query string, body []byte) (map[string]string, error)
}

// SignerFunc adapts a function to Signer.
type SignerFunc func(method, query string, body []byte) (map[string]string, error)

// Sign calls f.
func (f SignerFunc) Sign(method, query string, body []byte) (map[string]string, error) {
	return f(method, query, body)
}
