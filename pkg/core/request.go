package core

import "net/url"

// Request is a resolved call against an Endpoint. Query is kept as url.Values so that
// the signed string and the sent string come from the same Encode call.
type Request struct {
	Endpoint Endpoint   `json:"endpoint"`
	Query    url.Values `json:"query,omitempty"`
	Body     []byte     `json:"body,omitempty"`
}

func NewRequest(op Operation) *Request {
	ep, _ := EndpointFor(op)
	return &Request{
		Endpoint: ep,
		Query:    make(url.Values),
	}
}

func (r *Request) SetQuery(key, value string) *Request {
	if r.Query == nil {
		r.Query = make(url.Values)
	}
	r.Query.Set(key, value)
	return r
}

func (r *Request) SetQueryParams(params url.Values) *Request {
	if r.Query == nil {
		r.Query = make(url.Values)
	}
	for k, v := range params {
		r.Query[k] = append([]string(nil), v...)
	}
	return r
}

func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

// Clone returns a deep copy so callers can add a cursor without touching the original query.
func (r *Request) Clone() *Request {
	c := &Request{Endpoint: r.Endpoint, Query: make(url.Values, len(r.Query))}
	for k, v := range r.Query {
		c.Query[k] = append([]string(nil), v...)
	}
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return c
}

// Encode returns the query string in sorted key order.
func (r *Request) Encode() string {
	return r.Query.Encode()
}
