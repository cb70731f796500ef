package exchange

import "net/url"

type Option func(*Options)

// Options carries per-call settings shared by the fetch methods.
type Options struct {
	// Params are extra query parameters added to every request of the call.
	Params url.Values
}

// WithParam adds one extra query parameter.
func WithParam(key, value string) Option {
	return func(o *Options) {
		if o.Params == nil {
			o.Params = make(url.Values)
		}
		o.Params.Add(key, value)
	}
}

// WithParams adds a set of extra query parameters.
func WithParams(params url.Values) Option {
	return func(o *Options) {
		if o.Params == nil {
			o.Params = make(url.Values)
		}
		for k, vs := range params {
			for _, v := range vs {
				o.Params.Add(k, v)
			}
		}
	}
}

func ApplyOptions(opts ...Option) *Options {
	o := &Options{Params: make(url.Values)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
