package connector

import (
	"strconv"
	"time"

	"github.com/CiscoTestAutomation/rest/pkg/models"
)

// CallOptions collects the per-call knobs shared by all verbs.
// Adapters seed it with their platform defaults before applying the
// caller's options.
type CallOptions struct {
	Timeout  time.Duration
	Headers  map[string]string
	Query    map[string]string
	Expected []int
	ForceXML bool
	Retry    models.RetryPolicy
}

// Option tunes a single verb or lifecycle call.
type Option func(*CallOptions)

// WithTimeout overrides the connection-level timeout for this call.
func WithTimeout(d time.Duration) Option {
	return func(o *CallOptions) { o.Timeout = d }
}

// WithHeaders merges extra headers into the request. Caller headers
// win over adapter defaults.
func WithHeaders(h map[string]string) Option {
	return func(o *CallOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string, len(h))
		}
		for k, v := range h {
			o.Headers[k] = v
		}
	}
}

// WithExpectedStatus replaces the adapter's expected status set for
// this call. An empty set accepts any 2xx.
func WithExpectedStatus(codes ...int) Option {
	return func(o *CallOptions) { o.Expected = codes }
}

// WithQuery adds one query parameter to the request URL.
func WithQuery(key, value string) Option {
	return func(o *CallOptions) {
		if o.Query == nil {
			o.Query = make(map[string]string)
		}
		o.Query[key] = value
	}
}

// WithBatch requests one specific result batch on platforms exposing
// pagination. The adapter translates index and size into its query
// convention; no auto-pagination happens.
func WithBatch(index, size int) Option {
	return func(o *CallOptions) {
		if o.Query == nil {
			o.Query = make(map[string]string)
		}
		o.Query["from"] = strconv.Itoa(index * size)
		o.Query["size"] = strconv.Itoa(size)
	}
}

// WithXML forces XML payload encoding for structured mappings on
// platforms that accept both.
func WithXML() Option {
	return func(o *CallOptions) { o.ForceXML = true }
}

// WithRetry overrides the adapter's transient-error retry policy for
// this call.
func WithRetry(retries int, wait time.Duration) Option {
	return func(o *CallOptions) { o.Retry = models.RetryPolicy{Retries: retries, Wait: wait} }
}

// Build seeds CallOptions with adapter defaults then applies the
// caller's options in order.
func Build(defaults CallOptions, opts ...Option) CallOptions {
	o := defaults
	if defaults.Headers != nil {
		o.Headers = make(map[string]string, len(defaults.Headers))
		for k, v := range defaults.Headers {
			o.Headers[k] = v
		}
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
