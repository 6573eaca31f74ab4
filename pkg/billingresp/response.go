package billingresp

import (
	"time"

	"github.com/r9s-ai/open-billing-client/internal/logx"
)

// Payload is what the transport hands over for one completed request.
type Payload struct {
	StatusCode int
	// Body is the decoded structured body, or nil when the body could not be decoded.
	Body any
	// RawBody is the undecoded body, used only for fallback recovery.
	RawBody string
}

// Response wraps the canonical tree of one billing API response.
// It is not modified after New returns and may be read from several goroutines.
type Response struct {
	payload   Payload
	dialect   *Dialect
	now       func() time.Time
	logger    logx.Logger
	tree      Node
	recovered bool
}

type Option func(*Response)

// WithClock replaces the wall clock used by time-relative queries.
func WithClock(now func() time.Time) Option {
	return func(r *Response) {
		if now != nil {
			r.now = now
		}
	}
}

func WithDialect(d *Dialect) Option {
	return func(r *Response) {
		if d != nil {
			r.dialect = d
		}
	}
}

func WithLogger(l logx.Logger) Option {
	return func(r *Response) {
		if l != nil {
			r.logger = l
		}
	}
}

// New normalizes p. When the structured body is absent or yields an invalid response, the raw
// body is re-read as XML and, if that succeeds, the resulting tree replaces the primary one.
func New(p Payload, opts ...Option) *Response {
	r := &Response{
		payload: p,
		dialect: defaultDialect,
		now:     time.Now,
		logger:  logx.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.tree = Normalize(p.Body, r.dialect)
	if p.Body == nil || !r.Valid() {
		r.recoverFromRawBody()
	}
	return r
}

func (r *Response) recoverFromRawBody() {
	raw := parseFallbackXML(r.payload.RawBody)
	if raw == nil {
		r.logger.Debug("fallback recovery skipped: raw body is not xml", "status", r.payload.StatusCode)
		return
	}
	r.tree = splitAuxCodes(Normalize(raw, r.dialect))
	r.recovered = true
	r.logger.Debug("fallback recovery applied", "status", r.payload.StatusCode, "errors", r.tree.Get(KeyErrors).Len())
}

// Valid reports whether the service returned no errors and a status below 400.
func (r *Response) Valid() bool {
	return r.tree.Get(KeyErrors).Len() == 0 && r.payload.StatusCode < 400
}

// Errors returns the unified error records.
func (r *Response) Errors() []Node {
	return r.tree.Get(KeyErrors).Items()
}

// ErrorMessages renders each error as its text, suffixed with ": fieldName" when present.
func (r *Response) ErrorMessages() []string {
	errs := r.tree.Get(KeyErrors).items
	out := make([]string, 0, len(errs))
	for _, rec := range errs {
		msg := rec.Get(KeyText).String()
		if field := rec.Get(KeyFieldName).String(); field != "" {
			msg += ": " + field
		}
		out = append(out, msg)
	}
	return out
}

// Get returns a top-level canonical entry.
func (r *Response) Get(k Key) Node { return r.tree.Get(k) }

// Tree returns the whole canonical tree.
func (r *Response) Tree() Node { return r.tree }

// Lookup evaluates a restricted JSONPath against the canonical tree.
func (r *Response) Lookup(path string) []Node { return r.tree.Lookup(path) }

func (r *Response) StatusCode() int { return r.payload.StatusCode }

func (r *Response) RawBody() string { return r.payload.RawBody }

// Recovered reports whether the tree came from the XML fallback.
func (r *Response) Recovered() bool { return r.recovered }
