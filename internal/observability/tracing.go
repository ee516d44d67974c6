package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Span is an in-process trace span. There is no exporter; spans exist so the
// middleware can tag and time each request and so log lines can correlate on
// the trace ID.
type Span struct {
	TraceID   string            `json:"trace_id"`
	SpanID    string            `json:"span_id"`
	ParentID  string            `json:"parent_id,omitempty"`
	Operation string            `json:"operation"`
	Started   time.Time         `json:"started"`
	Elapsed   time.Duration     `json:"elapsed,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	Err       string            `json:"error,omitempty"`
}

type spanContextKey struct{}

// StartSpan opens a span under whatever span ctx already carries. The caller
// must call End.
func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	span := &Span{
		SpanID:    randomID(),
		Operation: operation,
		Started:   time.Now(),
		Tags:      map[string]string{},
	}

	if parent := SpanFrom(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	} else {
		span.TraceID = randomID()
	}

	return context.WithValue(ctx, spanContextKey{}, span), span
}

func (s *Span) End() {
	s.Elapsed = time.Since(s.Started)
}

func (s *Span) Annotate(key, value string) {
	s.Tags[key] = value
}

func (s *Span) Fail(err error) {
	if err != nil {
		s.Err = err.Error()
	}
}

// SpanFrom returns the span ctx carries, or nil outside a traced request.
func SpanFrom(ctx context.Context) *Span {
	span, _ := ctx.Value(spanContextKey{}).(*Span)
	return span
}

func randomID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
