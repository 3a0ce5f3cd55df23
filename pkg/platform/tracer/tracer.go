// Package tracer is a thin tracing abstraction so services can emit spans
// without importing OpenTelemetry directly.
//
//	ctx, span := t.Start(ctx, tracer.SpanDummyCreate, tracer.String(tracer.AttrNationalID, hashed))
//	defer func() { span.End(err) }()
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute { return Attribute{Key: key, Value: value} }

func Bool(key string, value bool) Attribute { return Attribute{Key: key, Value: value} }

func Int64(key string, value int64) Attribute { return Attribute{Key: key, Value: value} }

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

const (
	SpanDummyGet      = "dummy.get"
	SpanDummyGetByDNI = "dummy.get_by_national_id"
	SpanDummyList     = "dummy.list"
	SpanDummyCreate   = "dummy.create"
	SpanDummyUpdate   = "dummy.update"
	SpanDummyDelete   = "dummy.delete"
	SpanDummyFind     = "dummy.find_by_criteria"
	SpanDummyFilter   = "dummy.filter_by_criteria"
)

const (
	AttrDummyID     = "dummy.id"
	AttrNationalID  = "national_id"
	AttrResultCount = "result.count"
	AttrBackend     = "store.backend"
)

const EventPublished = "event.published"
