package game

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ori-shem-tov/scratchcard/game"

// operation ties the span, metrics and logs of one façade call together.
type operation struct {
	name  string
	span  trace.Span
	start time.Time
	entry *log.Entry
}

func (g *Game) startOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (*operation, context.Context) {
	tracer := g.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))

	fields := log.Fields{"operation": name}
	for _, a := range attrs {
		fields[string(a.Key)] = a.Value.Emit()
	}
	entry := log.WithFields(fields)
	entry.Debug("operation started")
	return &operation{name: name, span: span, start: time.Now(), entry: entry}, ctx
}

func (o *operation) end(err error) {
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
		o.entry.Warnf("operation failed after %v: %v", time.Since(o.start), err)
	} else {
		o.span.SetStatus(codes.Ok, "")
		o.entry.Infof("operation completed in %v", time.Since(o.start))
	}
	o.span.End()
	RecordOperation(o.name, o.start, err)
}

func key(name string, v interface{ String() string }) attribute.KeyValue {
	return attribute.String(name, v.String())
}
