// Package natsutil publishes flattened blocks to NATS as JSON, in order and
// optionally throttled, with the OpenTelemetry trace in message headers.
package natsutil

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

// traceHeaders lets the OTel propagator read and write NATS message headers.
type traceHeaders nats.Header

func (h traceHeaders) Get(key string) string { return nats.Header(h).Get(key) }

func (h traceHeaders) Set(key, val string) { nats.Header(h).Set(key, val) }

func (h traceHeaders) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	return keys
}

// encode builds the message for one payload. The trace context of ctx
// travels in its headers so consumers can continue the flatten trace.
func encode[T any](ctx context.Context, subject string, v T) (*nats.Msg, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", subject, err)
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	otel.GetTextMapPropagator().Inject(ctx, traceHeaders(msg.Header))
	return msg, nil
}

// Publish sends v as JSON on subject.
func Publish[T any](ctx context.Context, nc *nats.Conn, subject string, v T) error {
	msg, err := encode(ctx, subject, v)
	if err != nil {
		return err
	}
	return nc.PublishMsg(msg)
}

// PublishAll publishes items in order and flushes the connection. When lim
// is non-nil each message waits for a token first. It returns how many
// messages were handed to the connection.
func PublishAll[T any](ctx context.Context, nc *nats.Conn, subject string, lim *rate.Limiter, items []T) (int, error) {
	for i, v := range items {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return i, err
			}
		} else if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := Publish(ctx, nc, subject, v); err != nil {
			return i, fmt.Errorf("publish %d/%d: %w", i+1, len(items), err)
		}
	}
	if err := nc.Flush(); err != nil {
		return len(items), fmt.Errorf("flush: %w", err)
	}
	return len(items), nil
}

// NewLimiter allows perSecond messages with the given burst. A rate of zero
// or less means unlimited and returns nil.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
