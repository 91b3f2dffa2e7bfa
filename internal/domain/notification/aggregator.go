// internal/domain/notification/aggregator.go
package notification

import (
	"context"
	"errors"
)

var (
	ErrFetch = errors.New("notification payload fetch failed")
	ErrSend  = errors.New("direct message send failed")
)

// Aggregator builds the message body for one subject key of a single kind.
type Aggregator interface {
	Fetch(ctx context.Context, subject string) (string, error)
}

// AggregatorFunc adapts a plain function to Aggregator.
type AggregatorFunc func(ctx context.Context, subject string) (string, error)

func (f AggregatorFunc) Fetch(ctx context.Context, subject string) (string, error) {
	return f(ctx, subject)
}
