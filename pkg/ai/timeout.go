package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutProvider bounds every completion by a fixed ceiling.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps a Provider so a call that never returns fails with ErrTimeout.
// A non-positive timeout returns p unchanged.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	if timeout <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: timeout}
}

func (t *TimeoutProvider) Complete(parent context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(parent, t.timeout)
	defer cancel()

	text, err := t.inner.Complete(ctx, req)
	if err == nil {
		return text, nil
	}

	if parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w after %s: %v", ErrTimeout, t.timeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return "", err
}

func (t *TimeoutProvider) Model() string {
	return t.inner.Model()
}
