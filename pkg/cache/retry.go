package cache

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrNetwork marks backend failures that may succeed when retried:
// refused connections, timeouts and dropped sockets.
var ErrNetwork = errors.New("network error")

// newBackOff returns the schedule for retrying backend calls: three
// attempts in total, starting at 100ms. Tests replace it.
var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 5 * time.Second
	return backoff.WithMaxRetries(b, 2)
}

// withRetry runs op until it succeeds, fails with an error that does not
// wrap ErrNetwork, or the schedule or ctx runs out.
func withRetry(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err == nil || errors.Is(err, ErrNetwork) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(newBackOff(), ctx))
}

// transient reports whether a backend error is worth retrying.
func transient(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
