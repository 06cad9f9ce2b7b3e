package utils

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

type Backoff struct {
	base       time.Duration
	maxRetries int
	jitter     time.Duration
}

func NewBackoff(base time.Duration, maxRetries int) Backoff {
	return Backoff{base: base, maxRetries: maxRetries, jitter: base + base/2}
}

type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// Permanent marca un error que no vale la pena reintentar.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err}
}

// Delay is the wait after attempt i: base*2^i plus up to 1.5*base of jitter.
func (b Backoff) Delay(i int) time.Duration {
	d := time.Duration(1<<i) * b.base
	if b.jitter > 0 {
		d += time.Duration(rand.Int63n(int64(b.jitter)))
	}
	return d
}

// Do llama fn hasta maxRetries+1 veces con backoff exponencial + jitter.
// Se corta ante un error Permanent o cuando ctx termina.
func (b Backoff) Do(ctx context.Context, fn func(i int) error) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		err = fn(i)
		if err == nil {
			return nil
		}
		var p permanentError
		if errors.As(err, &p) {
			return p.err
		}
		if i == b.maxRetries {
			break
		}
		t := time.NewTimer(b.Delay(i))
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Join(err, ctx.Err())
		case <-t.C:
		}
	}
	return err
}
