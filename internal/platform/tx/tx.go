package tx

import (
	"context"
	"sync"
)

// Manager wraps read-modify-write boundaries that span adapter calls.
type Manager interface {
	Within(ctx context.Context, fn func(context.Context) error) error
}

// Serial runs one fn at a time. Waiting gives up when ctx ends. The zero
// value is ready to use.
type Serial struct {
	once sync.Once
	slot chan struct{}
}

func (s *Serial) Within(ctx context.Context, fn func(context.Context) error) error {
	s.once.Do(func() { s.slot = make(chan struct{}, 1) })
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.slot }()
	return fn(ctx)
}
