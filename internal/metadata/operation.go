package metadata

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Operation is the handle returned by asynchronous test methods. Wait
// returns only once the operation has completed, reporting ctx.Err() when
// ctx was done first.
type Operation interface {
	Wait(ctx context.Context) error
}

var (
	operationType = reflect.TypeFor[Operation]()
	errChanType   = reflect.TypeFor[<-chan error]()
)

// isAsync reports whether a method result of type t is awaited by the runner
func isAsync(t reflect.Type) bool {
	return t == errChanType || t.Implements(operationType)
}

// Future is an Operation backed by a goroutine
type Future struct {
	done chan struct{}
	err  error
}

// Go runs fn in a new goroutine and returns its Future. A panic in fn
// becomes the Future's error.
func Go(fn func() error) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok {
					f.err = fmt.Errorf("panic in async operation: %w", err)
					return
				}
				f.err = fmt.Errorf("panic in async operation: %v", r)
			}
		}()
		f.err = fn()
	}()
	return f
}

// Wait blocks until the operation completes. When ctx is done first it
// still waits for fn to return and then reports ctx.Err().
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		<-f.done
		return ctx.Err()
	}
}

// Resolver supplies the value of an injectable parameter from the invocation context
type Resolver func(ctx context.Context) (any, bool)

var (
	injectMu    sync.RWMutex
	injectables = map[reflect.Type]Resolver{}
)

var contextType = reflect.TypeFor[context.Context]()

// RegisterInjectable makes parameters of type t runtime supplied
func RegisterInjectable(t reflect.Type, resolve Resolver) {
	injectMu.Lock()
	defer injectMu.Unlock()
	injectables[t] = resolve
}

func injectableFor(t reflect.Type) (Resolver, bool) {
	if t == contextType {
		return func(ctx context.Context) (any, bool) { return ctx, true }, true
	}
	injectMu.RLock()
	defer injectMu.RUnlock()
	resolve, ok := injectables[t]
	return resolve, ok
}
