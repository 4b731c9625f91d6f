package execution

import (
	"context"

	"gunit/internal/metadata"
)

// AwaitCompletion blocks until an asynchronous test result completes.
// Values that are not asynchronous complete immediately. When ctx is done
// first the operation is still waited out and ctx.Err() is returned.
func AwaitCompletion(ctx context.Context, value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case metadata.Operation:
		return v.Wait(ctx)
	case <-chan error:
		select {
		case err := <-v:
			return err
		case <-ctx.Done():
			<-v
			return ctx.Err()
		}
	}
	return nil
}

// invoke calls m on the invocation's test object and, for asynchronous
// methods, waits for the returned operation
func invoke(ctx context.Context, c *Context, m *metadata.MethodInfo, args []any) error {
	value, err := m.Call(ctx, c.TestObject, args)
	if err != nil || !m.Async {
		return err
	}
	return AwaitCompletion(ctx, value)
}
