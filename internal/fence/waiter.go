// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fence

import "context"

// Waiter is the hardware batch-wait primitive: it blocks until every acquire
// descriptor has signalled and returns one freshly allocated release
// descriptor (owned by the caller). Implementations must not close the
// acquire descriptors; the caller keeps ownership of those.
type Waiter interface {
	WaitAndRelease(ctx context.Context, acquire []int) (release int, err error)
}

// WaiterFunc adapts a function to the Waiter interface.
type WaiterFunc func(ctx context.Context, acquire []int) (int, error)

// WaitAndRelease calls fn.
func (fn WaiterFunc) WaitAndRelease(ctx context.Context, acquire []int) (int, error) {
	return fn(ctx, acquire)
}
