package core

import (
	"context"
	"sync"
)

// CancellationHandlers decide what happens to items that were not processed
// because ctx was cancelled.
type CancellationHandlers[In, Out any] struct {
	// OnCancel receives the input channel once the line stops.
	OnCancel func(ctx context.Context, inputCh <-chan In, outCh chan<- Out)
	// OnCancelUnprocessed receives an item taken from the input but never started.
	OnCancelUnprocessed func(ctx context.Context, unprocessed In, outCh chan<- Out)
}

// Locomotive is one worker line: it takes items from inputCh, runs engine on
// each and sends every outcome to outCh. The caller must drain outCh until
// it is closed.
func Locomotive[In, Out any](ctx context.Context, inputCh <-chan In, outCh chan<- Out,
	engine func(ctx context.Context, input In) Out,
	handlers CancellationHandlers[In, Out], wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			if handlers.OnCancel != nil {
				handlers.OnCancel(ctx, inputCh, outCh)
			}
			return
		case in, ok := <-inputCh:
			if !ok {
				return
			}

			if ctx.Err() != nil {
				if handlers.OnCancelUnprocessed != nil {
					handlers.OnCancelUnprocessed(ctx, in, outCh)
				}
				if handlers.OnCancel != nil {
					handlers.OnCancel(ctx, inputCh, outCh)
				}
				return
			}

			outCh <- engine(ctx, in)
		}
	}
}
