package core

import (
	"context"
	"sync"
)

// Run starts lines worker lines over inputCh and returns their outcomes. The
// returned channel is closed once every line has exited, which makes draining
// it the barrier for the whole fan-out. lines <= 0 is treated as Unbounded.
func Run[In, Out any](ctx context.Context, inputCh <-chan In,
	engine func(ctx context.Context, input In) Out,
	handlers CancellationHandlers[In, Out], lines int) <-chan Out {

	if lines <= 0 {
		return Spawn(ctx, inputCh, engine, handlers)
	}

	out := make(chan Out)
	wg := &sync.WaitGroup{}

	for range lines {
		wg.Add(1)
		go Locomotive(ctx, inputCh, out, engine, handlers, wg)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Spawn starts one goroutine per input item with no upper bound.
func Spawn[In, Out any](ctx context.Context, inputCh <-chan In,
	engine func(ctx context.Context, input In) Out,
	handlers CancellationHandlers[In, Out]) <-chan Out {

	out := make(chan Out)
	wg := &sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case <-ctx.Done():
				if handlers.OnCancel != nil {
					handlers.OnCancel(ctx, inputCh, out)
				}
				return
			case in, ok := <-inputCh:
				if !ok {
					return
				}

				if ctx.Err() != nil {
					if handlers.OnCancelUnprocessed != nil {
						handlers.OnCancelUnprocessed(ctx, in, out)
					}
					if handlers.OnCancel != nil {
						handlers.OnCancel(ctx, inputCh, out)
					}
					return
				}

				wg.Add(1)
				go func(in In) {
					defer wg.Done()
					out <- engine(ctx, in)
				}(in)
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
