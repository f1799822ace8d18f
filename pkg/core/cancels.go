package core

import "context"

// CancelRemaining reports every item still queued in inputCh through
// report, unless ProcessRemaining was disabled on ctx.
func CancelRemaining[In, Out any](report func(ctx context.Context, in In) Out) func(ctx context.Context,
	inputCh <-chan In, outCh chan<- Out) {
	return func(ctx context.Context, inputCh <-chan In, outCh chan<- Out) {
		if !IsProcessRemainingEnabled(ctx, true) {
			return
		}
		for in := range inputCh {
			outCh <- report(ctx, in)
		}
	}
}

func CancelUnprocessed[In, Out any](report func(ctx context.Context, in In) Out) func(ctx context.Context,
	in In, outCh chan<- Out) {
	return func(ctx context.Context, in In, outCh chan<- Out) {
		if IsProcessRemainingEnabled(ctx, true) {
			outCh <- report(ctx, in)
		}
	}
}

// ReportCancelled builds handlers that turn every unprocessed item into an
// outcome via report.
func ReportCancelled[In, Out any](report func(ctx context.Context, in In) Out) CancellationHandlers[In, Out] {
	return CancellationHandlers[In, Out]{
		OnCancel:            CancelRemaining(report),
		OnCancelUnprocessed: CancelUnprocessed(report),
	}
}
