package core

import (
	"context"
	"runtime"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome struct {
	value     int
	cancelled bool
}

func double(_ context.Context, in int) outcome {
	return outcome{value: in * 2}
}

func reportCancelled(_ context.Context, in int) outcome {
	return outcome{value: in, cancelled: true}
}

func values(t *testing.T, out []outcome) []int {
	t.Helper()
	res := make([]int, 0, len(out))
	for _, o := range out {
		res = append(res, o.value)
	}
	sort.Ints(res)
	return res
}

func TestRun_ProcessesEveryItem(t *testing.T) {
	t.Parallel()

	for _, lines := range []int{1, 5, Unbounded} {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)

		input := make([]int, 100)
		expected := make([]int, 100)
		for i := range input {
			input[i] = i
			expected[i] = i * 2
		}

		out := FromChanMany(ctx, Run(ctx, ToChanMany(ctx, input), double,
			ReportCancelled(reportCancelled), lines))

		assert.Equal(t, expected, values(t, out), "lines=%d", lines)
		cancel()
	}
}

func TestRun_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var active, peak atomic.Int32
	engine := func(_ context.Context, in int) outcome {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return outcome{value: in}
	}

	out := FromChanMany(ctx, Run(ctx, ToChanMany(ctx, make([]int, 20)), engine,
		CancellationHandlers[int, outcome]{}, 2))

	assert.Len(t, out, 20)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_ReportsRemainingOnCancel(t *testing.T) {
	t.Parallel()

	for _, lines := range []int{3, Unbounded} {
		in := make(chan int, 10)
		for i := range 10 {
			in <- i
		}
		close(in)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out := FromChanMany(context.Background(), Run(ctx, in, double, ReportCancelled(reportCancelled), lines))

		require.Len(t, out, 10, "lines=%d", lines)
		for _, o := range out {
			assert.True(t, o.cancelled)
		}
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, values(t, out))
	}
}

func TestRun_SilentCancelWhenRemainingDisabled(t *testing.T) {
	t.Parallel()

	in := make(chan int, 10)
	for i := range 10 {
		in <- i
	}
	close(in)

	ctx, cancel := context.WithCancel(WithProcessOptions(context.Background(), false))
	cancel()

	out := FromChanMany(context.Background(), Run(ctx, in, double, ReportCancelled(reportCancelled), 2))
	assert.Empty(t, out)
}

func TestRun_InFlightItemsStillReported(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	engine := func(ctx context.Context, in int) outcome {
		if in == 0 {
			close(started)
			<-ctx.Done()
			return outcome{value: in, cancelled: true}
		}
		return outcome{value: in}
	}

	in := make(chan int, 4)
	in <- 0
	outCh := Run(ctx, in, engine, ReportCancelled(reportCancelled), 1)

	<-started
	for i := 1; i < 4; i++ {
		in <- i
	}
	close(in)
	cancel()

	out := FromChanMany(context.Background(), outCh)
	assert.Equal(t, []int{0, 1, 2, 3}, values(t, out))
	for _, o := range out {
		assert.True(t, o.cancelled)
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Equal(t, 7, GetWorkerMaxCount(ctx, 7))
	assert.True(t, IsProcessRemainingEnabled(ctx, true))

	ctx = WithProcessOptions(WithWorkerOptions(ctx, 3), false)
	assert.Equal(t, 3, GetWorkerMaxCount(ctx, 7))
	assert.False(t, IsProcessRemainingEnabled(ctx, true))

	assert.Equal(t, runtime.GOMAXPROCS(0), Lines(0))
	assert.Equal(t, Unbounded, Lines(-5))
	assert.Equal(t, 4, Lines(4))
}

func TestToChanFromSeq_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	ch := ToChanFromSeq(ctx, func(yield func(int) bool) {
		for i := 0; ; i++ {
			if !yield(i) {
				return
			}
		}
	})

	assert.Equal(t, 0, <-ch)
	cancel()
	for range ch {
	}

	sent := make(chan int)
	assert.False(t, Send(ctx, sent, 1))
}
