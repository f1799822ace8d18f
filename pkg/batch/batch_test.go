package batch

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_PartitionLaw(t *testing.T) {
	t.Parallel()

	cases := []struct {
		rows, size int
	}{
		{0, 3}, {1, 3}, {3, 3}, {7, 3}, {1050, 100}, {1000, 100}, {5, 1},
	}

	for _, c := range cases {
		records := make([]int, c.rows)
		for i := range records {
			records[i] = i
		}

		batches, err := Split(records, c.size)
		require.NoError(t, err)

		want := (c.rows + c.size - 1) / c.size
		require.Len(t, batches, want, "rows=%d size=%d", c.rows, c.size)

		var flat []int
		for i, b := range batches {
			assert.Equal(t, i, b.Seq)
			assert.Equal(t, i*c.size, b.Offset)
			if i < len(batches)-1 {
				assert.Equal(t, c.size, b.Len())
			} else {
				tail := c.rows % c.size
				if tail == 0 {
					tail = c.size
				}
				assert.Equal(t, tail, b.Len())
			}
			flat = append(flat, b.Records...)
		}
		assert.Equal(t, len(records), len(flat))
		if c.rows > 0 {
			assert.Equal(t, records, flat)
		}
	}
}

func TestBatcher_AddFlush(t *testing.T) {
	t.Parallel()

	b, err := NewBatcher[string](2)
	require.NoError(t, err)

	_, ok := b.Add("a")
	assert.False(t, ok)
	full, ok := b.Add("b")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, full.Records)

	_, ok = b.Add("c")
	assert.False(t, ok)
	tail, ok := b.Flush()
	require.True(t, ok)
	assert.Equal(t, []string{"c"}, tail.Records)
	assert.Equal(t, 1, tail.Seq)
	assert.Equal(t, 2, tail.Offset)
	assert.NotEqual(t, full.ID, tail.ID)
	assert.Equal(t, 2, b.Emitted())

	_, ok = b.Flush()
	assert.False(t, ok)

	// emitted batches do not share backing arrays
	full.Records[0] = "z"
	assert.Equal(t, "c", tail.Records[0])
}

func TestNewBatcher_InvalidSize(t *testing.T) {
	t.Parallel()

	_, err := NewBatcher[int](0)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = Split([]int{1}, -1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestChunk_IsLazy(t *testing.T) {
	t.Parallel()

	pulled := 0
	src := func(yield func(int) bool) {
		for i := range 100 {
			pulled++
			if !yield(i) {
				return
			}
		}
	}

	for b := range Chunk(src, 10) {
		assert.Equal(t, 10, b.Len())
		break
	}
	assert.Equal(t, 10, pulled)

	all := slices.Collect(Chunk(src, 30))
	assert.Len(t, all, 4)
}

func TestWithRecords_KeepsIdentity(t *testing.T) {
	t.Parallel()

	batches, err := Split([]int{1, 2, 3}, 3)
	require.NoError(t, err)
	in := batches[0]
	out := in.WithRecords([]int{9})

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Seq, out.Seq)
	assert.Equal(t, []int{1, 2, 3}, in.Records)
	assert.Equal(t, "batch#0[0+1]", out.String())
}
