package sink

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/hamba/avro/v2/ocf"
	"github.com/ib-77/rowbatch/pkg/batch"
	"github.com/ib-77/rowbatch/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "label", "processed"}

func fixture() []record.Record {
	return []record.Record{
		{"id": "1", "label": "Positive", "processed": "true"},
		{"id": "2", "label": "Negative"},
	}
}

func TestNDJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := New(FormatNDJSON, &buf, nil)
	require.NoError(t, err)
	require.NoError(t, w.Write(fixture()))
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Write(fixture()), ErrClosed)

	sc := bufio.NewScanner(&buf)
	var got []record.Record
	for sc.Scan() {
		var r record.Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		got = append(got, r)
	}
	assert.Equal(t, fixture(), got)
}

func TestAvro(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := New(FormatAvro, &buf, columns)
	require.NoError(t, err)
	require.NoError(t, w.Write(fixture()))
	require.NoError(t, w.Write(fixture()[:1]))
	require.NoError(t, w.Close())

	dec, err := ocf.NewDecoder(&buf)
	require.NoError(t, err)

	var got []map[string]any
	for dec.HasNext() {
		var row map[string]any
		require.NoError(t, dec.Decode(&row))
		got = append(got, row)
	}
	require.NoError(t, dec.Error())
	require.Len(t, got, 3)
	assert.Equal(t, "Positive", got[0]["label"])
	assert.Equal(t, "", got[1]["processed"])
	assert.Equal(t, "1", got[2]["id"])
}

func TestAvroSchema_Names(t *testing.T) {
	t.Parallel()

	_, names, err := AvroSchema([]string{"my col", "1st", "my-col", "ok"})
	require.NoError(t, err)
	assert.Equal(t, []string{"my_col", "_1st", "my_col_2", "ok"}, names)

	_, _, err = AvroSchema(nil)
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestArrow(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w, err := New(FormatArrow, &buf, columns)
	require.NoError(t, err)
	require.NoError(t, w.Write(fixture()))
	require.NoError(t, w.Write(nil))
	require.NoError(t, w.Write(fixture()[1:]))
	require.NoError(t, w.Close())

	r, err := ipc.NewReader(&buf)
	require.NoError(t, err)
	defer r.Release()

	assert.Equal(t, columns[1], r.Schema().Field(1).Name)

	var rows int64
	var batches int
	for r.Next() {
		rec := r.Record()
		if batches == 0 {
			labels := rec.Column(1).(*array.String)
			assert.Equal(t, "Positive", labels.Value(0))
			processed := rec.Column(2).(*array.String)
			assert.True(t, processed.IsNull(1))
		}
		rows += rec.NumRows()
		batches++
	}
	require.NoError(t, r.Err())
	assert.Equal(t, 2, batches)
	assert.Equal(t, int64(3), rows)
}

func TestBatches(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	fn := Batches(NewNDJSON(&buf), record.DataRow.Record)

	b := batch.Batch[record.DataRow]{Records: []record.DataRow{{ID: 1, Value: 2.5, Label: "x", Processed: true}}}
	require.NoError(t, fn(context.Background(), b))

	var got record.Record
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got))
	assert.Equal(t, "1", got["id"])
	assert.Equal(t, "true", got["processed"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, fn(ctx, b), context.Canceled)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("AVRO")
	require.NoError(t, err)
	assert.Equal(t, FormatAvro, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatNDJSON, f)

	_, err = ParseFormat("parquet")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	_, err = New("parquet", &bytes.Buffer{}, columns)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
