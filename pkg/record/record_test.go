package record

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	t.Parallel()

	h, err := ParseHeader([]string{"\ufeffid", " value ", "label"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "value", "label"}, h.Names())
	assert.Equal(t, 1, h.Index("value"))
	assert.Equal(t, -1, h.Index("nope"))
	assert.Equal(t, []string{"x"}, h.Missing("id", "x"))
	assert.Equal(t, "id,value,label", h.String())

	_, err = ParseHeader(nil)
	assert.ErrorIs(t, err, ErrEmptyHeader)

	_, err = ParseHeader([]string{"id", ""})
	assert.ErrorIs(t, err, ErrEmptyHeader)

	_, err = ParseHeader([]string{"id", "id"})
	assert.ErrorIs(t, err, ErrDuplicateColumn)
}

func TestDecode_Map(t *testing.T) {
	t.Parallel()

	h := MustHeader("id", "value", "label")
	r, err := MapDecoder{}.Decode(h, []string{"1", "10.5", "Positive"})
	require.NoError(t, err)
	assert.Equal(t, Record{"id": "1", "value": "10.5", "label": "Positive"}, r)
	assert.Equal(t, []string{"id", "label", "value"}, r.Keys())

	_, err = Decode(h, []string{"1", "2"})
	var fc *FieldCountError
	require.ErrorAs(t, err, &fc)
	assert.ErrorIs(t, err, ErrFieldCountMismatch)
	assert.Equal(t, 3, fc.Want)
	assert.Equal(t, 2, fc.Got)

	clone := r.Clone()
	clone["id"] = "2"
	assert.Equal(t, "1", r["id"])
}

func TestStructDecoder_DataRow(t *testing.T) {
	t.Parallel()

	d := MustStructDecoder[DataRow]()
	h := MustHeader("label", "id", "value")
	require.NoError(t, d.Bind(h))

	row, err := d.Decode(h, []string{"Negative", "2", "5.0"})
	require.NoError(t, err)
	assert.Equal(t, DataRow{ID: 2, Value: 5.0, Label: "Negative"}, row)
	assert.Equal(t, Record{"id": "2", "value": "5", "label": "Negative"}, row.Record())

	_, err = d.Decode(h, []string{"Negative", "two", "5.0"})
	var conv *ConversionError
	require.ErrorAs(t, err, &conv)
	assert.ErrorIs(t, err, ErrTypeConversion)
	assert.ErrorIs(t, err, strconv.ErrSyntax)
	assert.Equal(t, "id", conv.Field)

	_, err = d.Decode(h, []string{"x"})
	assert.ErrorIs(t, err, ErrFieldCountMismatch)
}

func TestStructDecoder_BindMissing(t *testing.T) {
	t.Parallel()

	d := MustStructDecoder[DataRow]()
	err := d.Bind(MustHeader("1", "10.5", "Positive"))
	assert.ErrorIs(t, err, ErrHeaderMissing)
}

func TestStructDecoder_Kinds(t *testing.T) {
	t.Parallel()

	type wide struct {
		A int8    `csv:"a"`
		B uint16  `csv:"b"`
		C float32 `csv:"c"`
		D bool    `csv:"d,omitempty"`
		E string  `csv:"-"`
		F string
	}

	d, err := NewStructDecoder[wide]()
	require.NoError(t, err)

	h := MustHeader("a", "b", "c", "d")
	got, err := d.Decode(h, []string{"-5", "65535", "1.5", "true"})
	require.NoError(t, err)
	assert.Equal(t, wide{A: -5, B: 65535, C: 1.5, D: true}, got)

	_, err = d.Decode(h, []string{"300", "1", "1", "true"})
	assert.ErrorIs(t, err, strconv.ErrRange)

	_, err = NewStructDecoder[int]()
	assert.ErrorIs(t, err, ErrUnsupportedType)

	type bad struct {
		M map[string]string `csv:"m"`
	}
	_, err = NewStructDecoder[bad]()
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestStructDecoder_Concurrent(t *testing.T) {
	t.Parallel()

	d := MustStructDecoder[DataRow]()
	h := MustHeader("id", "value", "label")

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			row, err := d.Decode(h, []string{strconv.Itoa(i), "1.25", "x"})
			assert.NoError(t, err)
			assert.Equal(t, i, row.ID)
		}()
	}
	wg.Wait()
}
