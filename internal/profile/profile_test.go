package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprep/pkg/frame"
)

func reviews(t *testing.T) *frame.Table {
	t.Helper()
	s, n := frame.Str, frame.Num
	b := frame.NewBuilder("", []string{"country", "points", "price", "region_2"})
	rows := [][]frame.Value{
		{s("US"), n(87), n(14), frame.Null},
		{s("US"), n(87), n(14), frame.Null},
		{s("Italy"), n(80), frame.Null, frame.Null},
		{s("France"), n(90), n(32), frame.Null},
	}
	for i, r := range rows {
		require.NoError(t, b.Append(n(float64(i)), r...))
	}
	tbl, err := b.Build()
	require.NoError(t, err)
	return tbl
}

func TestOf(t *testing.T) {
	p, err := Of(reviews(t))
	require.NoError(t, err)

	assert.Equal(t, "column", p.IndexName())
	assert.Equal(t, Columns, p.Columns())
	require.Equal(t, 4, p.Len())

	s, n := frame.Str, frame.Num
	assert.Equal(t, s("country"), p.Label(0))
	assert.Equal(t, []frame.Value{s(KindText), n(4), n(0), n(3), s("France"), s("US"), frame.Null}, p.Row(0))
	assert.Equal(t, []frame.Value{s(KindNumber), n(3), n(1), n(2), n(14), n(32), n(20)}, p.Row(2))
	assert.Equal(t, []frame.Value{s(KindEmpty), n(0), n(4), n(0), frame.Null, frame.Null, frame.Null}, p.Row(3))
}

func TestOfMixedColumn(t *testing.T) {
	b := frame.NewBuilder("", []string{"points"})
	require.NoError(t, b.Append(frame.Num(0), frame.Num(90)))
	require.NoError(t, b.Append(frame.Num(1), frame.Str("n/a")))
	tbl, err := b.Build()
	require.NoError(t, err)

	p, err := Of(tbl)
	require.NoError(t, err)
	row := p.Row(0)
	assert.Equal(t, frame.Str(KindMixed), row[0])
	assert.Equal(t, frame.Num(90), row[4], "numbers order before text")
	assert.Equal(t, frame.Str("n/a"), row[5])
	assert.True(t, row[6].IsMissing())
}

func TestSummarize(t *testing.T) {
	got := Summarize(reviews(t))
	assert.Equal(t, Summary{Rows: 4, Columns: 4, CompleteRows: 0, Duplicates: 1}, got)

	dropped, err := reviews(t).Drop("region_2")
	require.NoError(t, err)
	assert.Equal(t, 3, Summarize(dropped).CompleteRows)
}
