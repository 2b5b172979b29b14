package alignment

import (
	"math"
	"testing"
	"time"

	"CoinScope/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(m time.Month, d int) time.Time { return time.Date(2021, m, d, 0, 0, 0, 0, time.UTC) }

func mk(name string, dates []time.Time, values ...float64) models.Series {
	return models.Series{Name: name, Dates: dates, Values: values}
}

func TestInnerIntersectionAscending(t *testing.T) {
	a := mk("A", []time.Time{date(1, 1), date(1, 2), date(1, 3), date(1, 4)}, 1, 2, 3, 4)
	b := mk("B", []time.Time{date(1, 2), date(1, 4), date(1, 5)}, 20, 40, 50)

	set, err := Align(models.JoinInner, a, b)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(1, 2), date(1, 4)}, set.Dates)
	assert.Equal(t, []string{"A", "B"}, set.Names)
	assert.Equal(t, []float64{2, 4}, set.Columns[0])
	assert.Equal(t, []float64{20, 40}, set.Columns[1])
	assert.LessOrEqual(t, set.Len(), b.Len())
}

func TestInnerUnsortedInputYieldsAscending(t *testing.T) {
	a := mk("A", []time.Time{date(1, 3), date(1, 1), date(1, 2)}, 3, 1, 2)
	b := mk("B", []time.Time{date(1, 2), date(1, 3), date(1, 1)}, 20, 30, 10)
	set := Inner(a, b)
	assert.Equal(t, []time.Time{date(1, 1), date(1, 2), date(1, 3)}, set.Dates)
	assert.Equal(t, []float64{1, 2, 3}, set.Columns[0])
	assert.Equal(t, []float64{10, 20, 30}, set.Columns[1])
}

func TestAlignWithItselfIsIdentity(t *testing.T) {
	a := mk("A", []time.Time{date(1, 1), date(1, 2), date(1, 3)}, 1, 2, 3)
	set, err := Align(models.JoinInner, a)
	require.NoError(t, err)
	assert.Equal(t, a, set.Series(0))

	pair := Inner(a, a)
	assert.Equal(t, a.Values, pair.Columns[0])
	assert.Equal(t, a.Values, pair.Columns[1])
}

func TestDisjointRangesAlignToEmpty(t *testing.T) {
	a := mk("A", []time.Time{date(1, 1), date(1, 2), date(1, 3)}, 1, 2, 3)
	b := mk("B", []time.Time{date(2, 1), date(2, 2), date(2, 3)}, 1, 2, 3)

	set, err := Align(models.JoinInner, a, b)
	require.NoError(t, err)
	assert.True(t, set.Empty())

	_, err = Panel(a, b)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
	assert.Contains(t, err.Error(), "A and B share no dates")
}

func TestEmptyInput(t *testing.T) {
	set, err := Align(models.JoinInner)
	require.NoError(t, err)
	assert.True(t, set.Empty())
}

func TestPartialOverlapCollapseDetected(t *testing.T) {
	a := mk("A", []time.Time{date(1, 1), date(1, 2)}, 1, 2)
	b := mk("B", []time.Time{date(1, 2), date(1, 3)}, 1, 2)
	c := mk("C", []time.Time{date(1, 3), date(1, 1)}, 1, 2)

	for _, o := range Overlaps(a, b, c) {
		assert.Equal(t, 1, o.Common)
	}
	_, err := Panel(a, b, c)
	require.ErrorIs(t, err, models.ErrInsufficientData)
	assert.Contains(t, err.Error(), "no date common to all 3 series")
}

func TestOuterFillsMissing(t *testing.T) {
	a := mk("A", []time.Time{date(1, 1), date(1, 3)}, 1, 3)
	b := mk("B", []time.Time{date(1, 2), date(1, 3)}, 20, 30)

	set, err := Align(models.JoinOuter, a, b)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{date(1, 1), date(1, 2), date(1, 3)}, set.Dates)
	assert.True(t, math.IsNaN(set.Columns[0][1]))
	assert.True(t, math.IsNaN(set.Columns[1][0]))
	assert.Equal(t, 30.0, set.Columns[1][2])
}

func TestParseJoin(t *testing.T) {
	j, err := ParseJoin("")
	require.NoError(t, err)
	assert.Equal(t, models.JoinInner, j)

	j, err = ParseJoin("Outer")
	require.NoError(t, err)
	assert.Equal(t, models.JoinOuter, j)

	_, err = ParseJoin("left")
	assert.ErrorIs(t, err, models.ErrInvalidParameter)

	_, err = Align(models.JoinPolicy("cross"))
	assert.ErrorIs(t, err, models.ErrInvalidParameter)
}
