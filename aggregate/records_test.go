package aggregate

import (
	"context"
	"testing"

	"github.com/rrmetrics/eventcode/domain"
	"github.com/rrmetrics/eventcode/errs"
	"github.com/stretchr/testify/require"
)

func TestByYear(t *testing.T) {
	dom, err := domain.New(2000, 2001)
	require.NoError(t, err)
	r := newReducer(t)

	keys := []uint64{7, 7, 9, 0}
	yearly := [][]float64{
		{1, 3, 10, 50},
		{2, 2, 20, 50},
	}

	records, err := ByYear(context.Background(), r, keys, yearly, "ndvi", dom, Region{})
	require.NoError(t, err)
	require.Equal(t, []Record{
		{Key: 7, Attribute: "ndvi", Year: 2000, Value: 2},
		{Key: 9, Attribute: "ndvi", Year: 2000, Value: 10},
		{Key: 7, Attribute: "ndvi", Year: 2001, Value: 2},
		{Key: 9, Attribute: "ndvi", Year: 2001, Value: 20},
	}, records)
}

func TestByYear_YearMismatch(t *testing.T) {
	dom, err := domain.New(2000, 2002)
	require.NoError(t, err)

	_, err = ByYear(context.Background(), newReducer(t), []uint64{1}, [][]float64{{1}}, "ndvi", dom, Region{})
	require.ErrorIs(t, err, errs.ErrDomainMismatch)
}

func TestArea(t *testing.T) {
	keys := []uint64{3, 3, 4, 0}

	records, err := Area(context.Background(), newReducer(t), keys, Region{Resolution: 30})
	require.NoError(t, err)
	require.Equal(t, []Record{
		{Key: 3, Attribute: AreaAttribute, Value: 1800},
		{Key: 4, Attribute: AreaAttribute, Value: 900},
	}, records)

	_, err = Area(context.Background(), newReducer(t), keys, Region{})
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestSortRecords(t *testing.T) {
	records := []Record{
		{Key: 2, Attribute: "b", Year: 1},
		{Key: 1, Attribute: "b", Year: 1},
		{Key: 9, Attribute: "a", Year: 5},
		{Key: 1, Attribute: "b", Year: 0},
	}
	SortRecords(records)

	require.Equal(t, []Record{
		{Key: 9, Attribute: "a", Year: 5},
		{Key: 1, Attribute: "b", Year: 0},
		{Key: 1, Attribute: "b", Year: 1},
		{Key: 2, Attribute: "b", Year: 1},
	}, records)
}
