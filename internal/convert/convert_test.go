package convert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice(t *testing.T) {
	doubled, err := Slice([]int{1, 2, 3}, func(i int) (int, error) { return i * 2, nil })
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6}, doubled)

	out, err := Slice[int, int](nil, func(i int) (int, error) { return i, nil })
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestSlice_ShortCircuitsOnFirstError(t *testing.T) {
	boom := errors.New("boom")

	_, err := Slice([]int{1, 2, 3}, func(i int) (int, error) {
		if i == 2 {
			return 0, boom
		}

		return i, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestFlatSlice(t *testing.T) {
	out, err := FlatSlice([]int{1, 2, 3}, func(i int) ([]int, error) {
		return []int{i, i}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2, 2, 3, 3}, out)
}

func TestFlatSlice_ShortCircuitsOnFirstError(t *testing.T) {
	boom := errors.New("boom")

	_, err := FlatSlice([]int{1, 2, 3}, func(i int) ([]int, error) {
		if i == 2 {
			return nil, boom
		}

		return []int{i}, nil
	})
	assert.ErrorIs(t, err, boom)
}
