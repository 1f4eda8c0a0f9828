package projection

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	page := Paginate(all, PageRequest{Page: 1, Size: 2})
	assert.Equal(t, []int{3, 4}, page.Items)
	assert.Equal(t, int64(5), page.TotalItems)
	assert.Equal(t, 3, page.TotalPages())

	page = Paginate(all, PageRequest{Page: 9, Size: 2})
	assert.Empty(t, page.Items)

	page = Paginate(all, PageRequest{Page: -1})
	assert.Equal(t, DefaultPageSize, page.Size)
	assert.Len(t, page.Items, 5)
}

func TestPaginate_HugePageIsEmptyNotOverflowed(t *testing.T) {
	req := PageRequest{Page: math.MaxInt / 100, Size: MaxPageSize}
	assert.Equal(t, MaxPage, req.Normalize().Page)
	assert.GreaterOrEqual(t, req.Offset(), 0)

	var page Page[int]
	require.NotPanics(t, func() { page = Paginate([]int{1, 2, 3}, req) })
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(3), page.TotalItems)
}

func TestReader_UnsupportedOperations(t *testing.T) {
	var r Reader[string, int]
	ctx := context.Background()

	_, err := r.All(ctx)
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = r.Page(ctx, PageRequest{})
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = r.ByID(ctx, "a")
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = r.ListByID(ctx, "a")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestReader_PageDerivedFromAll(t *testing.T) {
	r := Reader[string, int]{
		FindAll: func(context.Context) ([]int, error) { return []int{1, 2, 3}, nil },
	}
	page, err := r.Page(context.Background(), PageRequest{Page: 0, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, page.Items)
	assert.Equal(t, int64(3), page.TotalItems)
}
