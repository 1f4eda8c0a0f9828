// Package projection holds the generic building blocks of the query side.
package projection

import (
	"context"
	"errors"
	"math"
)

// ErrUnsupported is returned by a Reader operation that was not configured.
var ErrUnsupported = errors.New("read operation not supported")

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
	// MaxPage keeps Page*Size within int for every accepted size.
	MaxPage = math.MaxInt / MaxPageSize
)

// PageRequest selects a zero-based page.
type PageRequest struct {
	Page     int
	Size     int
	SortDesc bool
}

// Normalize clamps the request to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	n := p.Normalize()
	return n.Page * n.Size
}

// Page is a slice of results plus the information needed to walk the rest.
type Page[T any] struct {
	Items      []T
	Page       int
	Size       int
	TotalItems int64
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalItems + int64(p.Size) - 1) / int64(p.Size))
}

// Paginate cuts one page out of an already materialized result.
func Paginate[T any](all []T, req PageRequest) Page[T] {
	req = req.Normalize()
	page := Page[T]{Page: req.Page, Size: req.Size, TotalItems: int64(len(all)), Items: []T{}}
	start := req.Offset()
	if start >= len(all) {
		return page
	}
	end := start + req.Size
	if end > len(all) {
		end = len(all)
	}
	page.Items = append(page.Items, all[start:end]...)
	return page
}

// Reader is a read service assembled from plain functions. Operations left nil
// report ErrUnsupported, except Page which falls back to FindAll.
type Reader[K comparable, T any] struct {
	FindAll      func(ctx context.Context) ([]T, error)
	FindPage     func(ctx context.Context, req PageRequest) (Page[T], error)
	FindByID     func(ctx context.Context, id K) (T, error)
	FindListByID func(ctx context.Context, id K) ([]T, error)
}

func (r Reader[K, T]) All(ctx context.Context) ([]T, error) {
	if r.FindAll == nil {
		return nil, ErrUnsupported
	}
	return r.FindAll(ctx)
}

func (r Reader[K, T]) Page(ctx context.Context, req PageRequest) (Page[T], error) {
	if r.FindPage != nil {
		return r.FindPage(ctx, req.Normalize())
	}
	if r.FindAll == nil {
		return Page[T]{}, ErrUnsupported
	}
	all, err := r.FindAll(ctx)
	if err != nil {
		return Page[T]{}, err
	}
	return Paginate(all, req), nil
}

func (r Reader[K, T]) ByID(ctx context.Context, id K) (T, error) {
	if r.FindByID == nil {
		var zero T
		return zero, ErrUnsupported
	}
	return r.FindByID(ctx, id)
}

func (r Reader[K, T]) ListByID(ctx context.Context, id K) ([]T, error) {
	if r.FindListByID == nil {
		return nil, ErrUnsupported
	}
	return r.FindListByID(ctx, id)
}
