package service

import (
	"errors"
	"fmt"
	"math"
)

// Pagination defaults for listing endpoints.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*pageSize from overflowing an int.
	MaxPage = math.MaxInt / MaxPageSize
)

// ErrPageOutOfRange is joined to ErrInvalidInput when page exceeds MaxPage.
var ErrPageOutOfRange = errors.New("page is out of range")

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// NormalizePage clamps page and pageSize into the accepted range. A page
// beyond MaxPage cannot be addressed and is rejected as invalid input.
func NormalizePage(page, pageSize int) (int, int, error) {
	if page > MaxPage {
		return 0, 0, fmt.Errorf("%w: %w", ErrInvalidInput, ErrPageOutOfRange)
	}
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize, nil
}

// offset returns the number of rows preceding page.
func offset(page, pageSize int) int {
	return (page - 1) * pageSize
}

func newPage[T any](items []T, page, pageSize, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
}
