package helpers

import (
	"net/http"
	"strconv"

	"projectgateway/internal/domain"
)

// PageLimits is the page_size policy of one list endpoint.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

// NotificationPage bounds GET /notifications. The inbox is polled often, so pages stay small.
var NotificationPage = PageLimits{DefaultSize: 20, MaxSize: 50}

// Parse reads page and page_size from the query string. Missing or non-positive values
// fall back to page 1 and DefaultSize; larger sizes are capped at MaxSize.
func (l PageLimits) Parse(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	params := domain.PaginationParams{Page: 1, PageSize: l.DefaultSize}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 1 {
		params.Page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v >= 1 {
		params.PageSize = min(v, l.MaxSize)
	}
	return params
}

// PaginationMeta is the pagination block of a list response.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// NewPaginationMeta describes the page params selected out of total rows.
func NewPaginationMeta(params domain.PaginationParams, total int) PaginationMeta {
	meta := PaginationMeta{Page: params.Page, PageSize: params.PageSize, Total: total}
	if params.PageSize > 0 {
		meta.TotalPages = (total + params.PageSize - 1) / params.PageSize
	}
	meta.HasMore = params.Page < meta.TotalPages
	return meta
}
