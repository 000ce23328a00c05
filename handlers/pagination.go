package handlers

import (
	"math"
	"strconv"

	"indiflow-dashboard-api/repository"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
	// MaxPageNumber keeps page*size within int.
	MaxPageNumber = math.MaxInt / MaxPageSize
)

type PageResponse struct {
	Data     any   `json:"data"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	HasMore  bool  `json:"has_more"`
}

// ParsePage reads ?page= and ?page_size=, falling back to the first page
// of DefaultPageSize on missing or invalid values.
func ParsePage(c *gin.Context) repository.Page {
	p := repository.Page{Number: 1, Size: DefaultPageSize}

	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		p.Number = n
	}
	if s, err := strconv.Atoi(c.Query("page_size")); err == nil && s > 0 {
		p.Size = s
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	return p
}

func newPageResponse(data any, p repository.Page, total int64) PageResponse {
	return PageResponse{
		Data:     data,
		Page:     p.Number,
		PageSize: p.Size,
		Total:    total,
		HasMore:  int64(p.Number*p.Size) < total,
	}
}
