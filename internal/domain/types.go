package domain

// PageInfo describes one page of a larger result set.
type PageInfo struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPageInfo computes page metadata; page and limit must already be positive.
func NewPageInfo(page, limit, total int) PageInfo {
	totalPages := 0
	if limit > 0 && total > 0 {
		totalPages = (total-1)/limit + 1
	}
	return PageInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		Limit:       limit,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

func (r RequestContext) IsAdmin() bool { return r.Role == "admin" }
