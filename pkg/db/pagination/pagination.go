package pagination

// Page is a 1-based offset page request.
type Page struct {
	Page  int `form:"page,default=1" json:"page"`
	Limit int `form:"limit,default=50" json:"limit"`
}

// PageInfo describes the position of a page within the full result set.
type PageInfo struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Normalize clamps the request to page >= 1 and 1 <= limit <= maxLimit,
// substituting defaultLimit for a non-positive limit.
func (p Page) Normalize(defaultLimit, maxLimit int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Info reports the page position for total matching rows.
func (p Page) Info(total int64) PageInfo {
	return PageInfo{
		Page:  p.Page,
		Limit: p.Limit,
		Total: total,
		Pages: TotalPages(total, p.Limit),
	}
}

func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
