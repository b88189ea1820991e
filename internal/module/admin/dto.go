package admin

// FlagsRequest is the body of a detail PATCH. Omitted flags keep their value.
type FlagsRequest struct {
	IsActive *bool `json:"is_active"`
	IsStaff  *bool `json:"is_staff"`
}

// ListQuery documents the list view query parameters. Any other
// parameter is treated as a filter; a __like suffix matches substrings.
type ListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Sort     string `form:"sort"`
}

// IndexEntry describes one registered resource.
type IndexEntry struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	URL   string `json:"url"`
}
