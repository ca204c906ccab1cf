package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int   `json:"total_count"`
	TotalPages int   `json:"total_pages"`
	StartIndex int   `json:"start_index"`
	EndIndex   int   `json:"end_index"`
	Window     []int `json:"window"`
}
