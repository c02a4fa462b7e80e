package repository

// PageRequest is the page/limit window requested from the upstream source.
// Both fields are 1-based and positive once normalized by the service layer.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// PageResult carries a slice of items, the total count reported upstream and the derived page count.
// TotalPages is 0 when the upstream did not report a usable total.
type PageResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// TotalPages returns ceil(total / limit). A non-positive limit or negative total yields 0.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
