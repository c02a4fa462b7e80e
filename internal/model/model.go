// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

// User is a single directory entry as returned by the upstream API.
// Nothing is enforced locally; the record is passed through as-is.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
}

// SortSpec is one entry of the table sort order.
type SortSpec struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// TableState is the transient sort/filter state of the rendered table.
// It lives in the query string of the current view only.
type TableState struct {
	GlobalFilter  string            `json:"global_filter"`
	Sorting       []SortSpec        `json:"sorting"`
	ColumnFilters map[string]string `json:"column_filters,omitempty"`
}

// Pagination describes the Previous/Next controls for the current page.
type Pagination struct {
	Page              int  `json:"page"`
	Limit             int  `json:"limit"`
	TotalPages        int  `json:"total_pages"`
	DisplayTotalPages int  `json:"display_total_pages"`
	HasPrevious       bool `json:"has_previous"`
	HasNext           bool `json:"has_next"`
}

// Column is a rendered table column with its current sort direction ("", "asc" or "desc").
type Column struct {
	Key      string `json:"key"`
	Header   string `json:"header"`
	Sortable bool   `json:"sortable"`
	Sorted   string `json:"sorted,omitempty"`
}

// View status values.
const (
	StatusLoading = "loading"
	StatusError   = "error"
	StatusSuccess = "success"
)

// UserView is everything the page needs to render one request.
type UserView struct {
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	Pagination Pagination `json:"pagination"`
	Table      TableState `json:"table"`
	Columns    []Column   `json:"columns"`
	Rows       []User     `json:"rows"`
	// TotalCount is the upstream record count; 0 when unknown.
	TotalCount int `json:"total_count"`
}
