// Package table applies client-side filtering and sorting to the users of the loaded page.
// It never changes which page is loaded, only which rows of it are shown and in what order.
package table

import (
	"net/url"
	"sort"
	"strings"

	"github.com/maxviazov/user-directory-service/internal/model"
)

// ColumnDef describes one table column.
type ColumnDef struct {
	Key      string
	Header   string
	Sortable bool
	value    func(model.User) string
}

// Columns is the fixed column set of the directory table, in display order.
var Columns = []ColumnDef{
	{Key: "name", Header: "Name", Sortable: true, value: func(u model.User) string { return u.Name }},
	{Key: "email", Header: "Email", Sortable: true, value: func(u model.User) string { return u.Email }},
	{Key: "phone", Header: "Phone", value: func(u model.User) string { return u.Phone }},
	{Key: "website", Header: "Website", value: func(u model.User) string { return u.Website }},
}

// Query string keys holding the table state.
const (
	ParamGlobalFilter = "q"
	ParamSort         = "sort"
	ParamFilterPrefix = "filter."
)

func column(key string) (ColumnDef, bool) {
	for _, c := range Columns {
		if c.Key == key {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// Apply returns the rows of users that pass the global and column filters, sorted by the
// state's sort spec. The input slice is not modified.
func Apply(users []model.User, st model.TableState) []model.User {
	global := strings.ToLower(strings.TrimSpace(st.GlobalFilter))

	rows := make([]model.User, 0, len(users))
	for _, u := range users {
		if global != "" && !matchesAny(u, global) {
			continue
		}
		if !matchesColumns(u, st.ColumnFilters) {
			continue
		}
		rows = append(rows, u)
	}

	if len(st.Sorting) > 0 {
		sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j], st.Sorting) })
	}
	return rows
}

func matchesAny(u model.User, needle string) bool {
	for _, c := range Columns {
		if strings.Contains(strings.ToLower(c.value(u)), needle) {
			return true
		}
	}
	return false
}

func matchesColumns(u model.User, filters map[string]string) bool {
	for key, f := range filters {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		c, ok := column(key)
		if !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(c.value(u)), f) {
			return false
		}
	}
	return true
}

// less compares by each sort entry in turn; later entries break ties of earlier ones.
func less(a, b model.User, specs []model.SortSpec) bool {
	for _, s := range specs {
		c, ok := column(s.Column)
		if !ok {
			continue
		}
		va, vb := strings.ToLower(c.value(a)), strings.ToLower(c.value(b))
		if va == vb {
			continue
		}
		if s.Desc {
			return va > vb
		}
		return va < vb
	}
	return false
}

// ToggleSort returns a copy of st sorted by column alone: ascending unless it is currently
// sorted ascending, in which case descending. Unknown or unsortable columns leave st unchanged.
func ToggleSort(st model.TableState, key string) model.TableState {
	c, ok := column(key)
	if !ok || !c.Sortable {
		return st
	}
	desc := Direction(st, key) == "asc"
	out := st
	out.Sorting = []model.SortSpec{{Column: key, Desc: desc}}
	return out
}

// Direction reports "asc", "desc" or "" for the column in st.
func Direction(st model.TableState, key string) string {
	for _, s := range st.Sorting {
		if s.Column == key {
			if s.Desc {
				return "desc"
			}
			return "asc"
		}
	}
	return ""
}

// ViewColumns renders the column headers with their current sort direction.
func ViewColumns(st model.TableState) []model.Column {
	out := make([]model.Column, 0, len(Columns))
	for _, c := range Columns {
		col := model.Column{Key: c.Key, Header: c.Header, Sortable: c.Sortable}
		if c.Sortable {
			col.Sorted = Direction(st, c.Key)
		}
		out = append(out, col)
	}
	return out
}

// ParseState reads the table state from a query string: q, sort=col:dir[,col:dir] and
// filter.<col>=text. Unknown columns and malformed sort entries are ignored.
func ParseState(q url.Values) model.TableState {
	st := model.TableState{
		GlobalFilter: strings.TrimSpace(q.Get(ParamGlobalFilter)),
		Sorting:      []model.SortSpec{},
	}

	seen := map[string]bool{}
	for _, part := range strings.Split(q.Get(ParamSort), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, dir, _ := strings.Cut(part, ":")
		c, ok := column(key)
		if !ok || !c.Sortable || seen[key] {
			continue
		}
		switch strings.ToLower(dir) {
		case "", "asc":
			st.Sorting = append(st.Sorting, model.SortSpec{Column: key})
		case "desc":
			st.Sorting = append(st.Sorting, model.SortSpec{Column: key, Desc: true})
		default:
			continue
		}
		seen[key] = true
	}

	for _, c := range Columns {
		if v := strings.TrimSpace(q.Get(ParamFilterPrefix + c.Key)); v != "" {
			if st.ColumnFilters == nil {
				st.ColumnFilters = map[string]string{}
			}
			st.ColumnFilters[c.Key] = v
		}
	}
	return st
}

// EncodeState writes st into q, replacing any table keys already present.
func EncodeState(q url.Values, st model.TableState) {
	q.Del(ParamGlobalFilter)
	q.Del(ParamSort)
	for _, c := range Columns {
		q.Del(ParamFilterPrefix + c.Key)
	}

	if st.GlobalFilter != "" {
		q.Set(ParamGlobalFilter, st.GlobalFilter)
	}
	if len(st.Sorting) > 0 {
		parts := make([]string, 0, len(st.Sorting))
		for _, s := range st.Sorting {
			dir := "asc"
			if s.Desc {
				dir = "desc"
			}
			parts = append(parts, s.Column+":"+dir)
		}
		q.Set(ParamSort, strings.Join(parts, ","))
	}
	for key, v := range st.ColumnFilters {
		if v != "" {
			q.Set(ParamFilterPrefix+key, v)
		}
	}
}
