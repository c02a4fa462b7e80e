package table_test

import (
	"net/url"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/table"
)

func users() []model.User {
	return []model.User{
		{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz", Phone: "1-770-736-8031", Website: "hildegard.org"},
		{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv", Phone: "010-692-6593", Website: "anastasia.net"},
		{ID: 3, Name: "Clementine Bauch", Email: "Nathan@yesenia.net", Phone: "1-463-123-4447", Website: "ramiro.info"},
		{ID: 4, Name: "Patricia Lebsack", Email: "Julianne.OConner@kory.org", Phone: "493-170-9623", Website: "kale.biz"},
		{ID: 5, Name: "Chelsey Dietrich", Email: "Lucio_Hettinger@annie.ca", Phone: "(254)954-1289", Website: "demarco.info"},
	}
}

func ids(us []model.User) []int64 {
	out := make([]int64, len(us))
	for i, u := range us {
		out[i] = u.ID
	}
	return out
}

func TestApply_NoStateKeepsOrder(t *testing.T) {
	in := users()
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(table.Apply(in, model.TableState{})))
}

func TestApply_GlobalFilterMatchesAnyColumnCaseInsensitive(t *testing.T) {
	cases := []struct {
		name   string
		filter string
		want   []int64
	}{
		{"by_name", "ervin", []int64{2}},
		{"by_email", "APRIL", []int64{1}},
		{"by_website", ".info", []int64{3, 5}},
		{"by_phone", "954", []int64{5}},
		{"no_match", "zzz", []int64{}},
		{"blank", "   ", []int64{1, 2, 3, 4, 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := table.Apply(users(), model.TableState{GlobalFilter: tc.filter})
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestApply_ColumnFilters(t *testing.T) {
	st := model.TableState{ColumnFilters: map[string]string{"website": "info", "name": "chel"}}
	assert.Equal(t, []int64{5}, ids(table.Apply(users(), st)))

	st = model.TableState{ColumnFilters: map[string]string{"unknown": "x"}}
	assert.Len(t, table.Apply(users(), st), 5)
}

func TestApply_SortingTogglesAndKeepsMembership(t *testing.T) {
	var st model.TableState

	st = table.ToggleSort(st, "name")
	asc := table.Apply(users(), st)
	assert.Equal(t, "asc", table.Direction(st, "name"))
	assert.Equal(t, []int64{5, 3, 2, 1, 4}, ids(asc))

	st = table.ToggleSort(st, "name")
	desc := table.Apply(users(), st)
	assert.Equal(t, "desc", table.Direction(st, "name"))
	assert.Equal(t, []int64{4, 1, 2, 3, 5}, ids(desc))

	st = table.ToggleSort(st, "name")
	assert.Equal(t, "asc", table.Direction(st, "name"))

	for _, got := range [][]model.User{asc, desc} {
		g := ids(got)
		sort.Slice(g, func(i, j int) bool { return g[i] < g[j] })
		assert.Equal(t, []int64{1, 2, 3, 4, 5}, g, "sorting must not change row membership")
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := users()
	_ = table.Apply(in, model.TableState{Sorting: []model.SortSpec{{Column: "email", Desc: true}}})
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(in))
}

func TestToggleSort_SwitchingColumnStartsAscending(t *testing.T) {
	st := table.ToggleSort(table.ToggleSort(model.TableState{}, "name"), "name")
	st = table.ToggleSort(st, "email")
	assert.Equal(t, []model.SortSpec{{Column: "email"}}, st.Sorting)
}

func TestToggleSort_UnsortableColumnIgnored(t *testing.T) {
	st := model.TableState{Sorting: []model.SortSpec{{Column: "name"}}}
	assert.Equal(t, st, table.ToggleSort(st, "phone"))
	assert.Equal(t, st, table.ToggleSort(st, "nope"))
}

func TestParseAndEncodeState(t *testing.T) {
	q := url.Values{}
	q.Set("q", " graham ")
	q.Set("sort", "email:desc,name,phone:asc,bogus:asc,name:desc,email:sideways")
	q.Set("filter.website", "org")
	q.Set("filter.nope", "x")

	st := table.ParseState(q)
	assert.Equal(t, "graham", st.GlobalFilter)
	assert.Equal(t, []model.SortSpec{{Column: "email", Desc: true}, {Column: "name"}}, st.Sorting)
	assert.Equal(t, map[string]string{"website": "org"}, st.ColumnFilters)

	out := url.Values{"page": {"2"}, "q": {"old"}}
	table.EncodeState(out, st)
	assert.Equal(t, "2", out.Get("page"))
	assert.Equal(t, "graham", out.Get("q"))
	assert.Equal(t, "email:desc,name:asc", out.Get("sort"))
	assert.Equal(t, "org", out.Get("filter.website"))

	require.Equal(t, st, table.ParseState(out))
}

func TestViewColumns(t *testing.T) {
	cols := table.ViewColumns(model.TableState{Sorting: []model.SortSpec{{Column: "email", Desc: true}}})
	require.Len(t, cols, 4)
	assert.Equal(t, model.Column{Key: "name", Header: "Name", Sortable: true}, cols[0])
	assert.Equal(t, model.Column{Key: "email", Header: "Email", Sortable: true, Sorted: "desc"}, cols[1])
	assert.False(t, cols[2].Sortable)
	assert.Equal(t, "Website", cols[3].Header)
}
