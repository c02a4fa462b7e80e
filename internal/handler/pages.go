package handler

import (
	_ "embed"
	"html/template"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/table"
)

//go:embed templates/users.html
var usersHTML string

var usersPage = template.Must(template.New("users").Parse(usersHTML))

// refreshSeconds is how often the loading page reloads itself.
const refreshSeconds = 1

type headerCell struct {
	model.Column
	SortURL string
}

type filterInput struct {
	Key, Header, Value string
}

type pageData struct {
	View           model.UserView
	Headers        []headerCell
	Filters        []filterInput
	PageSizes      []int
	Sort           string
	PrevURL        string
	NextURL        string
	RefreshSeconds int
}

func newPageData(v model.UserView, pageSizes []int) pageData {
	p := v.Pagination
	d := pageData{
		View:           v,
		PageSizes:      pageSizes,
		RefreshSeconds: refreshSeconds,
		PrevURL:        gotoURL(p.Page, p.Page-1, p.Limit),
		NextURL:        gotoURL(p.Page, p.Page+1, p.Limit),
	}

	enc := url.Values{}
	table.EncodeState(enc, v.Table)
	d.Sort = enc.Get(table.ParamSort)

	for _, col := range v.Columns {
		cell := headerCell{Column: col}
		if col.Sortable {
			q := url.Values{}
			q.Set("page", strconv.Itoa(p.Page))
			q.Set("limit", strconv.Itoa(p.Limit))
			table.EncodeState(q, table.ToggleSort(v.Table, col.Key))
			cell.SortURL = PagePath + "?" + q.Encode()
		}
		d.Headers = append(d.Headers, cell)
		d.Filters = append(d.Filters, filterInput{Key: col.Key, Header: col.Header, Value: v.Table.ColumnFilters[col.Key]})
	}
	return d
}

func gotoURL(from, page, limit int) string {
	q := url.Values{}
	q.Set("from", strconv.Itoa(from))
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return PagePath + "/goto?" + q.Encode()
}

func renderPage(c *gin.Context, status int, d pageData) {
	c.Render(status, render.HTML{Template: usersPage, Name: "users", Data: d})
}
