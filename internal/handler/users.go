package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/user-directory-service/internal/model"
	"github.com/maxviazov/user-directory-service/internal/repository"
	"github.com/maxviazov/user-directory-service/internal/service"
	"github.com/maxviazov/user-directory-service/internal/table"
	"github.com/maxviazov/user-directory-service/pkg/response"
)

// PagePath is where the directory page is served.
const PagePath = "/users"

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler { return &UserHandler{svc: svc} }

// Register mounts the JSON API under the versioned group.
func (h *UserHandler) Register(r *gin.RouterGroup) {
	g := r.Group("/users")
	{
		g.GET("", h.list)
		g.GET("/view", h.view)
		g.POST("/cache/invalidate", h.invalidate)
	}
}

// RegisterPages mounts the HTML page and its navigation endpoints at the root.
func (h *UserHandler) RegisterPages(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, PagePath) })
	g := r.Group(PagePath)
	{
		g.GET("", h.page)
		g.GET("/goto", h.gotoPage)
		g.GET("/page-size", h.pageSize)
	}
}

func (h *UserHandler) viewQuery(c *gin.Context) service.ViewQuery {
	q := c.Request.URL.Query()
	return service.ViewQuery{Page: h.svc.ParsePageRequest(q), Table: table.ParseState(q)}
}

func (h *UserHandler) list(c *gin.Context) {
	p := h.svc.ParsePageRequest(c.Request.URL.Query())
	res, err := h.svc.Page(c.Request.Context(), p)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	response.WriteData(c, http.StatusOK, res)
}

func (h *UserHandler) view(c *gin.Context) {
	v := h.svc.View(c.Request.Context(), h.viewQuery(c))
	response.WriteData(c, viewStatus(v), v)
}

func (h *UserHandler) invalidate(c *gin.Context) {
	p, err := h.svc.ParseInvalidateRequest(formValue(c, "page"), formValue(c, "limit"))
	if err != nil {
		response.WriteError(c, err)
		return
	}
	if err := h.svc.Invalidate(c.Request.Context(), p); err != nil {
		response.WriteError(c, err)
		return
	}
	scope := gin.H{"status": "invalidated", "scope": "all"}
	if p != nil {
		scope = gin.H{"status": "invalidated", "scope": "page", "page": p.Page, "limit": p.Limit}
	}
	response.WriteData(c, http.StatusOK, scope)
}

func (h *UserHandler) page(c *gin.Context) {
	q := h.viewQuery(c)
	v := h.svc.View(c.Request.Context(), q)
	renderPage(c, viewStatus(v), newPageData(v, h.svc.PageSizes()))
}

// gotoPage applies the page-change guard against the page count of the page the user came from
// and redirects. A rejected move redirects back to that page.
func (h *UserHandler) gotoPage(c *gin.Context) {
	q := c.Request.URL.Query()
	from := h.svc.ParsePageRequest(url.Values{"page": {q.Get("from")}, "limit": {q.Get("limit")}})

	totalPages := 0
	if res, err := h.svc.Page(c.Request.Context(), from); err == nil {
		totalPages = res.TotalPages
	}

	target, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		target = 0
	}
	if page, ok := h.svc.Navigate(target, totalPages); ok {
		c.Redirect(http.StatusFound, pageURL(repository.PageRequest{Page: page, Limit: from.Limit}))
		return
	}
	c.Redirect(http.StatusFound, pageURL(from))
}

func (h *UserHandler) pageSize(c *gin.Context) {
	c.Redirect(http.StatusFound, pageURL(h.svc.PageSize(c.Query("limit"))))
}

func viewStatus(v model.UserView) int {
	switch v.Status {
	case model.StatusError:
		return http.StatusBadGateway
	case model.StatusLoading:
		return http.StatusAccepted
	default:
		return http.StatusOK
	}
}

// pageURL links to a page without any table state; sorting and filters reset on navigation.
func pageURL(p repository.PageRequest) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
	return PagePath + "?" + v.Encode()
}

func formValue(c *gin.Context, key string) string {
	if v, ok := c.GetQuery(key); ok {
		return v
	}
	return c.PostForm(key)
}
