package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nitesh/blog/internal/logging"
	"github.com/nitesh/blog/internal/metrics"
	"github.com/nitesh/blog/internal/service"
	"github.com/nitesh/blog/pkg/models"
)

// Plain-text bodies returned when a mutating route fails.
const (
	msgCreateFailed = "An error occurred when adding the article!"
	msgUpdateFailed = "An error occurred when edit the article!"
	msgDeleteFailed = "An error occurred when deleting the article!"
	msgNotFound     = "Article not found"
)

type Handler struct {
	svc    *service.Service
	logger *slog.Logger
	pages  *pageRender
}

// NewHandler parses the embedded page templates; it fails only if a
// template is malformed.
func NewHandler(svc *service.Service, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pages, err := loadPages()
	if err != nil {
		return nil, err
	}
	return &Handler{svc: svc, logger: logger, pages: pages}, nil
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.HTMLRender = h.pages

	r.GET("/", h.Index)
	r.GET("/home", h.Index)
	r.GET("/about", h.About)

	r.GET("/posts", h.Posts)
	r.GET("/posts/:id", h.PostDetail)
	r.GET("/posts/:id/delete", h.PostDelete)
	r.GET("/posts/:id/update", h.PostUpdateForm)
	r.POST("/posts/:id/update", h.PostUpdate)

	r.GET("/create-article", h.CreateArticleForm)
	r.POST("/create-article", h.CreateArticle)

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.NoRoute(func(c *gin.Context) {
		h.renderError(c, http.StatusNotFound, "Page not found")
	})
}

// Index: GET / and GET /home
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, pageIndex, newPageData("Home"))
}

// About: GET /about
func (h *Handler) About(c *gin.Context) {
	c.HTML(http.StatusOK, pageAbout, newPageData("About"))
}

// Posts: GET /posts
func (h *Handler) Posts(c *gin.Context) {
	arts, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.renderError(c, http.StatusInternalServerError, "Could not load the articles")
		return
	}
	data := newPageData("Posts")
	data.Articles = arts
	c.HTML(http.StatusOK, pagePosts, data)
}

// PostDetail: GET /posts/:id
func (h *Handler) PostDetail(c *gin.Context) {
	art, ok := h.loadArticle(c)
	if !ok {
		return
	}
	data := newPageData(art.Title)
	data.Article = art
	c.HTML(http.StatusOK, pageDetail, data)
}

// PostDelete: GET /posts/:id/delete
func (h *Handler) PostDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, msgNotFound)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, msgDeleteFailed)
		return
	}
	c.Redirect(http.StatusFound, "/posts")
}

// PostUpdateForm: GET /posts/:id/update
func (h *Handler) PostUpdateForm(c *gin.Context) {
	art, ok := h.loadArticle(c)
	if !ok {
		return
	}
	data := newPageData("Edit " + art.Title)
	data.Article = art
	c.HTML(http.StatusOK, pageUpdate, data)
}

// PostUpdate: POST /posts/:id/update
// Form: title, intro, text
func (h *Handler) PostUpdate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, msgNotFound)
		return
	}
	_, err := h.svc.Update(c.Request.Context(), id,
		c.PostForm("title"), c.PostForm("intro"), c.PostForm("text"))
	if err != nil {
		h.fail(c, err, msgUpdateFailed)
		return
	}
	c.Redirect(http.StatusFound, "/posts")
}

// CreateArticleForm: GET /create-article
func (h *Handler) CreateArticleForm(c *gin.Context) {
	c.HTML(http.StatusOK, pageCreate, newPageData("New article"))
}

// CreateArticle: POST /create-article
// Form: title, intro, text
func (h *Handler) CreateArticle(c *gin.Context) {
	_, err := h.svc.Create(c.Request.Context(),
		c.PostForm("title"), c.PostForm("intro"), c.PostForm("text"))
	if err != nil {
		h.fail(c, err, msgCreateFailed)
		return
	}
	c.Redirect(http.StatusFound, "/posts")
}

// loadArticle resolves the :id parameter to an article, writing the error
// response itself when it cannot.
func (h *Handler) loadArticle(c *gin.Context) (*models.Article, bool) {
	id, ok := parseID(c)
	if !ok {
		h.renderError(c, http.StatusNotFound, msgNotFound)
		return nil, false
	}
	art, err := h.svc.Get(c.Request.Context(), id)
	switch {
	case err == nil:
		return art, true
	case errors.Is(err, models.ErrNotFound):
		h.renderError(c, http.StatusNotFound, msgNotFound)
	default:
		h.renderError(c, http.StatusInternalServerError, "Could not load the article")
	}
	return nil, false
}

// fail maps a mutation error to a response: 404 page for a missing article,
// otherwise the plain-text message with 400 for invalid input or 500.
func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		h.renderError(c, http.StatusNotFound, msgNotFound)
	case errors.Is(err, models.ErrValidation):
		logging.FromContext(c.Request.Context(), h.logger).Info("rejected article input",
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err))
		c.String(http.StatusBadRequest, message)
	default:
		c.String(http.StatusInternalServerError, message)
	}
}

// parseID reads the :id path parameter. Like an integer route converter,
// anything but a positive integer does not match.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
