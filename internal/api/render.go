package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/nitesh/blog/pkg/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page template names, passed to c.HTML.
const (
	pageIndex   = "index.html"
	pageAbout   = "about.html"
	pagePosts   = "posts.html"
	pageDetail  = "posts_detail.html"
	pageUpdate  = "post_update.html"
	pageCreate  = "create-article.html"
	pageError   = "error.html"
	baseLayout  = "base.html"
	layoutBlock = "base"
)

var pageNames = []string{pageIndex, pageAbout, pagePosts, pageDetail, pageUpdate, pageCreate, pageError}

// PageData is the data bag every page receives.
type PageData struct {
	Title    string
	Article  *models.Article
	Articles []*models.Article

	Error      string
	StatusCode int

	MaxTitleLen int
	MaxIntroLen int
}

func newPageData(title string) PageData {
	return PageData{
		Title:       title,
		MaxTitleLen: models.MaxTitleLen,
		MaxIntroLen: models.MaxIntroLen,
	}
}

var templateFuncs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		return t.UTC().Format("02.01.2006 15:04 UTC")
	},
}

// pageRender is a gin HTMLRender holding one template set per page. Every
// page defines "content", so the sets cannot share one namespace.
type pageRender struct {
	pages map[string]*template.Template
}

func loadPages() (*pageRender, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).
			ParseFS(templatesFS, "templates/"+baseLayout, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &pageRender{pages: pages}, nil
}

// Instance implements render.HTMLRender.
func (p *pageRender) Instance(name string, data any) render.Render {
	tmpl, ok := p.pages[name]
	if !ok {
		tmpl = p.pages[pageError]
		data = PageData{Title: "Error", Error: "unknown page " + name, StatusCode: http.StatusInternalServerError}
	}
	return render.HTML{Template: tmpl, Name: layoutBlock, Data: data}
}

// renderError renders the error page with statusCode.
func (h *Handler) renderError(c *gin.Context, statusCode int, message string) {
	data := newPageData("Error")
	data.Error = message
	data.StatusCode = statusCode
	c.HTML(statusCode, pageError, data)
}
