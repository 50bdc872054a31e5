package http

import (
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/booklend/booklend/internal/auth"
)

// view renders pages and carries the session-backed flash messages.
// When no template directory is configured the same data goes out as
// JSON, which is what the handler tests exercise.
type view struct {
	templates *template.Template
	sessions  *auth.SessionManager
}

func newView(templatesPath string, sessions *auth.SessionManager) *view {
	tmpl := template.New("")
	for _, pattern := range []string{"*.html", "manage/*.html", "reader/*.html", "errors/*.html"} {
		parsed, err := tmpl.ParseGlob(filepath.Join(templatesPath, pattern))
		if err != nil {
			continue
		}
		tmpl = parsed
	}
	if len(tmpl.Templates()) == 0 {
		return &view{templates: nil, sessions: sessions}
	}
	return &view{templates: tmpl, sessions: sessions}
}

// Render emits a page. Flash messages, the role flag and the CSRF
// token ride along with every page.
func (v *view) Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flashes"] = v.sessions.PopFlashes(c.Request)
	data["Flag"] = auth.CurrentIdentity(c).RoleFlag()
	data["CSRFToken"] = auth.GetCSRFToken(c)

	if v.templates == nil || v.templates.Lookup(name) == nil {
		c.JSON(status, data)
		return
	}

	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := v.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		log.Printf("Template error (%s): %v", name, err)
	}
}

// FlashRedirect queues a one-shot message and redirects.
func (v *view) FlashRedirect(c *gin.Context, message, location string) {
	v.sessions.Flash(c.Request, message)
	c.Redirect(http.StatusFound, location)
}

// NotFound renders the 404 error page.
func (v *view) NotFound(c *gin.Context) {
	v.Render(c, http.StatusNotFound, "404.html", gin.H{"Error": "not found"})
}

// BadRequest renders the 400 error page.
func (v *view) BadRequest(c *gin.Context) {
	v.Render(c, http.StatusBadRequest, "400.html", gin.H{"Error": "bad request"})
}

// InternalError logs the error and renders the 500 page. The actual
// error is logged but not exposed to the client.
func (v *view) InternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	v.Render(c, http.StatusInternalServerError, "500.html", gin.H{"Error": "internal server error"})
}

// parseCopies validates the total/available form fields. The schema
// historically accepted these as opaque strings; here non-numeric,
// negative or available > total input is rejected.
func parseCopies(totalStr, availableStr string) (total, available int, ok bool) {
	total, err := strconv.Atoi(totalStr)
	if err != nil || total < 0 {
		return 0, 0, false
	}
	available, err = strconv.Atoi(availableStr)
	if err != nil || available < 0 || available > total {
		return 0, 0, false
	}
	return total, available, true
}

// formValue reads a field from the form body, falling back to the
// query string so the search forms work with either method.
func formValue(c *gin.Context, name string) string {
	if v := c.PostForm(name); v != "" {
		return v
	}
	return c.Query(name)
}
