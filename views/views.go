// Package views exposes the HTML pages as templ components. The markup
// lives in embedded html/template files; FromGoHTML bridges them into the
// component pipeline the handlers render with.
package views

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"auranotes/views/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

func page(name string, data any) templ.Component {
	return templ.FromGoHTML(pages.Lookup(name), data)
}

func Index(d models.LandingData) templ.Component { return page("index.html", d) }

func Login(d models.AuthData) templ.Component { return page("login.html", d) }

func Signup(d models.AuthData) templ.Component { return page("signup.html", d) }

func Dashboard(d models.DashboardData) templ.Component { return page("dashboard.html", d) }

func EditNote(d models.EditData) templ.Component { return page("edit_note.html", d) }

func Search(d models.SearchData) templ.Component { return page("search.html", d) }
