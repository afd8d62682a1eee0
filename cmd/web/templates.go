package main

import (
	"bytes"
	"fmt"
	"github.com/myrjola/sentinels/internal/contexthelpers"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/models"
	"github.com/myrjola/sentinels/ui"
	"html/template"
	"log/slog"
	"net/http"
)

// pageNames lists the directories inside ui/templates/pages.
var pageNames = []string{"home", "case", "history", "error"}

type BaseTemplateData struct {
	CurrentPath string
	CaseCount   int
	Disclaimer  string
}

func (app *application) newBaseTemplateData(r *http.Request) BaseTemplateData {
	ctx := r.Context()
	return BaseTemplateData{
		CurrentPath: contexthelpers.CurrentPath(ctx),
		CaseCount:   app.cases.Count(ctx),
		Disclaimer:  models.Disclaimer,
	}
}

// pageTemplate returns a template for the given page name.
//
// pageName corresponds to directory inside ui/templates/pages folder. It has to include a template named "page".
func pageTemplate(pageName string) (*template.Template, error) {
	patterns := []string{
		"templates/base.gohtml",
		fmt.Sprintf("templates/pages/%s/*.gohtml", pageName),
	}

	// We need to initialize the FuncMap before parsing the files. These will be overridden in the render function.
	t, err := template.New(pageName).Funcs(template.FuncMap{
		"nonce": func() string {
			panic("not implemented")
		},
		"csrf": func() string {
			panic("not implemented")
		},
	}).ParseFS(ui.Files, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "parse page template", slog.String("page", pageName))
	}
	return t, nil
}

func parsePageTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pageNames))
	for _, pageName := range pageNames {
		t, err := pageTemplate(pageName)
		if err != nil {
			return nil, err
		}
		templates[pageName] = t
	}
	return templates, nil
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	var (
		err error
		t   *template.Template
	)

	parsed, ok := app.pageTemplates[page]
	if !ok {
		app.serverError(w, r, errors.New("unknown page template", slog.String("template", page)))
		return
	}
	// Clone so that the per-request functions never leak between requests.
	if t, err = parsed.Clone(); err != nil {
		app.serverError(w, r, errors.Wrap(err, "clone template", slog.String("template", page)))
		return
	}

	buf := new(bytes.Buffer)
	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>", contexthelpers.CSRFToken(ctx))
	t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec, we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec, we trust the csrf since it's not provided by user.
		},
	})
	if err = t.ExecuteTemplate(buf, "base", data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template", slog.String("template", page)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}
