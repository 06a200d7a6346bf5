// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package templates renders the server-side HTML pages.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/stacklok/leaderboard/pkg/forms"
	"github.com/stacklok/leaderboard/pkg/identity"
)

//go:embed html/*.html
var templateFS embed.FS

// Page names accepted by Renderer.Render.
const (
	PageHome           = "home.html"
	PageAddLeaderboard = "addleaderboard.html"
)

var pages = []string{PageHome, PageAddLeaderboard}

// HomeData is rendered by PageHome.
type HomeData struct {
	// User is the signed-in user's token, nil when anonymous.
	User *identity.Token
}

// LeaderboardData is rendered by PageAddLeaderboard.
type LeaderboardData struct {
	Form       forms.LeaderboardForm
	Validation forms.Result
	// Added is set after an entry was stored.
	Added bool
}

// Renderer executes the embedded page templates. It is safe for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer() (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(FuncMap()).ParseFS(templateFS, "html/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		base, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout: %w", err)
		}
		tmpl, err := base.ParseFS(templateFS, "html/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render writes the named page with a 200 status. Nothing is written if execution fails.
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
