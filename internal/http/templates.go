package http

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"churchledger/internal/auth"
	"churchledger/internal/core"
	"churchledger/internal/log"
	appweb "churchledger/web"
)

var pages = []string{
	"login.html",
	"dashboard.html",
	"attendance.html",
	"giving.html",
	"add_expense.html",
	"approve_expenses.html",
	"reports.html",
	"users_list.html",
	"user_form.html",
	"members_list.html",
	"member_form.html",
}

var templateFuncs = template.FuncMap{
	"money": core.FormatMoney,
	"hasRole": func(u *core.User, roles ...string) bool {
		if u == nil {
			return false
		}
		for _, r := range roles {
			if string(u.Role) == r {
				return true
			}
		}
		return false
	},
}

// parseTemplates pairs the layout with each page so every page can define
// its own "content" block.
func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New(page).Funcs(templateFuncs).
			ParseFS(appweb.TemplatesFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}

// view is the data every page template receives.
type view struct {
	Title   string
	User    *core.User
	CSRF    string
	Flashes []Flash
	Error   string
	Data    any
}

// render executes page inside the layout. Pending flashes are consumed.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	t, ok := s.templates[page]
	if !ok {
		serverError(w, r, log.OpRender, fmt.Errorf("unknown template %q", page))
		return
	}
	if u, ok := auth.CurrentUser(r.Context()); ok {
		v.User = &u
		v.CSRF = auth.CSRFToken(r.Context())
	}
	v.Flashes = append(popFlashes(w, r), v.Flashes...)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		serverError(w, r, log.OpRender, fmt.Errorf("execute template %s: %w", page, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
