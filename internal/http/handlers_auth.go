package http

import (
	"errors"
	"fmt"
	"net/http"

	"churchledger/internal/auth"
	"churchledger/internal/log"
	"churchledger/internal/services"
)

type loginPage struct {
	Email string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", view{Title: "Login", Data: loginPage{}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w, r)
		return
	}

	email := sanitizeInput(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	logger := log.FromContext(r.Context()).WithComponent(log.ComponentAuth)

	u, err := s.Users.Authenticate(r.Context(), email, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		logger.InfoContext(r.Context(), "Login rejected", log.FieldOperation, log.OpLogin, log.FieldSuccess, false)
		s.render(w, r, http.StatusUnauthorized, "login.html", view{
			Title:   "Login",
			Flashes: []Flash{{Category: FlashDanger, Message: "Invalid credentials"}},
			Data:    loginPage{Email: email},
		})
		return
	}
	if err != nil {
		serverError(w, r, log.OpLogin, err)
		return
	}

	if _, err := s.Sessions.Issue(w, u); err != nil {
		serverError(w, r, log.OpLogin, err)
		return
	}
	logger.InfoContext(r.Context(), "Login succeeded",
		log.FieldOperation, log.OpLogin,
		log.FieldSuccess, true,
		log.FieldUserID, u.ID,
		log.FieldRole, u.Role.String())
	Redirect("/dashboard").Success(fmt.Sprintf("Welcome %s!", u.Name)).Write(w, r)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Sessions.Clear(w)
	if _, ok := auth.CurrentUser(r.Context()); !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	Redirect("/login").Success("Logged out successfully").Write(w, r)
}
