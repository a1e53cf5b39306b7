package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"churchledger/internal/core"
	"churchledger/internal/log"
	"churchledger/internal/services"
)

type usersPage struct {
	Users []core.User
}

type userFormPage struct {
	ID     int64
	Values url.Values
	Roles  []core.Role
}

type membersPage struct {
	Members []core.Member
}

type memberFormPage struct {
	Values url.Values
}

func userValues(u core.User) url.Values {
	active := "1"
	if !u.Active {
		active = "0"
	}
	return url.Values{
		"name":   {u.Name},
		"email":  {u.Email},
		"role":   {u.Role.String()},
		"active": {active},
	}
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Users.List(r.Context())
	if err != nil {
		serverError(w, r, log.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "users_list.html", view{Title: "Users", Data: usersPage{Users: users}})
}

func (s *Server) handleNewUserForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "user_form.html", view{
		Title: "New user",
		Data:  userFormPage{Values: url.Values{"role": {core.RoleUsher.String()}, "active": {"1"}}, Roles: core.AllRoles},
	})
}

// userFormError re-renders the user form for a rejected submission.
// It reports false when err is not a user-facing failure.
func (s *Server) userFormError(w http.ResponseWriter, r *http.Request, id int64, err error) bool {
	msg, ok := validationMessage(err)
	if !ok && errors.Is(err, services.ErrEmailExists) {
		msg, ok = fmt.Sprintf("User %s already exists.", core.NormalizeEmail(r.PostForm.Get("email"))), true
	}
	if !ok {
		return false
	}
	s.render(w, r, http.StatusUnprocessableEntity, "user_form.html", view{
		Title: "User",
		Error: msg,
		Data:  userFormPage{ID: id, Values: FormValues(r.PostForm, userFields...), Roles: core.AllRoles},
	})
	return true
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	_, err := s.Users.Create(r.Context(), userInput(r.PostForm))
	if s.userFormError(w, r, 0, err) {
		return
	}
	if err != nil {
		serverError(w, r, log.OpCreate, err)
		return
	}
	Redirect("/users").Success("User added.").Write(w, r)
}

func (s *Server) handleEditUserForm(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		NotFoundError("User not found.").Write(w, r)
		return
	}
	u, err := s.Users.Get(r.Context(), id)
	if errors.Is(err, services.ErrUserNotFound) {
		Redirect("/users").Danger("User not found.").Write(w, r)
		return
	}
	if err != nil {
		serverError(w, r, log.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, "user_form.html", view{
		Title: "Edit user",
		Data:  userFormPage{ID: u.ID, Values: userValues(u), Roles: core.AllRoles},
	})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r, "id")
	if err != nil {
		NotFoundError("User not found.").Write(w, r)
		return
	}
	_, err = s.Users.Update(r.Context(), id, userInput(r.PostForm))
	if errors.Is(err, services.ErrUserNotFound) {
		Redirect("/users").Danger("User not found.").Write(w, r)
		return
	}
	if s.userFormError(w, r, id, err) {
		return
	}
	if err != nil {
		serverError(w, r, log.OpUpdate, err)
		return
	}
	Redirect("/users").Success("User updated.").Write(w, r)
}

// handleDeleteUser is open to pastors, who cannot see the admin user list,
// so they land on the dashboard instead.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	back := "/dashboard"
	if actor(r).Role == core.RoleAdmin {
		back = "/users"
	}
	resp := Redirect(back)

	id, err := ParseID(r, "id")
	if err != nil {
		resp.Danger("User not found.").Write(w, r)
		return
	}
	err = s.Users.Delete(r.Context(), id)
	if errors.Is(err, services.ErrUserNotFound) {
		resp.Danger("User not found.").Write(w, r)
		return
	}
	if err != nil {
		serverError(w, r, log.OpDelete, err)
		return
	}
	resp.Success("User deleted.").Write(w, r)
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.Members.List(r.Context())
	if err != nil {
		serverError(w, r, log.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "members_list.html", view{Title: "Members", Data: membersPage{Members: members}})
}

func (s *Server) handleNewMemberForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "member_form.html", view{
		Title: "New member",
		Data:  memberFormPage{Values: url.Values{"joined_date": {s.Now().Format(core.DateLayout)}}},
	})
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	_, err := s.Members.Add(r.Context(), memberInput(r.PostForm))
	if msg, ok := validationMessage(err); ok {
		if errors.Is(err, core.ErrEmptyName) {
			msg = "Name is required"
		}
		s.render(w, r, http.StatusUnprocessableEntity, "member_form.html", view{
			Title: "New member",
			Error: msg,
			Data:  memberFormPage{Values: FormValues(r.PostForm, memberFields...)},
		})
		return
	}
	if err != nil {
		serverError(w, r, log.OpCreate, err)
		return
	}
	Redirect("/members").Success("Member added").Write(w, r)
}

func (s *Server) handleToggleMember(w http.ResponseWriter, r *http.Request) {
	resp := Redirect("/members")
	id, err := ParseID(r, "id")
	if err != nil {
		resp.Danger("Member not found.").Write(w, r)
		return
	}
	err = s.Members.Toggle(r.Context(), id)
	if errors.Is(err, services.ErrMemberNotFound) {
		resp.Danger("Member not found.").Write(w, r)
		return
	}
	if err != nil {
		serverError(w, r, log.OpUpdate, err)
		return
	}
	resp.Success("Member status updated").Write(w, r)
}
