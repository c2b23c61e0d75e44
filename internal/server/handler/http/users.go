package http

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
	"github.com/atinyakov/medstock/internal/service"
)

// UserList shows a page of the account list. Admin only.
func (h *Handler) UserList(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.Users(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	p := h.pager(r, len(users))
	h.render(w, r, "users", "Users", tableData[models.User]{
		Rows:  inventory.Paginate(p, users),
		Pager: newPageView("/users", p, len(users)),
	})
}

// User shows the edit form of one account. Admin only.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.Users(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	id := models.ID(chi.URLParam(r, "id"))
	i := slices.IndexFunc(users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		h.fail(w, r, fmt.Errorf("user %s: %w", id, service.ErrNotFound), "/users")
		return
	}
	h.render(w, r, "user", users[i].Username, users[i])
}

// UpdateUser handles the account edit form. Admin only.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := models.ID(chi.URLParam(r, "id"))
	back := "/users/" + id.String()
	users, err := h.Users.Users(r.Context())
	if err != nil {
		h.fail(w, r, err, back)
		return
	}
	u := userForm(r)
	u.ID = id
	if _, err := h.Users.UpdateUser(r.Context(), users, u); err != nil {
		h.fail(w, r, err, back)
		return
	}
	h.done(w, r, "User updated", "/users")
}

// DeleteUser removes an account. Admin only.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.Users(r.Context())
	if err != nil {
		h.fail(w, r, err, "/users")
		return
	}
	p := h.pager(r, len(users))
	left, err := h.Users.DeleteUser(r.Context(), users, models.ID(chi.URLParam(r, "id")))
	if err != nil {
		h.fail(w, r, err, pageURL("/users", p.Page))
		return
	}
	p.AfterDelete(len(left))
	h.done(w, r, "User deleted", pageURL("/users", p.Page))
}

// NewUserForm shows the member registration form. Admin only.
func (h *Handler) NewUserForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "user_new", "Register member", inventory.SpecialChars)
}

// RegisterUser handles the member registration form. Admin only.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Auth.RegisterMember(r.Context(), userForm(r))
	if err != nil {
		h.fail(w, r, err, "/users/new")
		return
	}
	h.done(w, r, orDefault(msg, "Member registered"), "/users")
}

// Settings shows the profile form of the signed-in user.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	me, err := h.Users.Profile(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.render(w, r, "settings", "Settings", me)
}

// UpdateSettings sends the changed profile fields.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	current, err := h.Users.Profile(r.Context())
	if err != nil {
		h.fail(w, r, err, "/settings")
		return
	}
	if _, err := h.Users.UpdateProfile(r.Context(), current, userForm(r)); err != nil {
		h.fail(w, r, err, "/settings")
		return
	}
	h.done(w, r, "Profile updated", "/settings")
}

// Types shows the medicine type catalog.
func (h *Handler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.Users.Types(r.Context())
	if err != nil {
		h.loadFailed(w, r, err)
		return
	}
	h.render(w, r, "types", "Medicine types", types)
}

// AddType handles the add-type form.
func (h *Handler) AddType(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PostFormValue("type"))
	if err := h.Users.AddType(r.Context(), name); err != nil {
		h.fail(w, r, err, "/types")
		return
	}
	h.done(w, r, "Type added", "/types")
}

// DeleteType removes a medicine type.
func (h *Handler) DeleteType(w http.ResponseWriter, r *http.Request) {
	types, err := h.Users.Types(r.Context())
	if err != nil {
		h.fail(w, r, err, "/types")
		return
	}
	if _, err := h.Users.DeleteType(r.Context(), types, models.ID(chi.URLParam(r, "id"))); err != nil {
		h.fail(w, r, err, "/types")
		return
	}
	h.done(w, r, "Type deleted", "/types")
}

func userForm(r *http.Request) models.User {
	return models.User{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Role:     models.Role(r.PostFormValue("role")),
		Password: r.PostFormValue("password"),
	}
}
