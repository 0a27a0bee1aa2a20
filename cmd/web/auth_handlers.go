package main

import (
	"errors"
	"net/http"

	"gearhaus.dev/gear-web/internal/auth"
	mw "gearhaus.dev/gear-web/internal/middleware"
)

type userView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"isAdmin"`
}

func buildUserView(u auth.User) userView {
	return userView{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		IsAdmin: u.IsAdmin(),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler signs the visitor in. The cart synchronizer reacts to the
// published login and reloads the cart in the background.
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := a.visitor(r)
	user, err := v.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrMissingCredentials) {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}
		writeError(w, http.StatusUnauthorized, "login failed")
		return
	}

	a.bindSession(r, user)
	writeJSON(w, http.StatusOK, buildUserView(user))
}

// RegisterHandler creates an account and signs the visitor in.
func (a *App) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := a.visitor(r)
	user, err := v.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrMissingCredentials) {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}
		writeError(w, http.StatusBadGateway, "registration failed")
		return
	}

	a.bindSession(r, user)
	writeJSON(w, http.StatusCreated, buildUserView(user))
}

// LogoutHandler signs the visitor out. Local cart state clears with no
// remote call.
func (a *App) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	v := a.visitor(r)
	v.auth.Logout()

	sess := mw.GetSession(r)
	sess.UserID = ""
	sess.MarkDirty()

	writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// SessionHandler reports the current visitor state.
func (a *App) SessionHandler(w http.ResponseWriter, r *http.Request) {
	v := a.visitor(r)
	resp := map[string]any{
		"loggedIn": v.auth.IsLoggedIn(),
	}
	if u := v.auth.Current(); u != nil {
		resp["user"] = buildUserView(*u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// bindSession ties the authenticated user to the session cookie, rotating the
// session ID on first authentication to prevent fixation.
func (a *App) bindSession(r *http.Request, user auth.User) {
	sess := mw.GetSession(r)
	wasAuthed := sess.UserID != ""
	if sess.UserID == user.ID {
		return
	}

	if !wasAuthed {
		// keep the visitor bundle and its storage reachable under the
		// rotated session ID
		a.mu.Lock()
		v := a.visitors[sess.ID]
		oldID := sess.ID
		sess.RegenerateID()
		if v != nil {
			a.visitors[sess.ID] = v
			delete(a.visitors, oldID)
		}
		a.sessions.Move(oldID, sess.ID)
		a.mu.Unlock()
	} else {
		sess.MarkDirty()
	}
	sess.UserID = user.ID
}
