// Package handler contains the HTTP handlers of the JSON API.
//
// The handlers play the part the landing and profile pages used to play:
// normalise the form input, run the form gates from internal/validation,
// call the session service, and tell the client what to render next.
// They hold no business rules of their own.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/binamite/internal/apperror"
	"github.com/sakif/binamite/internal/auth"
	"github.com/sakif/binamite/internal/model"
	"github.com/sakif/binamite/internal/service"
	"github.com/sakif/binamite/internal/session"
	"github.com/sakif/binamite/internal/validation"
)

// Pages the client navigates between.
const (
	PathLanding = "/"
	PathProfile = "/profile"
)

// StoreResolver returns the session store for a browser session ID.
// *session.Registry satisfies it.
type StoreResolver interface {
	Get(sessionID string) *session.Store
}

// SessionHandler serves signup, login, profile and logout.
type SessionHandler struct {
	stores   StoreResolver
	recorder service.Recorder
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(stores StoreResolver, recorder service.Recorder, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		stores:   stores,
		recorder: recorder,
		logger:   logger,
	}
}

// =========================================================================
// REQUEST / RESPONSE SHAPES
// =========================================================================

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// profileRequest lists the editable fields. Anything else in the body
// (a password, say) is ignored.
type profileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

// userView is a user as the client sees it: no password.
type userView struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
}

func newUserView(u model.User) userView {
	return userView{
		FullName: u.FullName,
		Email:    u.Email,
		Username: u.Username,
		Phone:    u.Phone,
	}
}

// sessionResponse is the read view of the store plus the page to show next.
type sessionResponse struct {
	CurrentUser *userView  `json:"currentUser"`
	UserList    []userView `json:"userList"`
	Next        string     `json:"next,omitempty"`
}

func newSessionResponse(st session.State, next string) sessionResponse {
	resp := sessionResponse{
		UserList: make([]userView, 0, len(st.UserList)),
		Next:     next,
	}
	for _, u := range st.UserList {
		resp.UserList = append(resp.UserList, newUserView(u))
	}
	if st.CurrentUser != nil {
		v := newUserView(*st.CurrentUser)
		resp.CurrentUser = &v
	}
	return resp
}

// =========================================================================
// HANDLERS
// =========================================================================

// HandleSignup registers a new user and signs them in.
//
// HTTP: POST /api/signup
// 201 → session view, next "/profile"
// 400 → field errors; 409 → "User already exist"
func (h *SessionHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Email = validation.NormalizeEmail(req.Email)

	if errs := validation.Signup(validation.SignupForm{Email: req.Email, Password: req.Password}); !errs.OK() {
		writeValidation(w, errs)
		return
	}

	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	err = svc.Signup(r.Context(), model.User{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newSessionResponse(svc.Snapshot(r.Context()), PathProfile))
}

// HandleLogin signs in an existing user.
//
// HTTP: POST /api/login
// 200 → session view, next "/profile"
// 400 → field errors; 404 → "No user exist"
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Email = validation.NormalizeEmail(req.Email)

	if errs := validation.Login(validation.LoginForm{Email: req.Email, Password: req.Password}); !errs.OK() {
		writeValidation(w, errs)
		return
	}

	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := svc.Login(r.Context(), model.Credentials{Email: req.Email, Password: req.Password}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(svc.Snapshot(r.Context()), PathProfile))
}

// HandleGetProfile returns the signed-in user.
//
// HTTP: GET /api/profile
// 401 with next "/" when nobody is signed in.
func (h *SessionHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	st := svc.Snapshot(r.Context())
	if !st.SignedIn() {
		writeError(w, errNotSignedIn)
		return
	}

	writeJSON(w, http.StatusOK, newUserView(*st.CurrentUser))
}

// HandleUpdateProfile edits the signed-in user's profile.
//
// HTTP: PUT /api/profile
// 200 → session view
// 400 → field errors; 401 when nobody is signed in
//
// The email in the form picks the record to update. Changing it to an
// address that isn't registered leaves the user list alone and makes the
// submitted profile the current user on its own.
func (h *SessionHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if !svc.Snapshot(r.Context()).SignedIn() {
		writeError(w, errNotSignedIn)
		return
	}

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Email = validation.NormalizeEmail(req.Email)
	req.Username = validation.NormalizeUsername(req.Username)

	errs := validation.Profile(validation.ProfileForm{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Phone:    req.Phone,
	})
	if !errs.OK() {
		writeValidation(w, errs)
		return
	}

	err = svc.Update(r.Context(), model.ProfileUpdate{
		Email:    req.Email,
		FullName: &req.FullName,
		Username: &req.Username,
		Phone:    &req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(svc.Snapshot(r.Context()), ""))
}

// HandleLogout signs the current user out. Always succeeds.
//
// HTTP: POST /api/logout
// 200 → session view, next "/"
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := svc.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionResponse(svc.Snapshot(r.Context()), PathLanding))
}

// HandleSession returns the whole store: current user and user list.
// next is "/profile" when someone is signed in and "/" otherwise, so a
// signed-in visitor on the landing page is sent on to their profile.
//
// HTTP: GET /api/session
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service(r)
	if err != nil {
		writeError(w, err)
		return
	}

	st := svc.Snapshot(r.Context())
	next := PathLanding
	if st.SignedIn() {
		next = PathProfile
	}
	writeJSON(w, http.StatusOK, newSessionResponse(st, next))
}

var errNotSignedIn = apperror.Unauthorized("Please sign in to continue")

// service returns the action layer bound to this browser's store.
func (h *SessionHandler) service(r *http.Request) (*service.SessionService, error) {
	id, ok := auth.SessionIDFromContext(r.Context())
	if !ok {
		h.logger.Error("request has no browser session; is auth.BrowserSession mounted?",
			slog.String("path", r.URL.Path),
		)
		return nil, apperror.Internal(errors.New("missing browser session"))
	}

	store := h.stores.Get(id)
	return service.NewSessionService(store, h.recorder, h.logger.With(slog.String("session", id))), nil
}
