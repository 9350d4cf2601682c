// Package session holds the in-memory session store: the ordered list of
// registered users plus the user who is currently signed in.
//
// STATE + REDUCERS:
// State is a plain value. The four Apply* functions are reducers: they take
// the old state and a payload and return a NEW state. They never modify the
// state they are given, and they never fail. Checking preconditions
// (unique email on signup, existing email on login) is the caller's job,
// see service.SessionService.
//
// Store (store.go) owns one State and swaps it atomically when a reducer
// produces a new one.
package session

import (
	"slices"

	"github.com/sakif/binamite/internal/model"
)

// State is a snapshot of the session store.
//
// Invariants:
//   - UserList is in signup order and never holds two users with the same email.
//   - CurrentUser is nil when nobody is signed in. Otherwise it is the user
//     produced by the most recent signup, login or update.
type State struct {
	UserList    []model.User `json:"userList"`
	CurrentUser *model.User  `json:"currentUser"`
}

// Clone returns a copy of s that shares no memory with it.
func (s State) Clone() State {
	out := State{UserList: slices.Clone(s.UserList)}
	if out.UserList == nil {
		out.UserList = []model.User{}
	}
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		out.CurrentUser = &u
	}
	return out
}

// Find returns the user registered under email.
func (s State) Find(email string) (model.User, bool) {
	i := slices.IndexFunc(s.UserList, func(u model.User) bool {
		return u.Email == email
	})
	if i < 0 {
		return model.User{}, false
	}
	return s.UserList[i], true
}

// SignedIn reports whether a current user is present.
func (s State) SignedIn() bool {
	return s.CurrentUser != nil
}

// ApplySignup appends u to the user list and makes it the current user.
// The caller must have checked that no user with u.Email exists.
func ApplySignup(s State, u model.User) State {
	next := s.Clone()
	next.UserList = append(next.UserList, u)
	next.CurrentUser = &u
	return next
}

// ApplyLogin makes u the current user. u must already be in the user list.
func ApplyLogin(s State, u model.User) State {
	next := s.Clone()
	next.CurrentUser = &u
	return next
}

// ApplyUpdate replaces the user list wholesale with updated and makes u the
// current user.
func ApplyUpdate(s State, updated []model.User, u model.User) State {
	next := s.Clone()
	next.UserList = slices.Clone(updated)
	if next.UserList == nil {
		next.UserList = []model.User{}
	}
	next.CurrentUser = &u
	return next
}

// ApplyLogout clears the current user. The user list is untouched.
func ApplyLogout(s State) State {
	next := s.Clone()
	next.CurrentUser = nil
	return next
}
