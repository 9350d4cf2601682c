// Package service contains the business logic layer of the application.
//
// THE LAYERS:
//
//	Handler (HTTP)          → parses requests, runs form validation, writes responses
//	SessionService (rules)  → uniqueness on signup, existence on login, merge on update
//	session.Store (state)   → holds the user list and the current user
//
// SessionService never talks HTTP and never holds state of its own. It reads
// the store's snapshot, decides, and dispatches one reducer, all inside a
// single Store.Dispatch call so the decision and the mutation can't be
// separated by another request.
//
// RESULTS:
// Every action returns an error with one of three meanings:
//   - nil                           → success, the store was updated
//   - wraps apperror.ErrConflict    → business-rule conflict, Error() is user-facing
//     or apperror.ErrNotFound
//   - wraps apperror.ErrInternal    → unexpected failure; logged here and
//     returned, the store is unchanged
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/binamite/internal/apperror"
	"github.com/sakif/binamite/internal/model"
	"github.com/sakif/binamite/internal/session"
)

// User-facing messages for business-rule conflicts.
const (
	MsgUserExists = "User already exist"
	MsgNoUser     = "No user exist"
)

// Action names, also used as metric labels.
const (
	ActionSignup = "signup"
	ActionLogin  = "login"
	ActionUpdate = "update"
	ActionLogout = "logout"
)

// Outcome labels reported to the Recorder.
const (
	OutcomeOK       = "ok"
	OutcomeConflict = "conflict"
	OutcomeNotFound = "not_found"
	OutcomeInternal = "internal"
)

// Recorder receives one call per finished action. metrics.ActionMetrics
// implements it; NopRecorder is there for callers that don't care.
type Recorder interface {
	RecordAction(action, outcome string)
}

// NopRecorder discards every observation.
type NopRecorder struct{}

func (NopRecorder) RecordAction(string, string) {}

// SessionService is the action layer over one session.Store.
type SessionService struct {
	store    *session.Store
	recorder Recorder
	logger   *slog.Logger
}

// NewSessionService creates a SessionService bound to store.
// A nil recorder is replaced by NopRecorder.
func NewSessionService(store *session.Store, recorder Recorder, logger *slog.Logger) *SessionService {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &SessionService{
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

// Signup registers u and signs it in.
//
// u.Email is expected to be lower-cased already (the form layer does it),
// which makes the uniqueness check case-insensitive. A user who is still
// signed in is replaced; the log line names them.
func (s *SessionService) Signup(ctx context.Context, u model.User) error {
	if u.Email == "" {
		return s.finish(ctx, ActionSignup, apperror.Internal(errors.New("signup payload has no email")))
	}

	var replaced string
	err := s.dispatch(func(st session.State) (session.State, error) {
		if _, exists := st.Find(u.Email); exists {
			return st, apperror.New(apperror.ErrConflict, MsgUserExists)
		}
		replaced = signedInEmail(st)
		return session.ApplySignup(st, u), nil
	})
	return s.finish(ctx, ActionSignup, err, emailAttrs(u.Email, replaced)...)
}

// Login signs in the user registered under creds.Email.
//
// The stored record becomes the current user, not the submitted payload.
// The submitted password is NOT compared with the stored one: login
// succeeds on email existence alone.
func (s *SessionService) Login(ctx context.Context, creds model.Credentials) error {
	if creds.Email == "" {
		return s.finish(ctx, ActionLogin, apperror.Internal(errors.New("login payload has no email")))
	}

	var replaced string
	err := s.dispatch(func(st session.State) (session.State, error) {
		stored, ok := st.Find(creds.Email)
		if !ok {
			return st, apperror.New(apperror.ErrNotFound, MsgNoUser)
		}
		replaced = signedInEmail(st)
		return session.ApplyLogin(st, stored), nil
	})
	return s.finish(ctx, ActionLogin, err, emailAttrs(creds.Email, replaced)...)
}

// Update merges upd into the user registered under upd.Email and makes the
// result the current user.
//
// If no user has upd.Email, the user list is left exactly as it was and the
// current user becomes upd on its own (a record with no entry in the list).
func (s *SessionService) Update(ctx context.Context, upd model.ProfileUpdate) error {
	if upd.Email == "" {
		return s.finish(ctx, ActionUpdate, apperror.Internal(errors.New("update payload has no email")))
	}

	err := s.dispatch(func(st session.State) (session.State, error) {
		current := upd.AsUser()
		updated := make([]model.User, len(st.UserList))
		for i, u := range st.UserList {
			if u.Email == upd.Email {
				u = model.Merge(u, upd)
				current = u
			}
			updated[i] = u
		}
		return session.ApplyUpdate(st, updated, current), nil
	})
	return s.finish(ctx, ActionUpdate, err, slog.String("email", upd.Email))
}

// Logout clears the current user. Calling it with nobody signed in is a no-op.
func (s *SessionService) Logout(ctx context.Context) error {
	err := s.dispatch(func(st session.State) (session.State, error) {
		return session.ApplyLogout(st), nil
	})
	return s.finish(ctx, ActionLogout, err)
}

// Snapshot returns the current state of the store.
func (s *SessionService) Snapshot(ctx context.Context) session.State {
	return s.store.Snapshot()
}

// dispatch runs fn through the store, turning a panic inside fn into an
// internal error. The store only installs a new state when fn returns
// normally, so a panic never leaves a half-applied change behind.
func (s *SessionService) dispatch(fn func(session.State) (session.State, error)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperror.Internal(fmt.Errorf("panic in reducer: %v", r))
		}
	}()
	return s.store.Dispatch(fn)
}

// finish logs and records the outcome of an action and returns err, wrapped
// as an internal error if it isn't one of ours already.
func (s *SessionService) finish(ctx context.Context, action string, err error, attrs ...slog.Attr) error {
	outcome := outcomeOf(err)
	s.recorder.RecordAction(action, outcome)

	attrs = append(attrs, slog.String("action", action), slog.String("outcome", outcome))

	switch outcome {
	case OutcomeOK:
		s.logger.LogAttrs(ctx, slog.LevelInfo, "session action applied", attrs...)
		return nil
	case OutcomeInternal:
		attrs = append(attrs, slog.String("error", errorChain(err)))
		s.logger.LogAttrs(ctx, slog.LevelError, "session action failed", attrs...)
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			err = apperror.Internal(err)
		}
		return fmt.Errorf("service/session: %s: %w", action, err)
	default:
		attrs = append(attrs, slog.String("reason", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelInfo, "session action rejected", attrs...)
		return err
	}
}

// signedInEmail returns the email of the current user, or "" if nobody is
// signed in.
func signedInEmail(st session.State) string {
	if st.CurrentUser == nil {
		return ""
	}
	return st.CurrentUser.Email
}

// emailAttrs logs the acting email and, when signup or login took over from
// someone who was still signed in, whose session was replaced.
func emailAttrs(email, replaced string) []slog.Attr {
	attrs := []slog.Attr{slog.String("email", email)}
	if replaced != "" && replaced != email {
		attrs = append(attrs, slog.String("replaced", replaced))
	}
	return attrs
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, apperror.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, apperror.ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeInternal
	}
}

// errorChain renders the full cause of an internal error for the log.
// AppError.Error() only returns the user-facing message.
func errorChain(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Err != nil {
		return appErr.Err.Error()
	}
	return err.Error()
}
