// Package model defines the data structures used throughout the application.
package model

// User represents a registered account.
//
// WHY NO ID FIELD?
// Email is the sole identity key. It is lower-cased before it reaches the
// session store, and the store never holds two users with the same email.
// There is nothing else to key on, so we don't invent a surrogate ID.
//
// Password is only meaningful at signup time. It is kept on the record
// (the store is a demo-grade in-memory holder, not a credential vault) but
// is never rendered back to clients (see handler.userView).
type User struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	Password string `json:"password,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the typed payload for editing a user's profile.
//
// TYPED PATCH INSTEAD OF A FREE-FORM MERGE:
// Email selects the record to update. Every other field is a pointer:
//   - nil     → keep the stored value
//   - non-nil → overwrite the stored value
//
// Only the fields listed here are updatable. Password is deliberately absent,
// so a profile edit can never change (or inject) credentials.
type ProfileUpdate struct {
	Email    string  `json:"email"`
	FullName *string `json:"fullName,omitempty"`
	Username *string `json:"username,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// Merge applies upd on top of old and returns the result. old is not modified.
// The email of the result is always upd.Email.
func Merge(old User, upd ProfileUpdate) User {
	merged := old
	merged.Email = upd.Email
	if upd.FullName != nil {
		merged.FullName = *upd.FullName
	}
	if upd.Username != nil {
		merged.Username = *upd.Username
	}
	if upd.Phone != nil {
		merged.Phone = *upd.Phone
	}
	return merged
}

// AsUser returns the update as a standalone record, with unset fields empty.
// Used when an update targets an email that is not in the user list.
func (upd ProfileUpdate) AsUser() User {
	return Merge(User{}, upd)
}
