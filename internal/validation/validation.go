// Package validation implements the form gates that run before a request
// reaches the session service.
//
// Each form validator returns Errors: a map from field name to a message the
// UI shows next to that field. An empty map means the form may be submitted.
// The session service does not re-check any of this.
package validation

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Messages shown next to invalid fields.
const (
	MsgInvalidEmail    = "Please enter a valid email address"
	MsgInvalidPassword = "Please enter password as per rules"
	MsgInvalidPhone    = "Please enter a valid phone no."
)

// PasswordSymbols is the set a password must draw at least one symbol from.
const PasswordSymbols = "@$!%*#?&"

var (
	emailPattern    = regexp.MustCompile(`^([a-zA-Z0-9_\-\.]+)@([a-zA-Z0-9_\-]+)(\.[a-zA-Z]{2,5}){1,2}$`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*#?&]{8,}$`)
	phonePattern    = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// Errors maps a field name to its validation message.
type Errors map[string]string

// OK reports whether no field failed.
func (e Errors) OK() bool {
	return len(e) == 0
}

// SignupForm is what the landing page submits in sign-up mode.
type SignupForm struct {
	Email    string
	Password string
}

// LoginForm is what the landing page submits in login mode.
type LoginForm struct {
	Email    string
	Password string
}

// ProfileForm is what the profile drawer submits.
type ProfileForm struct {
	FullName string
	Email    string
	Username string
	Phone    string
}

// Signup checks the sign-up form: both fields required, a well-formed email
// and a password that follows the rules (see ValidPassword).
func Signup(f SignupForm) Errors {
	errs := Errors{}
	checkEmail(errs, f.Email)
	if required(errs, "password", f.Password) && !ValidPassword(f.Password) {
		errs["password"] = MsgInvalidPassword
	}
	return errs
}

// Login checks the login form: both fields required and a well-formed email.
// The password rules are a sign-up concern and are not applied here.
func Login(f LoginForm) Errors {
	errs := Errors{}
	checkEmail(errs, f.Email)
	required(errs, "password", f.Password)
	return errs
}

// Profile checks the profile form: every field required, a well-formed email
// and a ten-digit phone number starting with 6, 7, 8 or 9.
func Profile(f ProfileForm) Errors {
	errs := Errors{}
	required(errs, "fullName", f.FullName)
	checkEmail(errs, f.Email)
	required(errs, "username", f.Username)
	if required(errs, "phone", f.Phone) && !ValidPhone(f.Phone) {
		errs["phone"] = MsgInvalidPhone
	}
	return errs
}

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPassword reports whether s is at least 8 characters drawn from
// letters, digits and PasswordSymbols, with at least one lower-case letter,
// one upper-case letter, one digit and one symbol.
func ValidPassword(s string) bool {
	if !passwordCharset.MatchString(s) {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// ValidPhone reports whether s is exactly 10 digits with a leading 6-9.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// NormalizeEmail lower-cases an email the way the forms do on input.
func NormalizeEmail(s string) string {
	return lower(s)
}

// NormalizeUsername lower-cases a username the way the profile form does.
func NormalizeUsername(s string) string {
	return lower(s)
}

// A Caser keeps state, so each call gets its own.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// required flags field when value is empty and reports whether it was set.
func required(errs Errors, field, value string) bool {
	if len(value) == 0 {
		errs[field] = field + " is a required field"
		return false
	}
	return true
}

func checkEmail(errs Errors, email string) {
	if required(errs, "email", email) && !ValidEmail(email) {
		errs["email"] = MsgInvalidEmail
	}
}
