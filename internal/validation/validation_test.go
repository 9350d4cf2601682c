package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@x.com", true},
		{"first.last@example.org", true},
		{"under_score-dash@my-host.co.uk", true},
		{"a@x.media", true},
		{"a@x.c", false},              // tld too short
		{"a@x.abcdef", false},         // tld too long
		{"a@x.co.uk.eu", false},       // three tld segments
		{"a@sub.domain.io.uk", false}, // ".domain" is too long to be a tld
		{"a@x", false},
		{"@x.com", false},
		{"a b@x.com", false},
		{"a+tag@x.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidEmail(tt.email))
		})
	}
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"all classes present", "Abcd123!", true},
		{"longer with several symbols", "Zz9@Zz9#Zz9&", true},
		{"too short", "Ab1!xyz", false},
		{"no upper", "abcd123!", false},
		{"no lower", "ABCD123!", false},
		{"no digit", "Abcdefg!", false},
		{"no symbol", "Abcd1234", false},
		{"symbol outside the set", "Abcd123^", false},
		{"space not allowed", "Abcd 123!", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPassword(tt.password))
		})
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"9876543210", true},
		{"6000000000", true},
		{"5876543210", false},
		{"987654321", false},
		{"98765432100", false},
		{"98765-43210", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPhone(tt.phone))
		})
	}
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name string
		form SignupForm
		want Errors
	}{
		{
			name: "valid",
			form: SignupForm{Email: "a@x.com", Password: "Abcd123!"},
			want: Errors{},
		},
		{
			name: "both empty",
			form: SignupForm{},
			want: Errors{
				"email":    "email is a required field",
				"password": "password is a required field",
			},
		},
		{
			name: "bad email and weak password",
			form: SignupForm{Email: "not-an-email", Password: "password"},
			want: Errors{
				"email":    MsgInvalidEmail,
				"password": MsgInvalidPassword,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Signup(tt.form)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want) == 0, got.OK())
		})
	}
}

func TestLogin_DoesNotApplyPasswordRules(t *testing.T) {
	errs := Login(LoginForm{Email: "a@x.com", Password: "weak"})
	assert.True(t, errs.OK(), "got %v", errs)

	errs = Login(LoginForm{Email: "A@", Password: ""})
	assert.Equal(t, Errors{
		"email":    MsgInvalidEmail,
		"password": "password is a required field",
	}, errs)
}

func TestProfile(t *testing.T) {
	valid := ProfileForm{FullName: "Alice", Email: "alice@x.com", Username: "alice", Phone: "9876543210"}
	assert.True(t, Profile(valid).OK())

	errs := Profile(ProfileForm{})
	assert.Equal(t, Errors{
		"fullName": "fullName is a required field",
		"email":    "email is a required field",
		"username": "username is a required field",
		"phone":    "phone is a required field",
	}, errs)

	bad := valid
	bad.Phone = "1234567890"
	assert.Equal(t, Errors{"phone": MsgInvalidPhone}, Profile(bad))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "alice@x.com", NormalizeEmail("Alice@X.com"))
	assert.Equal(t, "alice", NormalizeUsername("ALICE"))
}
