package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerInput struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type messageInput struct {
	Content string `json:"content" validate:"message_content"`
}

type roleInput struct {
	Role string `json:"role" validate:"required,role"`
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	return vErr.Errors
}

func TestValidate_Register(t *testing.T) {
	t.Parallel()
	v := New()

	assert.NoError(t, v.Validate(&registerInput{Username: "alice_01", Email: "alice@x.com", Password: "Str0ng!Pw"}))

	errs := fieldErrors(t, v.Validate(&registerInput{Username: "al", Email: "nope", Password: "short"}))
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestValidate_Username(t *testing.T) {
	t.Parallel()
	v := New()

	tests := []struct {
		username string
		valid    bool
	}{
		{"abc", true},
		{"a_b_c_123", true},
		{strings.Repeat("x", 20), true},
		{"ab", false},
		{strings.Repeat("x", 21), false},
		{"has space", false},
		{"dash-name", false},
		{"ünicode", false},
	}

	for _, tt := range tests {
		err := v.Validate(&registerInput{Username: tt.username, Email: "a@b.co", Password: "12345678"})
		if tt.valid {
			assert.NoError(t, err, tt.username)
		} else {
			assert.Contains(t, fieldErrors(t, err), "username", tt.username)
		}
	}
}

func TestValidate_MessageContent(t *testing.T) {
	t.Parallel()
	v := New()

	tests := []struct {
		name    string
		content string
		valid   bool
	}{
		{"empty", "", false},
		{"whitespace only", "   \n\t", false},
		{"single char", "x", true},
		{"max length", strings.Repeat("a", 2000), true},
		{"too long", strings.Repeat("a", 2001), false},
		{"max length multibyte", strings.Repeat("ж", 2000), true},
		{"padded past max", " " + strings.Repeat("a", 2000) + " ", false},
		{"padded within max", "  " + strings.Repeat("a", 1996) + "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&messageInput{Content: tt.content})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Contains(t, fieldErrors(t, err), "content")
			}
		})
	}
}

func TestValidate_Role(t *testing.T) {
	t.Parallel()
	v := New()

	assert.NoError(t, v.Validate(&roleInput{Role: "Admin"}))
	assert.Contains(t, fieldErrors(t, v.Validate(&roleInput{Role: "admin"})), "role")
}

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Errors: map[string]string{"b": "two", "a": "one"}}
	assert.Equal(t, "Validation failed: field 'a': one; field 'b': two", err.Error())
}
