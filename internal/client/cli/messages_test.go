package cli

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/services"
)

func opErr(status int, msg string) error {
	return &services.OpError{
		Kind:    services.ErrAuthenticationFailed,
		Message: msg,
		Err:     &client.Error{StatusCode: status, Message: msg},
	}
}

func TestLoginErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{opErr(http.StatusForbidden, "Email not verified"), msgVerifyEmail},
		{opErr(http.StatusUnauthorized, "Invalid credentials"), msgInvalidCredentials},
		{opErr(http.StatusUnprocessableEntity, "The email field is required."), msgValidation},
		{opErr(http.StatusInternalServerError, "boom"), msgUnknown},
		{fmt.Errorf("login: %w", client.ErrUnavailable), msgUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, loginErrorMessage(tt.err), tt.err.Error())
	}
}

func TestRegisterErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", opErr(http.StatusUnprocessableEntity, "x"), msgValidation},
		{"email exists", opErr(http.StatusBadRequest, "Email already exists in our records"), msgEmailExists},
		{"weak password", opErr(http.StatusBadRequest, "Password does not meet criteria"), msgWeakPassword},
		{"other bad request", opErr(http.StatusBadRequest, "Name is reserved"), "Name is reserved"},
		{"empty bad request", opErr(http.StatusBadRequest, ""), msgUnknown},
		{"server error", opErr(http.StatusServiceUnavailable, "down"), msgUnknown},
		{"no api error", errors.New("plain"), msgUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, registerErrorMessage(tt.err))
		})
	}
}

func TestValidationMessage(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())

	valid := models.RegisterRequest{Name: "A", Email: "a@b.co", Password: "secret", PasswordConfirmation: "secret"}
	require.NoError(t, v.Struct(valid))

	tests := []struct {
		name   string
		mutate func(r *models.RegisterRequest)
		want   string
	}{
		{"missing name", func(r *models.RegisterRequest) { r.Name = "" }, "Name is required"},
		{"bad email", func(r *models.RegisterRequest) { r.Email = "nope" }, "Email must be a valid email address"},
		{"short password", func(r *models.RegisterRequest) { r.Password = "abc"; r.PasswordConfirmation = "abc" }, "Password must be at least 6 characters"},
		{"mismatch", func(r *models.RegisterRequest) { r.PasswordConfirmation = "secreT" }, "Passwords do not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := v.Struct(r)
			require.Error(t, err)
			assert.Equal(t, tt.want, validationMessage(err))
		})
	}

	assert.Equal(t, "plain", validationMessage(errors.New("plain")))
}
