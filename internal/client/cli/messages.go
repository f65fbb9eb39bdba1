package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/notehub/internal/client/client"
)

const (
	msgVerifyEmail        = "Please verify your email first."
	msgInvalidCredentials = "Invalid email or password."
	msgValidation         = "Validation error."
	msgUnknown            = "An unknown error occurred."
	msgEmailExists        = "Email already exists"
	msgWeakPassword       = "Password does not meet criteria"
)

func loginErrorMessage(err error) string {
	switch client.StatusCode(err) {
	case http.StatusForbidden:
		return msgVerifyEmail
	case http.StatusUnauthorized:
		return msgInvalidCredentials
	case http.StatusUnprocessableEntity:
		return msgValidation
	default:
		return msgUnknown
	}
}

func registerErrorMessage(err error) string {
	apiErr, ok := client.AsError(err)
	if !ok {
		return msgUnknown
	}
	switch apiErr.StatusCode {
	case http.StatusUnprocessableEntity:
		return msgValidation
	case http.StatusBadRequest:
		switch {
		case strings.Contains(apiErr.Message, msgEmailExists):
			return msgEmailExists
		case strings.Contains(apiErr.Message, msgWeakPassword):
			return msgWeakPassword
		case apiErr.Message != "":
			return apiErr.Message
		}
	}
	return msgUnknown
}

var fieldLabels = map[string]string{
	"PasswordConfirmation": "Password confirmation",
	"Avatar":               "Avatar URL",
}

// validationMessage turns the first validator failure into a sentence.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return label + " must be a valid email address"
	case "url":
		return label + " must be a valid URL"
	case "eqfield":
		return "Passwords do not match"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
