package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/services"
)

// getSimpleText, getOptionalText, getMultiline and getPassword are
// indirections used to facilitate testing. They point to interactive input
// helpers and can be swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getOptionalText = GetOptionalText
	getMultiline    = GetMultiline
	getPassword     = GetPassword
)

// Login prompts for credentials and signs in. Server-side failures are
// reported with a status-specific message.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}

	req := models.LoginRequest{Email: email, Password: password}
	if err := a.validate.Struct(req); err != nil {
		fmt.Fprintln(a.out, validationMessage(err))
		return err
	}

	if _, err := a.session.Login(ctx, req.Email, req.Password); err != nil {
		if !errors.Is(err, services.ErrSuperseded) {
			fmt.Fprintln(a.out, loginErrorMessage(err))
		}
		return err
	}
	return nil
}

// Register prompts for the new account's fields, checks them locally and
// creates the account.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	confirmation, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}

	req := models.RegisterRequest{
		Name:                 name,
		Email:                email,
		Password:             password,
		PasswordConfirmation: confirmation,
	}
	if err := a.validate.Struct(req); err != nil {
		fmt.Fprintln(a.out, validationMessage(err))
		return err
	}

	if err := a.session.Register(ctx, req); err != nil {
		if !errors.Is(err, services.ErrSuperseded) {
			fmt.Fprintln(a.out, registerErrorMessage(err))
		}
		return err
	}

	if !a.session.Snapshot().LoggedIn {
		fmt.Fprintln(a.out, "Account created. Please verify your email, then log in.")
	}
	return nil
}

// Logout ends the session. It never fails.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	return nil
}

// Profile prompts for the fields to change and sends only those.
func (a *App) Profile(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "You are not logged in.")
		return services.ErrNotLoggedIn
	}

	var (
		update models.ProfileUpdate
		err    error
	)
	prompts := []struct {
		label string
		dst   **string
	}{
		{"Name", &update.Name},
		{"Email", &update.Email},
		{"Avatar URL", &update.Avatar},
		{"University", &update.University},
		{"Department", &update.Department},
	}
	for _, p := range prompts {
		if *p.dst, err = getOptionalText(a.reader, p.label, a.out); err != nil {
			return err
		}
	}
	bio, err := getMultiline(a.reader, "Bio (leave empty to keep)", a.out)
	if err != nil {
		return err
	}
	if bio != "" {
		update.Bio = &bio
	}

	if update.Empty() {
		fmt.Fprintln(a.out, "Nothing to update.")
		return nil
	}
	if err := a.validate.Struct(update); err != nil {
		fmt.Fprintln(a.out, validationMessage(err))
		return err
	}

	if err := a.session.UpdateUserProfile(ctx, update); err != nil {
		switch {
		case errors.Is(err, services.ErrNotLoggedIn):
			fmt.Fprintln(a.out, "You are not logged in.")
		case errors.Is(err, services.ErrSuperseded):
		default:
			printFieldErrors(a, err)
		}
		return err
	}
	return nil
}

// Status prints the current session.
func (a *App) Status(_ context.Context) error {
	s := a.session.Snapshot()

	mode := "online"
	if !s.Online {
		mode = "offline"
	}

	if !s.LoggedIn {
		fmt.Fprintf(a.out, "Not logged in (%s)\n", mode)
	} else {
		u := s.User
		fmt.Fprintf(a.out, "Logged in as %s <%s> (%s)\n", u.DisplayName(), u.Email, mode)
		if u.University != "" || u.Department != "" {
			fmt.Fprintf(a.out, "  %s\n", strings.Trim(u.University+", "+u.Department, ", "))
		}
		if u.Bio != "" {
			fmt.Fprintf(a.out, "  %s\n", u.Bio)
		}
		fmt.Fprintf(a.out, "  followers: %d, following: %d\n", u.Followers, u.Following)
	}
	if s.Error != "" {
		fmt.Fprintf(a.out, "Last error: %s\n", s.Error)
	}
	return nil
}

// Retry checks the server and, if it answers, restores the session.
func (a *App) Retry(ctx context.Context) error {
	if !a.monitor.Check(ctx) {
		fmt.Fprintln(a.out, "Still offline.")
		return client.ErrUnavailable
	}
	a.session.RetryConnection(ctx)
	return nil
}

func printFieldErrors(a *App, err error) {
	apiErr, ok := client.AsError(err)
	if !ok || len(apiErr.Fields) == 0 {
		return
	}
	fields := make([]string, 0, len(apiErr.Fields))
	for f := range apiErr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(a.out, "  %s: %s\n", f, strings.Join(apiErr.Fields[f], "; "))
	}
}
