package client

import (
	"context"

	"github.com/dmitrijs2005/notehub/internal/client/models"
)

// Client is the NoteHub REST API as seen by the CLI.
type Client interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	RegisterUser(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
	CurrentUser(ctx context.Context) (*models.User, error)
	VerifyToken(ctx context.Context) (bool, error)
	UpdateUserProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
	Ping(ctx context.Context) error
}
