package adapter

import (
	"context"

	"brainz-training/internal/domain/model"
)

// AuthGateway is the port for the external auth and user services.
type AuthGateway interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthTokens, error)
	Refresh(ctx context.Context) (*model.AuthTokens, error)
	Logout()
	Register(ctx context.Context, reg model.Registration) (*model.User, error)
	Me(ctx context.Context) (*model.User, error)
	UpdateMe(ctx context.Context, user model.User) (*model.User, error)
	DeleteMe(ctx context.Context) error
}
