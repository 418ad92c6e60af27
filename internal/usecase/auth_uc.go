// File: internal/usecase/auth_uc.go
package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"brainz-training/internal/domain/model"
	"brainz-training/internal/domain/ports/adapter"
)

// Compile-time check
var _ AuthUseCase = (*authUC)(nil)

// AuthUseCase wraps the external auth/user collaborators into the session
// bootstrap flows the web layer needs.
type AuthUseCase interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthTokens, error)
	Register(ctx context.Context, reg model.Registration) (*model.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*model.User, error)
	UpdateMe(ctx context.Context, user model.User) (*model.User, error)
	DeleteMe(ctx context.Context) error
}

type authUC struct {
	gw  adapter.AuthGateway
	log *zerolog.Logger
}

func NewAuthUseCase(gw adapter.AuthGateway, logger *zerolog.Logger) *authUC {
	return &authUC{gw: gw, log: logger}
}

func (a *authUC) Login(ctx context.Context, creds model.Credentials) (*model.AuthTokens, error) {
	tokens, err := a.gw.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	a.log.Info().Str("user", tokens.Username).Msg("logged in")
	return tokens, nil
}

// Register creates the account and then chains a login with the submitted
// password so the new user lands in an authenticated session right away.
func (a *authUC) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	user, err := a.gw.Register(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if _, err := a.gw.Login(ctx, model.Credentials{Username: reg.Username, Password: reg.Password}); err != nil {
		// Account exists; the user can still log in manually.
		a.log.Warn().Err(err).Str("user", reg.Username).Msg("post-registration login failed")
	}
	return user, nil
}

func (a *authUC) Logout(ctx context.Context) error {
	a.gw.Logout()
	return nil
}

func (a *authUC) Me(ctx context.Context) (*model.User, error) {
	return a.gw.Me(ctx)
}

func (a *authUC) UpdateMe(ctx context.Context, user model.User) (*model.User, error) {
	return a.gw.UpdateMe(ctx, user)
}

func (a *authUC) DeleteMe(ctx context.Context) error {
	return a.gw.DeleteMe(ctx)
}
