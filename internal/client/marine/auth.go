package marine

import (
	"context"
	"net/http"

	"github.com/garrettladley/marine/internal/validator"
	"github.com/garrettladley/marine/internal/xhttp"
)

const profileRoute = "/v1/auth/profiles/me/"

type authService struct {
	client *Client
}

// Login stores the session cookies set by the API in the client's jar.
func (s *authService) Login(ctx context.Context, creds Credentials) error {
	const route = "/v1/auth/login/"

	if err := validator.Validate(creds); err != nil {
		return err
	}
	return s.client.doRaw(ctx, http.MethodPost, route, creds, nil)
}

func (s *authService) Logout(ctx context.Context) error {
	const route = "/v1/auth/logout/"
	return s.client.do(ctx, http.MethodPost, route, nil, nil, nil)
}

func (s *authService) Register(ctx context.Context, reg Registration) (*Profile, error) {
	const route = "/v1/auth/register/"

	if err := validator.Validate(reg); err != nil {
		return nil, err
	}
	var profile Profile
	if err := s.client.doRaw(ctx, http.MethodPost, route, reg, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *authService) Me(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := s.client.do(ctx, http.MethodGet, profileRoute, nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *authService) CheckSession(ctx context.Context, cookieHeader string) (*Profile, error) {
	cl := &call{
		method: http.MethodGet,
		route:  profileRoute,
		header: http.Header{xhttp.Cookie: []string{cookieHeader}},
	}
	var profile Profile
	if err := s.client.send(ctx, cl, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

func (r passwordResetRequest) Validate() map[string]string {
	errs := make(validator.Fields)
	errs.Check(validator.Email(r.Email), "email", "invalid email address")
	return errs.Result()
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	const route = "/v1/auth/password-reset/"

	req := passwordResetRequest{Email: email}
	if err := validator.Validate(req); err != nil {
		return err
	}
	return s.client.doRaw(ctx, http.MethodPost, route, req, nil)
}

func (s *authService) ConfirmPasswordReset(ctx context.Context, confirm PasswordResetConfirm) error {
	const route = "/v1/auth/password-reset/confirm/"

	if err := validator.Validate(confirm); err != nil {
		return err
	}
	return s.client.doRaw(ctx, http.MethodPost, route, confirm, nil)
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

func (r verifyEmailRequest) Validate() map[string]string {
	errs := make(validator.Fields)
	errs.Check(validator.Required(r.Token), "token", "verification code is required")
	return errs.Result()
}

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	const route = "/v1/auth/verify-email/"

	req := verifyEmailRequest{Token: token}
	if err := validator.Validate(req); err != nil {
		return err
	}
	return s.client.doRaw(ctx, http.MethodPost, route, req, nil)
}
