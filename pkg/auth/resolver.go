package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// ErrIdentityUnresolved means every identity lookup method was exhausted
// without recovering the user's email. Credentials must not be persisted in
// that case.
var ErrIdentityUnresolved = errors.New("could not determine the account email from the issued tokens")

// ExchangeError wraps a failed authorization-code exchange.
type ExchangeError struct {
	Err error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: %v", e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// Resolver exchanges an authorization code for tokens and determines which
// account they belong to. Scope configuration varies across deployments, so
// the email is recovered through an ordered fallback chain: verified ID
// token, then the user-info endpoint, then token introspection. A step is
// only tried when the previous one yielded nothing; step failures are
// swallowed and only total exhaustion is reported.
type Resolver struct {
	cfg *oauth2.Config

	// Chain steps, replaceable in tests.
	verifyIDToken func(ctx context.Context, rawIDToken string) (string, error)
	fetchUserInfo func(ctx context.Context, token *oauth2.Token) (string, error)
	introspect    func(ctx context.Context, accessToken string) (string, error)
}

func NewResolver(cfg *oauth2.Config) *Resolver {
	r := &Resolver{cfg: cfg}
	r.verifyIDToken = r.verifyGoogleIDToken
	r.fetchUserInfo = r.fetchGoogleUserInfo
	r.introspect = r.introspectGoogleToken
	return r
}

// Resolve exchanges code for a token bundle and resolves the owning email.
func (r *Resolver) Resolve(ctx context.Context, code string) (string, *oauth2.Token, error) {
	token, err := r.cfg.Exchange(ctx, code)
	if err != nil {
		return "", nil, &ExchangeError{Err: err}
	}

	email := r.resolveEmail(ctx, token)
	if email == "" {
		return "", nil, ErrIdentityUnresolved
	}
	return email, token, nil
}

func (r *Resolver) resolveEmail(ctx context.Context, token *oauth2.Token) string {
	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		if email, err := r.verifyIDToken(ctx, raw); err == nil && email != "" {
			return email
		}
	}
	if token.AccessToken != "" {
		if email, err := r.fetchUserInfo(ctx, token); err == nil && email != "" {
			return email
		}
		if email, err := r.introspect(ctx, token.AccessToken); err == nil && email != "" {
			return email
		}
	}
	return ""
}

// verifyGoogleIDToken validates the ID token against our client ID and pulls
// the email claim from its verified payload.
func (r *Resolver) verifyGoogleIDToken(ctx context.Context, rawIDToken string) (string, error) {
	payload, err := idtoken.Validate(ctx, rawIDToken, r.cfg.ClientID)
	if err != nil {
		return "", err
	}
	email, _ := payload.Claims["email"].(string)
	return email, nil
}

// fetchGoogleUserInfo asks the user-info endpoint with the access token.
func (r *Resolver) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (string, error) {
	service, err := goauth2.NewService(ctx, option.WithHTTPClient(r.cfg.Client(ctx, token)))
	if err != nil {
		return "", err
	}
	info, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return info.Email, nil
}

// introspectGoogleToken asks the token-info endpoint what account the access
// token was issued to. Requires the email scope but no ID token.
func (r *Resolver) introspectGoogleToken(ctx context.Context, accessToken string) (string, error) {
	service, err := goauth2.NewService(ctx, option.WithoutAuthentication())
	if err != nil {
		return "", err
	}
	info, err := service.Tokeninfo().AccessToken(accessToken).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return info.Email, nil
}
