// Package session establishes the per-run identity used for every
// authenticated marketplace call.
package session

import (
	"context"
	"fmt"
	"io"

	errs "freegrab/pkg/errors"
	"freegrab/pkg/logger"
	"freegrab/pkg/marketplace"
)

// API is the subset of the marketplace client needed to bootstrap a session
type API interface {
	AuthenticatedUser(ctx context.Context) (*marketplace.AuthenticatedUser, error)
	HomePage(ctx context.Context) (io.ReadCloser, error)
}

// Session carries the credentials for one run. It is built once by
// Bootstrap and never modified afterwards.
type Session struct {
	IdentityToken    string
	AntiForgeryToken string
	UserID           uint64
	UserName         string
}

// String describes the session without leaking tokens
func (s *Session) String() string {
	return fmt.Sprintf("Session{user=%d, csrf=%t}", s.UserID, s.AntiForgeryToken != "")
}

// Bootstrap resolves the user behind identityToken and scrapes the
// anti-forgery token from the home page. A missing anti-forgery token is
// logged, not returned as an error.
func Bootstrap(ctx context.Context, api API, identityToken string, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if identityToken == "" {
		return nil, errs.New(errs.ErrorTypeAuth, 0, "no credential supplied")
	}

	user, err := api.AuthenticatedUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve authenticated user: %w", err)
	}

	body, err := api.HomePage(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch anti-forgery token: %w", err)
	}
	defer body.Close()

	token, err := ExtractCSRFToken(body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, 0, err, "read home page")
	}
	if token == "" {
		log.Warn("no anti-forgery token found on home page, purchases will likely be rejected")
	}

	log.InfoWithFields("session established", map[string]interface{}{
		"user_id":  user.ID,
		"has_csrf": token != "",
	})

	return &Session{
		IdentityToken:    identityToken,
		AntiForgeryToken: token,
		UserID:           user.ID,
		UserName:         user.Name,
	}, nil
}
