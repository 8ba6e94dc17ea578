package main

import (
	"fmt"
	"strings"

	"freegrab/pkg/auth"
	"freegrab/pkg/config"
	errs "freegrab/pkg/errors"
)

type credentialSource int

const (
	sourceConfig credentialSource = iota
	sourceStore
	sourcePrompt
)

func (s credentialSource) String() string {
	switch s {
	case sourceConfig:
		return "config"
	case sourceStore:
		return "store"
	case sourcePrompt:
		return "prompt"
	default:
		return "unknown"
	}
}

type credential struct {
	cookie string
	source credentialSource
}

// resolveCredential picks the session cookie: the merged config (flag, env,
// .env, file) first, then a saved account, then an interactive prompt
func (a *app) resolveCredential(cfg *config.Config, manager *auth.Manager) (credential, error) {
	if cookie := strings.TrimSpace(cfg.Session.Auth); cookie != "" {
		return credential{cookie: cookie, source: sourceConfig}, nil
	}

	if manager != nil {
		if account, err := manager.Retrieve(cfg.Session.Account); err == nil && account.Cookie != "" {
			return credential{cookie: account.Cookie, source: sourceStore}, nil
		}
	}

	if a.stdin != nil && a.isTerminal(a.stdin) {
		return a.promptCredential()
	}

	return credential{}, errs.New(errs.ErrorTypeAuth, 0,
		"no session cookie found: pass --auth, set FREEGRAB_AUTH or save one with --save-auth")
}

func (a *app) promptCredential() (credential, error) {
	fmt.Fprint(a.stderr, "Session cookie: ")
	secret, err := a.readSecret(a.stdin)
	fmt.Fprintln(a.stderr)
	if err != nil {
		return credential{}, fmt.Errorf("failed to read session cookie: %w", err)
	}

	cookie := strings.TrimSpace(string(secret))
	if cookie == "" {
		return credential{}, errs.New(errs.ErrorTypeAuth, 0, "empty session cookie")
	}
	return credential{cookie: cookie, source: sourcePrompt}, nil
}
