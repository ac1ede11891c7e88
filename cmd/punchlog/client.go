package main

import (
	"fmt"

	"punchlog/internal/api"
	"punchlog/internal/config"
	"punchlog/internal/identity"
	"punchlog/internal/session"
)

// newAPIClient builds a client for the configured service address. It is a
// var so tests can point commands at an httptest server.
var newAPIClient = func() (*api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return api.NewClient(cfg.Client.BaseURL), nil
}

// newIdentityStore resolves the identity file. Also swappable for tests.
var newIdentityStore = func() identity.Store {
	return identity.NewFileStore()
}

// newCLISession wires a session for one command invocation. Callers run
// Bootstrap themselves so they control whether the initial query executes.
func newCLISession() (*session.Session, error) {
	client, err := newAPIClient()
	if err != nil {
		return nil, err
	}
	return session.New(client, newIdentityStore()), nil
}
