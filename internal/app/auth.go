package app

import (
	"context"
	"fmt"

	"github.com/nmartins/melodysync/internal/logger"
)

// ExecuteLoginCommand exercises the source catalog's client-credentials
// grant once, surfacing a configuration or network problem before the user
// tries a sync. Browser/redirect OAuth flows are out of scope (§1); the
// only credential this system consumes is the client id/secret pair read
// from the environment, so there is nothing further to "log in" with.
func ExecuteLoginCommand(ctx context.Context, rt *Runtime) error {
	if _, err := rt.TokenSource.Token(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	logger.Info(ctx, "authenticated successfully against the source catalog")

	return nil
}

// ExecuteLogoutCommand reports that there is no persisted session to clear.
// The source client id/secret live only in the environment (§6.3) and are
// never written to the config file or disk, so logging out is a statement
// about the credential model, not a state change.
func ExecuteLogoutCommand(ctx context.Context) error {
	logger.Info(ctx, "nothing to log out of: credentials are read from the environment on every run "+
		"and are never cached to disk")

	return nil
}

// ExecuteStatusCommand reports whether the configured credentials currently
// authenticate successfully.
func ExecuteStatusCommand(ctx context.Context, rt *Runtime) error {
	if _, err := rt.TokenSource.Token(ctx); err != nil {
		logger.Errorf(ctx, "not authenticated: %v", err)
		return err
	}

	logger.Info(ctx, "authenticated; source catalog credentials are valid")

	return nil
}
