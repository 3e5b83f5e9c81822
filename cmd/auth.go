package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tuneport/tuneport/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthURL prints the Spotify OAuth2 authorization URL and opens it in a browser.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: spotify credentials missing from config", shared.ErrMissingCredentials)
	}

	state := shared.GenerateID()
	authURL := r.spotify.AuthURL(state)

	r.writePlain("Open this URL to authorize access to your Spotify account:\n\n%s\n\n", authURL)
	r.writePlain("After authorizing, run: tuneport auth login <code>\n")

	if !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("could not open browser", "err", err)
		}
	}

	return nil
}

// AuthLogin exchanges an authorization code for a token and saves it to the
// configured token path.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: spotify credentials missing from config", shared.ErrMissingCredentials)
	}

	code := cmd.StringArg("code")
	if code == "" {
		return fmt.Errorf("%w: authorization code argument required", shared.ErrMissingArgument)
	}

	token, err := r.spotify.Authenticate(ctx, code)
	if err != nil {
		return err
	}

	tokenPath := r.config.Credentials.Spotify.TokenPath
	if tokenPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		tokenPath = filepath.Join(homeDir, ".tuneport", "token.json")
	}

	if err := saveToken(tokenPath, token); err != nil {
		return err
	}

	r.logger.Info("token saved", "path", tokenPath)
	return r.writePlain("✓ Authentication successful\nToken saved to: %s\n", tokenPath)
}

// loadToken reads a saved OAuth2 token from disk.
func loadToken(path string) (*oauth2.Token, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(homeDir, ".tuneport", "token.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: malformed token file: %v", shared.ErrInvalidCredentials, err)
	}

	return &token, nil
}

// saveToken writes an OAuth2 token to disk with restrictive permissions.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}
