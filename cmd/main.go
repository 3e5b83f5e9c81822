package main

import (
	"context"
	"errors"
	"os"

	"github.com/tuneport/tuneport/internal/services"
	"github.com/tuneport/tuneport/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService *services.SpotifyService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		token, err := loadToken(config.Credentials.Spotify.TokenPath)
		if err != nil {
			logger.Debug("no saved spotify token", "err", err)
		}
		if svc, err := services.NewSpotifyService(services.SpotifyCredentials{
			ClientID:     config.Credentials.Spotify.ClientID,
			ClientSecret: config.Credentials.Spotify.ClientSecret,
			RedirectURI:  config.Credentials.Spotify.RedirectURI,
		}, token); err == nil {
			spotifyService = svc
		}
	}

	youtubeService := services.NewYouTubeService(
		config.Credentials.YouTube.ProxyURL,
		config.Credentials.YouTube.HeadersPath,
		config.Sync.PageRetries,
	)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Spotify:    spotifyService,
		YouTube:    youtubeService,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "tuneport",
		Usage:    "Migrate your YouTube Music library to Spotify",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
