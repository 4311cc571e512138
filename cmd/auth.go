package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotx/internal/server"
	"github.com/desertthunder/spotx/internal/shared"
	"github.com/desertthunder/spotx/internal/ui"
	"github.com/urfave/cli/v3"
)

type tokenOutput struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in,omitempty"`
	Expiry      time.Time `json:"expiry,omitzero"`
}

// Auth runs the browser authorization and prints the captured access token.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	captured, err := r.authorize(ctx, config)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tokenOutput{
			AccessToken: captured.AccessToken,
			TokenType:   captured.TokenType,
			ExpiresIn:   captured.ExpiresIn,
			Expiry:      captured.OAuth2().Expiry,
		}, true)
	}

	r.writePlain("%s\n", ui.Styles().OK("Authorization successful"))
	if captured.ExpiresIn > 0 {
		r.writePlain("%s\n", ui.Styles().Help(fmt.Sprintf("Expires in %s", time.Duration(captured.ExpiresIn)*time.Second)))
	}
	return r.writePlain("%s\n", captured.AccessToken)
}

// authorize binds the loopback listener, sends the user to the provider and waits for the redirect.
func (r *Runner) authorize(ctx context.Context, config *shared.Config) (*server.CapturedToken, error) {
	authURL, pending, err := server.Begin(server.CaptureConfig{
		ClientID: config.Spotify.ClientID,
		Scopes:   config.Spotify.Scopes,
		AuthURL:  config.Spotify.AuthURL,
		Host:     config.Server.Host,
		Port:     config.Server.Port,
		Observer: func(msg string, kv ...any) { r.logger.Debug(msg, kv...) },
	})
	if err != nil {
		return nil, err
	}

	if _, err := pending.Listen(); err != nil {
		return nil, err
	}

	r.logger.Info("Opening browser for authorization...")
	r.writePlain("If your browser does not open, visit:\n%s\n", authURL)
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.authTimeout)
	defer cancel()

	captured, err := pending.Await(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Received access token")
	return captured, nil
}
