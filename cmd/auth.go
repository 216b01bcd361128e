package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/amx/internal/auth"
	"github.com/desertthunder/amx/internal/server"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/urfave/cli/v3"
)

// authCommand handles Google authorization for the YouTube Data API
func authCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Google authorization for the YouTube Data API",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize via browser and store tokens",
				Flags:  []cli.Flag{configFlag},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the stored credential state",
				Flags:  []cli.Flag{configFlag},
				Action: r.AuthStatus,
			},
		},
	}
}

// newAuthSession builds an auth session from the runner's config.
func (r *Runner) newAuthSession() (*auth.Session, error) {
	google := r.config.Credentials.Google
	return auth.NewSession(google.ClientID, google.ClientSecret, google.RedirectURI)
}

// credentialFromConfig reconstructs the stored credential, or nil when no
// tokens have been stored yet.
func credentialFromConfig(config *shared.Config) *auth.Credential {
	google := config.Credentials.Google
	if google.AccessToken == "" {
		return nil
	}

	cred := &auth.Credential{
		AccessToken:  google.AccessToken,
		RefreshToken: google.RefreshToken,
		TokenType:    "Bearer",
	}
	if expiry, err := time.Parse(time.RFC3339, google.Expiry); err == nil {
		cred.Expiry = expiry
	}
	return cred
}

// storeCredential writes the credential into the config and persists it.
func (r *Runner) storeCredential(configPath string, cred *auth.Credential) error {
	r.config.Credentials.Google.AccessToken = cred.AccessToken
	if cred.RefreshToken != "" {
		r.config.Credentials.Google.RefreshToken = cred.RefreshToken
	}
	r.config.Credentials.Google.Expiry = cred.Expiry.Format(time.RFC3339)

	if err := shared.SaveConfig(configPath, r.config); err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}
	return nil
}

// AuthLogin runs the browser authorization flow and stores the tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	r.reloadConfig(configPath)

	session, err := r.newAuthSession()
	if err != nil {
		return err
	}

	cred, err := r.doOAuth(session)
	if err != nil {
		return err
	}

	if err := r.storeCredential(configPath, cred); err != nil {
		return err
	}

	r.logger.Info("authorization complete", "expiry", cred.Expiry)
	return r.writePlain("✓ Authorization successful, tokens saved to %s\n", configPath)
}

// AuthStatus reports whether a usable credential is stored.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd.String("config"))

	cred := credentialFromConfig(r.config)
	if cred == nil {
		return r.writePlain("✗ Not authorized. Run 'amx auth login' first.\n")
	}

	if !cred.Expired() {
		return r.writePlain("✓ Authorized (access token valid until %s)\n", cred.Expiry.Format(time.RFC3339))
	}
	if cred.RefreshToken != "" {
		return r.writePlain("✓ Authorized (access token expired, refresh token available)\n")
	}
	return r.writePlain("✗ Access token expired and no refresh token stored. Run 'amx auth login' again.\n")
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(session *auth.Session) (*auth.Credential, error) {
	authURL, state, err := session.Begin()
	if err != nil {
		return nil, err
	}

	oauthHandler := server.NewOAuthHandler(session, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Google authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Credential == nil {
		return nil, fmt.Errorf("no credential received")
	}

	return result.Credential, nil
}
