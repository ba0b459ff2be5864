package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	gsheet "dernek/internal/sheets/google"
)

var sheetsAuthFlags struct {
	port    int
	timeout time.Duration
}

var sheetsAuthCmd = &cobra.Command{
	Use:   "sheets-auth",
	Short: "Authorize the sheets export with a Google user account",
	Long: "Run the OAuth installed-app flow and save the token to GOOGLE_OAUTH_TOKEN_FILE. " +
		"The OAuth client must list http://localhost:<port>/callback as a redirect URI.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client := gsheet.OAuthClient{
			ClientJSON: app.cfg.GoogleOAuthClientJSON,
			ClientFile: app.cfg.GoogleOAuthClientFile,
			TokenFile:  app.cfg.GoogleOAuthTokenFile,
		}
		if client.TokenFile == "" {
			client.TokenFile = "token.json"
		}

		redirectURL := fmt.Sprintf("http://localhost:%d/callback", sheetsAuthFlags.port)
		cfg, err := client.Config(redirectURL)
		if err != nil {
			return err
		}

		state := uuid.NewString()
		codeCh := make(chan string, 1)
		errCh := make(chan error, 1)

		mux := http.NewServeMux()
		mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if e := q.Get("error"); e != "" {
				http.Error(w, "OAuth error: "+e, http.StatusBadRequest)
				errCh <- fmt.Errorf("authorization denied: %s", e)
				return
			}
			if q.Get("state") != state {
				http.Error(w, "state mismatch", http.StatusBadRequest)
				return
			}
			fmt.Fprintln(w, "You may close this window and return to the terminal.")
			codeCh <- q.Get("code")
		})
		srv := &http.Server{
			Addr:              fmt.Sprintf("localhost:%d", sheetsAuthFlags.port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		defer srv.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authorize:\n%s\n", cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

		ctx := cmd.Context()
		select {
		case code := <-codeCh:
			tok, err := cfg.Exchange(ctx, code)
			if err != nil {
				return fmt.Errorf("token exchange: %w", err)
			}
			if err := gsheet.SaveToken(client.TokenFile, tok); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved token to %s\n", client.TokenFile)
			return nil
		case err := <-errCh:
			return err
		case <-time.After(sheetsAuthFlags.timeout):
			return errors.New("authorization timed out")
		case <-ctx.Done():
			return ctx.Err()
		}
	},
}

func init() {
	sheetsAuthCmd.Flags().IntVar(&sheetsAuthFlags.port, "port", 8085, "local port for the OAuth redirect")
	sheetsAuthCmd.Flags().DurationVar(&sheetsAuthFlags.timeout, "timeout", 5*time.Minute, "how long to wait for authorization")
}
