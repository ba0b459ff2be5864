package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"
)

// OAuthClient is an installed-app OAuth client, used when the spreadsheet
// belongs to a person rather than a service account.
type OAuthClient struct {
	ClientJSON string
	ClientFile string
	TokenFile  string
}

func (c OAuthClient) configured() bool {
	return (strings.TrimSpace(c.ClientJSON) != "" || strings.TrimSpace(c.ClientFile) != "") &&
		strings.TrimSpace(c.TokenFile) != ""
}

// Config builds the OAuth config with the spreadsheets scope.
func (c OAuthClient) Config(redirectURL string) (*oauth2.Config, error) {
	var (
		b   []byte
		err error
	)
	switch {
	case strings.TrimSpace(c.ClientJSON) != "":
		b = []byte(c.ClientJSON)
	case strings.TrimSpace(c.ClientFile) != "":
		b, err = os.ReadFile(c.ClientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return nil, errors.New("missing oauth client (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")
	}

	cfg, err := goauth.ConfigFromJSON(b, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	cfg.RedirectURL = redirectURL
	return cfg, nil
}

// TokenSource returns a refreshing token source seeded from TokenFile.
func (c OAuthClient) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	cfg, err := c.Config("")
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(c.TokenFile)
	if err != nil {
		return nil, err
	}
	return cfg.TokenSource(ctx, tok), nil
}

// LoadToken reads a token written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open oauth token: %w", err)
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode oauth token: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, errors.New("oauth token file holds no token")
	}
	return &tok, nil
}

// SaveToken writes tok to path, readable by the owner only.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return fmt.Errorf("write token: %w", err)
	}
	return f.Close()
}
