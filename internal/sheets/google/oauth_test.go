package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

const testClientJSON = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func TestTokenSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	if err := SaveToken(path, &oauth2.Token{AccessToken: "test", RefreshToken: "refresh"}); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	token, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if token.AccessToken != "test" || token.RefreshToken != "refresh" {
		t.Errorf("unexpected token %+v", token)
	}
}

func TestLoadTokenEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadToken(path); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestOAuthConfigMissingClient(t *testing.T) {
	_, err := OAuthClient{}.Config("")
	if err == nil {
		t.Fatal("expected error for missing oauth client")
	}
	if !strings.Contains(err.Error(), "missing oauth client") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOAuthConfigFromJSON(t *testing.T) {
	cfg, err := OAuthClient{ClientJSON: testClientJSON}.Config("http://localhost:8085/callback")
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.ClientID != "test" {
		t.Errorf("client ID = %q", cfg.ClientID)
	}
	if cfg.RedirectURL != "http://localhost:8085/callback" {
		t.Errorf("redirect URL = %q", cfg.RedirectURL)
	}
}

func TestOAuthTokenSourceMissingToken(t *testing.T) {
	client := OAuthClient{ClientJSON: testClientJSON, TokenFile: filepath.Join(t.TempDir(), "missing.json")}
	if !client.configured() {
		t.Fatal("client with JSON and token file should be configured")
	}
	if _, err := client.TokenSource(context.Background()); err == nil {
		t.Fatal("expected error for missing token file")
	}
}
