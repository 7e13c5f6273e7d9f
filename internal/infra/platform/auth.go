package platform

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AuthConfig selects how requests to the hosting platform are authenticated.
type AuthConfig struct {
	Token        string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

func (a AuthConfig) clientCredentials() bool {
	return strings.TrimSpace(a.ClientID) != "" &&
		strings.TrimSpace(a.ClientSecret) != "" &&
		strings.TrimSpace(a.TokenURL) != ""
}

// NewHTTPClient returns a client that attaches bearer tokens to every request.
// Client credentials take precedence over a static token.
func NewHTTPClient(ctx context.Context, auth AuthConfig, logger *zap.Logger) *http.Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case auth.clientCredentials():
		cfg := clientcredentials.Config{
			ClientID:     auth.ClientID,
			ClientSecret: auth.ClientSecret,
			TokenURL:     auth.TokenURL,
			Scopes:       auth.Scopes,
		}
		return cfg.Client(ctx)
	case strings.TrimSpace(auth.Token) != "":
		src := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: strings.TrimSpace(auth.Token),
			TokenType:   "Bearer",
		})
		return oauth2.NewClient(ctx, src)
	default:
		logger.Warn("platform credentials not configured; requests are sent unauthenticated")
		return &http.Client{}
	}
}
