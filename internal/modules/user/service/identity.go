package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"anoa.com/eduainexus/internal/modules/user/dto"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// IdentityProvider is the hosted sign-in flow.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	FetchUser(ctx context.Context, code string) (*dto.GoogleUser, error)
}

type googleIdentity struct {
	cfg *oauth2.Config
}

func NewGoogleIdentity(clientID, clientSecret, redirectURL string) IdentityProvider {
	return &googleIdentity{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}}
}

func (g *googleIdentity) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *googleIdentity) FetchUser(ctx context.Context, code string) (*dto.GoogleUser, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	resp, err := g.cfg.Client(ctx, tok).Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info returned status %d", resp.StatusCode)
	}

	var user dto.GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &user, nil
}
