package auth

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/plotline/plotline/internal/domain"
)

// OAuthExchanger implements the two identity exchange flows against the
// remote identity service: client credentials for the service subject and
// authorization code (plus refresh) for the user subject.
type OAuthExchanger struct {
	clientID     string
	clientSecret string
	tokenURL     string
	userConf     *oauth2.Config
}

type OAuthExchangerConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	UserScopes   []string
}

func NewOAuthExchanger(cfg OAuthExchangerConfig) *OAuthExchanger {
	return &OAuthExchanger{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenURL:     cfg.TokenURL,
		userConf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.UserScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// AuthCodeURL returns the authorization page URL the user is sent to.
func (e *OAuthExchanger) AuthCodeURL(state string) string {
	return e.userConf.AuthCodeURL(state)
}

func (e *OAuthExchanger) ClientCredentials(ctx context.Context, scopes []string) (domain.Credential, error) {
	cc := &clientcredentials.Config{
		ClientID:     e.clientID,
		ClientSecret: e.clientSecret,
		TokenURL:     e.tokenURL,
		Scopes:       scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	tok, err := cc.Token(ctx)
	if err != nil {
		return domain.Credential{}, &domain.AuthError{Op: "client credentials exchange", Err: err}
	}

	return credentialFromToken(tok, domain.SubjectService), nil
}

func (e *OAuthExchanger) ExchangeCode(ctx context.Context, code string) (domain.Credential, error) {
	tok, err := e.userConf.Exchange(ctx, code)
	if err != nil {
		return domain.Credential{}, &domain.AuthError{Op: "authorization code exchange", Err: err}
	}

	return credentialFromToken(tok, domain.SubjectUser), nil
}

func (e *OAuthExchanger) Refresh(ctx context.Context, refreshToken string) (domain.Credential, error) {
	src := e.userConf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	tok, err := src.Token()
	if err != nil {
		return domain.Credential{}, &domain.AuthError{Op: "refresh token exchange", Err: err}
	}

	return credentialFromToken(tok, domain.SubjectUser), nil
}

func credentialFromToken(tok *oauth2.Token, subject domain.Subject) domain.Credential {
	return domain.Credential{
		Subject:      subject,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
}
