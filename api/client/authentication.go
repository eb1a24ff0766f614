package client

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/buildbeaver/chatdl/common/gerror"
	"github.com/buildbeaver/chatdl/common/models"
)

// AuthScheme selects how the token is presented to the API.
type AuthScheme string

const (
	// AuthSchemeQuery sends the token as the "token" query parameter.
	AuthSchemeQuery AuthScheme = "query"
	// AuthSchemeBot sends the token in an "Authorization: Bot <token>" header.
	AuthSchemeBot AuthScheme = "bot"
	// AuthSchemeBearer sends the token as an OAuth2 bearer token.
	AuthSchemeBearer AuthScheme = "bearer"
)

func (s AuthScheme) String() string {
	return string(s)
}

// Valid returns true if s is one of the supported schemes.
func (s AuthScheme) Valid() bool {
	switch s {
	case AuthSchemeQuery, AuthSchemeBot, AuthSchemeBearer:
		return true
	}
	return false
}

// Authenticator enables the API client to make authenticated API requests
// using pluggable authentication methods.
type Authenticator interface {
	AuthenticateRequest(req *http.Request, token models.Token) error
}

// NewAuthenticator returns the Authenticator for the specified scheme.
func NewAuthenticator(scheme AuthScheme) (Authenticator, error) {
	switch AuthScheme(strings.ToLower(scheme.String())) {
	case AuthSchemeQuery, "":
		return &QueryTokenAuthenticator{}, nil
	case AuthSchemeBot:
		return &BotTokenAuthenticator{}, nil
	case AuthSchemeBearer:
		return &BearerTokenAuthenticator{}, nil
	default:
		return nil, gerror.NewErrValidationFailed(fmt.Sprintf("error unknown auth scheme %q", scheme))
	}
}

// QueryTokenAuthenticator adds the token to the request's query string.
type QueryTokenAuthenticator struct{}

func (a *QueryTokenAuthenticator) AuthenticateRequest(req *http.Request, token models.Token) error {
	q := req.URL.Query()
	q.Set("token", token.String())
	req.URL.RawQuery = q.Encode()
	return nil
}

// BotTokenAuthenticator authenticates as a bot user.
type BotTokenAuthenticator struct{}

func (a *BotTokenAuthenticator) AuthenticateRequest(req *http.Request, token models.Token) error {
	req.Header.Set("Authorization", "Bot "+token.String())
	return nil
}

// BearerTokenAuthenticator authenticates with an OAuth2 access token.
type BearerTokenAuthenticator struct{}

func (a *BearerTokenAuthenticator) AuthenticateRequest(req *http.Request, token models.Token) error {
	t := &oauth2.Token{AccessToken: token.String(), TokenType: "Bearer"}
	if !t.Valid() {
		return gerror.NewErrValidationFailed("error bearer token is empty")
	}
	t.SetAuthHeader(req)
	return nil
}
