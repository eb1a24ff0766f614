package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/buildbeaver/chatdl/common/gerror"
	"github.com/buildbeaver/chatdl/common/logger"
	"github.com/buildbeaver/chatdl/common/models"
)

// DefaultEndpoint is the base URL of the chat API.
const DefaultEndpoint Endpoint = "https://discordapp.com/api"

// Endpoint is the base URL that API paths are appended to.
type Endpoint string

func (e Endpoint) String() string {
	return string(e)
}

// APIClientConfig configures the HTTP client used to talk to the chat API.
type APIClientConfig struct {
	Endpoint Endpoint
	// Timeout bounds each request. Zero means no timeout.
	Timeout   time.Duration
	UserAgent string
}

// Response is a buffered API response. No status code inspection is made by the client.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// APIClient is an HTTP client used to read channel history from the chat API.
type APIClient struct {
	endpoint        string
	userAgent       string
	retryableClient *retryablehttp.Client
	authenticator   Authenticator
	log             logger.Log
}

func NewAPIClient(config APIClientConfig, authenticator Authenticator, logFactory logger.LogFactory) (*APIClient, error) {
	log := logFactory("APIClient")

	endpoint := strings.TrimRight(config.Endpoint.String(), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint.String()
	}
	uri, err := url.ParseRequestURI(endpoint)
	if err != nil || uri.Host == "" {
		return nil, gerror.NewErrValidationFailed(fmt.Sprintf("error invalid API endpoint %q", endpoint))
	}
	if authenticator == nil {
		return nil, errors.New("error authenticator must not be nil")
	}

	// Do not share HTTP clients between instances of APIClient
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = config.Timeout

	retryableClient := retryablehttp.NewClient()
	retryableClient.HTTPClient = httpClient
	retryableClient.RetryMax = 0
	retryableClient.CheckRetry = neverRetryPolicy
	retryableClient.ErrorHandler = transportErrorHandler
	retryableClient.Logger = NewLeveledLogger(log) // use adaptor to get log level support

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = "chatdl"
	}
	return &APIClient{
		endpoint:        endpoint,
		userAgent:       userAgent,
		retryableClient: retryableClient,
		authenticator:   authenticator,
		log:             log,
	}, nil
}

// neverRetryPolicy hands every response back to the caller. Rate limits are waited out by the
// paginator and every other failure is reported as is.
func neverRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, nil
}

// transportErrorHandler strips the request URL from transport errors, since the URL may carry the token.
func transportErrorHandler(resp *http.Response, err error, numTries int) (*http.Response, error) {
	if resp != nil {
		resp.Body.Close()
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return nil, err
}

// get performs an authenticated HTTP GET request for the specified path relative to the configured endpoint.
// Returns the buffered response, or an error if there was a problem making the request.
func (a *APIClient) get(ctx context.Context, token models.Token, path string, query url.Values) (*Response, error) {
	endpoint, err := a.getRequestEndpoint(path, query)
	if err != nil {
		return nil, errors.Wrap(err, "error getting request endpoint")
	}
	req, err := retryablehttp.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "error making request")
	}
	req = req.WithContext(ctx)
	err = a.authenticator.AuthenticateRequest(req.Request, token)
	if err != nil {
		return nil, errors.Wrap(err, "error authenticating request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", a.userAgent)

	res, err := a.retryableClient.Do(req)
	if err != nil {
		return nil, gerror.NewErrHttpOperationFailed(fmt.Sprintf("error during request to %s", path), err)
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, gerror.NewErrHttpOperationFailed("error reading response body", err)
	}
	return &Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       body,
	}, nil
}

func (a *APIClient) getRequestEndpoint(path string, query url.Values) (string, error) {
	// Ensure path begins with a slash
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	uri, err := url.ParseRequestURI(a.endpoint + path)
	if err != nil {
		return "", errors.Wrap(err, "error forming url")
	}
	if len(query) > 0 {
		uri.RawQuery = query.Encode()
	}
	return uri.String(), nil
}
