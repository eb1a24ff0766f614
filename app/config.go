package app

import (
	"fmt"
	"net/url"

	"github.com/fatih/structs"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/buildbeaver/chatdl/api/client"
	"github.com/buildbeaver/chatdl/common/gerror"
	"github.com/buildbeaver/chatdl/common/logger"
	"github.com/buildbeaver/chatdl/common/models"
	"github.com/buildbeaver/chatdl/common/version"
	"github.com/buildbeaver/chatdl/services/export"
	"github.com/buildbeaver/chatdl/services/history"
)

// RunID identifies a single invocation in log output.
type RunID string

type Config struct {
	// Token is never logged.
	Token       models.Token `structs:"-"`
	ChannelID   models.ChannelID
	StartCursor models.MessageID
	RunID       RunID

	APIClientConfig client.APIClientConfig
	AuthScheme      client.AuthScheme
	PageSize        history.PageSize
	OutputFile      export.OutputFile

	LogLevels logger.LogLevelConfig
	JSON      logger.JSONOutput
	Debug     bool
	// Strict makes a download that stopped on an unexpected API status a failure.
	Strict bool
}

// NewConfig returns a config for downloading channelID's history older than startCursor, with
// every other setting at its default.
func NewConfig(token models.Token, channelID models.ChannelID, startCursor models.MessageID) *Config {
	return &Config{
		Token:       token,
		ChannelID:   channelID,
		StartCursor: startCursor,
		APIClientConfig: client.APIClientConfig{
			Endpoint:  client.DefaultEndpoint,
			UserAgent: version.UserAgent(),
		},
		AuthScheme: client.AuthSchemeQuery,
		PageSize:   history.DefaultPageSize,
		OutputFile: export.DefaultOutputFile,
	}
}

// Validate returns every problem found with the config, or nil if it is usable.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.Token == "" {
		result = multierror.Append(result, errors.New("token must not be empty"))
	}
	if c.ChannelID == "" {
		result = multierror.Append(result, errors.New("channel id must not be empty"))
	}
	if c.PageSize < 1 || c.PageSize > client.MaxMessagesLimit {
		result = multierror.Append(result, errors.Errorf("limit must be between 1 and %d, got %d", client.MaxMessagesLimit, c.PageSize))
	}
	if c.APIClientConfig.Timeout < 0 {
		result = multierror.Append(result, errors.Errorf("timeout must not be negative, got %s", c.APIClientConfig.Timeout))
	}
	if !c.AuthScheme.Valid() {
		result = multierror.Append(result, errors.Errorf("auth scheme must be one of %q, %q or %q, got %q",
			client.AuthSchemeQuery, client.AuthSchemeBot, client.AuthSchemeBearer, c.AuthScheme))
	}
	if c.OutputFile == "" {
		result = multierror.Append(result, errors.New("output file must not be empty"))
	}
	if err := validateEndpoint(c.APIClientConfig.Endpoint); err != nil {
		result = multierror.Append(result, err)
	}
	if result == nil {
		return nil
	}
	return gerror.NewErrValidationFailed("error invalid configuration").Wrap(result.ErrorOrNil())
}

func validateEndpoint(endpoint client.Endpoint) error {
	uri, err := url.ParseRequestURI(endpoint.String())
	if err != nil {
		return errors.Wrapf(err, "base url %q is not a valid URL", endpoint)
	}
	if uri.Scheme != "http" && uri.Scheme != "https" {
		return fmt.Errorf("base url %q must use http or https", endpoint)
	}
	if uri.Host == "" {
		return fmt.Errorf("base url %q has no host", endpoint)
	}
	return nil
}

// LogFields returns the config as structured log fields. The token is omitted.
func (c *Config) LogFields() logger.Fields {
	return structs.Map(c)
}
