//go:build wireinject
// +build wireinject

package app

import (
	"github.com/benbjohnson/clock"
	"github.com/google/wire"

	"github.com/buildbeaver/chatdl/api/client"
	"github.com/buildbeaver/chatdl/common/logger"
	"github.com/buildbeaver/chatdl/services/export"
	"github.com/buildbeaver/chatdl/services/history"
)

var configFields = wire.FieldsOf(new(*Config), "APIClientConfig", "AuthScheme", "PageSize", "OutputFile")

var downloadSet = wire.NewSet(
	wire.Struct(new(App), "*"),

	client.NewAuthenticator,
	client.NewAPIClient,
	wire.Bind(new(history.MessageLister), new(*client.APIClient)),

	history.NewRateLimitHandler,
	history.NewPaginator,

	export.NewWriter,
)

// New builds an App that talks to the real API, writes to the local disk and logs to stderr.
func New(config *Config) (*App, error) {
	panic(wire.Build(
		configFields,
		downloadSet,
		wire.FieldsOf(new(*Config), "LogLevels", "JSON", "RunID"),
		NewLogRegistry,
		NewLogFactory,
		clock.New,
		history.NewClockDelay,
		export.NewOSFileSystem,
		wire.Bind(new(export.FileSystem), new(*export.OSFileSystem)),
	))
}

// NewWithOverrides builds an App using the supplied logging, clock, delay and filesystem.
func NewWithOverrides(
	config *Config,
	logFactory logger.LogFactory,
	clk clock.Clock,
	delay history.DelayFunc,
	fs export.FileSystem,
) (*App, error) {
	panic(wire.Build(
		configFields,
		downloadSet,
	))
}
