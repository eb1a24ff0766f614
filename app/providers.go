package app

import (
	"github.com/sirupsen/logrus"

	"github.com/buildbeaver/chatdl/common/logger"
)

// NewLogRegistry builds the log registry from the configured per-subsystem levels, lowering the
// default level to debug when debug output is requested.
func NewLogRegistry(levels logger.LogLevelConfig, config *Config) (*logger.LogRegistry, error) {
	registry, err := logger.NewLogRegistry(levels)
	if err != nil {
		return nil, err
	}
	if config.Debug {
		registry.SetDefaultLevel(logrus.DebugLevel)
	}
	return registry, nil
}

// NewLogFactory returns a factory for loggers writing to stderr, tagging every line with the run id.
func NewLogFactory(registry *logger.LogRegistry, jsonOutput logger.JSONOutput, runID RunID) logger.LogFactory {
	baseFields := logger.Fields{}
	if runID != "" {
		baseFields["run_id"] = string(runID)
	}
	return logger.MakeLogrusLogFactoryStdErr(registry, jsonOutput, baseFields)
}
