package app

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/buildbeaver/chatdl/common/logger"
	"github.com/buildbeaver/chatdl/common/models"
	"github.com/buildbeaver/chatdl/services/export"
	"github.com/buildbeaver/chatdl/services/history"
)

type App struct {
	Config     *Config
	Paginator  *history.Paginator
	Writer     *export.Writer
	LogFactory logger.LogFactory
	Clock      clock.Clock
}

// Run downloads the configured channel's history and writes it to the output file.
//
// Nothing is written if a request fails outright. If the API stopped the download early with an
// unexpected status, the messages fetched so far are still written; the stop is only reported as
// an error in strict mode.
func (a *App) Run(ctx context.Context) (*models.ResultSet, error) {
	log := a.LogFactory("App")
	start := a.Clock.Now()

	results, err := a.Paginator.FetchAll(ctx, a.Config.Token, a.Config.ChannelID, a.Config.StartCursor)
	if err != nil {
		return results, errors.Wrapf(err, "error downloading channel %s after %d message(s)", a.Config.ChannelID, results.Len())
	}

	err = a.Writer.Write(results)
	if err != nil {
		return results, err
	}

	log.WithFields(logger.Fields{
		"messages": results.Len(),
		"pages":    len(results.Pages()),
		"stop":     results.StopReason(),
		"elapsed":  a.Clock.Since(start).String(),
	}).Info("Download finished")

	if stopErr := results.StopError(); stopErr != nil {
		if a.Config.Strict {
			return results, stopErr
		}
		log.Warnf("Output may be incomplete: %v", stopErr)
	}
	return results, nil
}
