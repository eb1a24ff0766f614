package history

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/buildbeaver/chatdl/api/client"
	"github.com/buildbeaver/chatdl/common/gerror"
	"github.com/buildbeaver/chatdl/common/logger"
	"github.com/buildbeaver/chatdl/common/models"
)

// DefaultPageSize is the number of messages requested per page. It is the largest page the API serves.
const DefaultPageSize = client.MaxMessagesLimit

// maxLoggedBodyLength caps how much of an error response body is kept for diagnostics.
const maxLoggedBodyLength = 512

// PageSize is the number of messages requested per page, 1-100.
type PageSize int

// MessageLister reads one page of channel history.
type MessageLister interface {
	ListMessages(ctx context.Context, token models.Token, channelID models.ChannelID, q client.MessagesQuery) (*client.Response, error)
}

// Observer is told about download progress.
type Observer interface {
	// PageFetched is called after each page is appended. total is the number of messages fetched so far.
	PageFetched(page *models.Page, total int)
	// RateLimited is called after waiting out a rate limit, before the request is reissued.
	RateLimited()
}

// Paginator downloads a channel's history by repeatedly requesting the page of messages older than
// the oldest message seen so far.
type Paginator struct {
	lister      MessageLister
	rateLimiter *RateLimitHandler
	pageSize    int
	observer    Observer
	log         logger.Log
}

func NewPaginator(lister MessageLister, rateLimiter *RateLimitHandler, pageSize PageSize, logFactory logger.LogFactory) (*Paginator, error) {
	if pageSize < 1 || pageSize > client.MaxMessagesLimit {
		return nil, gerror.NewErrValidationFailed(
			fmt.Sprintf("error page size must be between 1 and %d", client.MaxMessagesLimit)).
			EDetail("page_size", int(pageSize))
	}
	return &Paginator{
		lister:      lister,
		rateLimiter: rateLimiter,
		pageSize:    int(pageSize),
		log:         logFactory("Paginator"),
	}, nil
}

// SetObserver registers o to receive progress notifications. o may be nil.
func (p *Paginator) SetObserver(o Observer) {
	p.observer = o
}

// PageSize returns the number of messages requested per page.
func (p *Paginator) PageSize() int {
	return p.pageSize
}

// FetchAll downloads every message in the channel older than start, newest first.
//
// Paging stops when a page holds fewer than PageSize messages (the end of history) or when the API
// answers with a status other than 200 or 429. In the latter case the result set is still returned
// without error, and its StopError describes the response that ended the download.
//
// An error is returned only if a request could not be completed or a 200 response body could not be parsed;
// the messages fetched before the failure are returned alongside the error.
func (p *Paginator) FetchAll(ctx context.Context, token models.Token, channelID models.ChannelID, start models.MessageID) (*models.ResultSet, error) {
	result := models.NewResultSet(channelID)
	cursor := start
	log := p.log.WithField("channel_id", channelID)
	for {
		page, body, err := p.fetchPage(ctx, token, channelID, cursor)
		if err != nil {
			return result, err
		}
		result.Append(page)
		log.Infof("list length is %d and http status is %d", result.Len(), page.StatusCode)
		if p.observer != nil {
			p.observer.PageFetched(page, result.Len())
		}

		if !page.IsAcceptedStatus() {
			stopErr := gerror.NewErrUnexpectedStatus(page.StatusCode, truncate(body, maxLoggedBodyLength)).
				EDetail(gerror.DetailChannelID, channelID).
				EDetail(gerror.DetailCursor, cursor)
			log.WithField("body", truncate(body, maxLoggedBodyLength)).
				Warnf("Stopping early after %d message(s): API returned status %d", result.Len(), page.StatusCode)
			result.Finish(models.StopReasonUnexpectedStatus, stopErr)
			return result, nil
		}
		if page.Len() != p.pageSize {
			log.Debugf("Short page of %d message(s); reached the end of history", page.Len())
			result.Finish(models.StopReasonEndOfHistory, nil)
			return result, nil
		}

		cursor, err = page.Oldest()
		if err != nil {
			return result, errors.Wrapf(err, "error reading cursor from page before %s", page.Cursor)
		}
	}
}

// fetchPage requests the page of messages older than cursor, waiting out and reissuing the
// request for as long as the API reports a rate limit. Returns the page and the raw response body.
func (p *Paginator) fetchPage(ctx context.Context, token models.Token, channelID models.ChannelID, cursor models.MessageID) (*models.Page, []byte, error) {
	q := client.MessagesQuery{Before: cursor, Limit: p.pageSize}
	for {
		res, err := p.lister.ListMessages(ctx, token, channelID, q)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "error fetching messages before %s", cursor)
		}
		limited, err := p.rateLimiter.IsRateLimited(ctx, res)
		if err != nil {
			return nil, nil, err
		}
		if limited {
			if p.observer != nil {
				p.observer.RateLimited()
			}
			continue
		}
		page := models.NewPage(res.StatusCode, cursor, nil)
		if !page.IsAcceptedStatus() {
			// Error bodies are kept for diagnostics only; they are often not JSON.
			return page, res.Body, nil
		}
		messages, err := models.ParseMessages(res.Body)
		if err != nil {
			return nil, nil, gerror.NewErrMalformedResponse(res.StatusCode, err).
				IDetail(gerror.DetailCursor, cursor).
				IDetail(gerror.DetailBody, truncate(res.Body, maxLoggedBodyLength))
		}
		page.Messages = messages
		return page, res.Body, nil
	}
}

func truncate(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
