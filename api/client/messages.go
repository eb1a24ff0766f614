package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"

	"github.com/buildbeaver/chatdl/common/logger"
	"github.com/buildbeaver/chatdl/common/models"
)

// MaxMessagesLimit is the largest page size the API will serve.
const MaxMessagesLimit = 100

// MessagesQuery selects a page of channel history.
type MessagesQuery struct {
	// Before returns only messages older than this id.
	Before models.MessageID `url:"before,omitempty"`
	// Limit is the maximum number of messages to return, 1-100.
	Limit int `url:"limit,omitempty"`
}

// ListMessages fetches one page of channel history. The response is returned whatever its status;
// callers decide how to treat rate limits and errors.
func (a *APIClient) ListMessages(ctx context.Context, token models.Token, channelID models.ChannelID, q MessagesQuery) (*Response, error) {
	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channelID.String()))
	values, err := query.Values(q)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding query")
	}
	res, err := a.get(ctx, token, path, values)
	if err != nil {
		return nil, err
	}
	a.log.WithFields(logger.Fields{
		"channel_id": channelID,
		"before":     q.Before,
		"status":     res.StatusCode,
		"bytes":      len(res.Body),
	}).Debug("Listed messages")
	return res, nil
}
