package models

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/buildbeaver/chatdl/common/gerror"
)

// Token is the credential used to authenticate against the chat API.
type Token string

func (t Token) String() string {
	return string(t)
}

// ChannelID identifies the channel whose history is downloaded.
type ChannelID string

func (c ChannelID) String() string {
	return string(c)
}

// MessageID is the opaque, sortable identifier of a message. It doubles as the pagination cursor.
type MessageID string

func (m MessageID) String() string {
	return string(m)
}

// Message is a single message record exactly as returned by the API.
// Only the "id" field is ever inspected; everything else is carried through untouched.
type Message json.RawMessage

func (m Message) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return m, nil
}

func (m *Message) UnmarshalJSON(data []byte) error {
	if m == nil {
		return errors.New("error models.Message: UnmarshalJSON on nil pointer")
	}
	*m = append((*m)[0:0], data...)
	return nil
}

// ID returns the message's "id" field. Both JSON strings and JSON numbers are accepted.
func (m Message) ID() (MessageID, error) {
	var doc struct {
		ID json.RawMessage `json:"id"`
	}
	err := json.Unmarshal(m, &doc)
	if err != nil {
		return "", errors.Wrap(err, "error parsing message")
	}
	raw := bytes.TrimSpace(doc.ID)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", gerror.NewErrValidationFailed("error message has no id")
	}
	if raw[0] == '"' {
		var s string
		err = json.Unmarshal(raw, &s)
		if err != nil {
			return "", errors.Wrap(err, "error parsing message id")
		}
		if s == "" {
			return "", gerror.NewErrValidationFailed("error message id is empty")
		}
		return MessageID(s), nil
	}
	var n json.Number
	err = json.Unmarshal(raw, &n)
	if err != nil {
		return "", gerror.NewErrValidationFailed("error message id must be a string or a number").Wrap(err)
	}
	return MessageID(n.String()), nil
}

// ParseMessages decodes a response body into a list of messages.
// An empty body, or a JSON value that is not an array (such as an error document), yields
// zero messages. A body that is not valid JSON is an error.
func ParseMessages(body []byte) ([]Message, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, errors.New("error response body is not valid JSON")
	}
	if trimmed[0] != '[' {
		return nil, nil
	}
	var messages []Message
	err := json.Unmarshal(trimmed, &messages)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing message list")
	}
	return messages, nil
}
