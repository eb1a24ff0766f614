package models

import (
	"net/http"

	"github.com/pkg/errors"
)

// Page is the list of messages returned by a single request, newest first.
type Page struct {
	// StatusCode is the HTTP status of the response the page was read from.
	StatusCode int
	// Cursor is the "before" value the page was requested with.
	Cursor   MessageID
	Messages []Message
}

func NewPage(statusCode int, cursor MessageID, messages []Message) *Page {
	return &Page{
		StatusCode: statusCode,
		Cursor:     cursor,
		Messages:   messages,
	}
}

func (p *Page) Len() int {
	return len(p.Messages)
}

// Oldest returns the id of the last (oldest) message in the page. This is the cursor for the next request.
func (p *Page) Oldest() (MessageID, error) {
	if len(p.Messages) == 0 {
		return "", errors.New("error page has no messages")
	}
	return p.Messages[len(p.Messages)-1].ID()
}

// IsAcceptedStatus returns true if the page's status allows paging to continue.
func (p *Page) IsAcceptedStatus() bool {
	return p.StatusCode == http.StatusOK || p.StatusCode == http.StatusTooManyRequests
}

// StopReason records why a download finished.
type StopReason string

const (
	StopReasonNone             StopReason = ""
	StopReasonEndOfHistory     StopReason = "end_of_history"
	StopReasonUnexpectedStatus StopReason = "unexpected_status"
)

func (r StopReason) String() string {
	return string(r)
}

// ResultSet accumulates pages in the order they were fetched. Pages are never modified once appended.
type ResultSet struct {
	ChannelID  ChannelID
	pages      []*Page
	count      int
	stopReason StopReason
	stopErr    error
}

func NewResultSet(channelID ChannelID) *ResultSet {
	return &ResultSet{ChannelID: channelID}
}

// Append adds a page to the end of the result set.
func (r *ResultSet) Append(page *Page) {
	r.pages = append(r.pages, page)
	r.count += page.Len()
}

// Pages returns the pages in fetch order.
func (r *ResultSet) Pages() []*Page {
	pages := make([]*Page, len(r.pages))
	copy(pages, r.pages)
	return pages
}

// Len returns the total number of messages across all pages.
func (r *ResultSet) Len() int {
	return r.count
}

// Messages returns all messages in fetch order, which is newest first overall.
// The returned slice is never nil.
func (r *ResultSet) Messages() []Message {
	messages := make([]Message, 0, r.count)
	for _, page := range r.pages {
		messages = append(messages, page.Messages...)
	}
	return messages
}

// Last returns the most recently appended page, or nil if the result set is empty.
func (r *ResultSet) Last() *Page {
	if len(r.pages) == 0 {
		return nil
	}
	return r.pages[len(r.pages)-1]
}

func (r *ResultSet) StopReason() StopReason {
	return r.stopReason
}

// StopError returns the error describing an early stop, or nil if the download reached the end of history.
func (r *ResultSet) StopError() error {
	return r.stopErr
}

// Finish records why paging stopped. cause describes an early stop and may be nil.
func (r *ResultSet) Finish(reason StopReason, cause error) {
	r.stopReason = reason
	r.stopErr = cause
}

// Complete returns true if the download reached the end of the channel history.
func (r *ResultSet) Complete() bool {
	return r.stopReason == StopReasonEndOfHistory
}
