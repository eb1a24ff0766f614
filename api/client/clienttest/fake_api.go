package clienttest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// Reply is a canned response served by FakeAPI.
type Reply struct {
	Status int
	Header map[string]string
	// Body is rendered as JSON when set.
	Body interface{}
	// RawBody is written verbatim when Body is nil.
	RawBody string
}

// RecordedRequest is a request received by FakeAPI.
type RecordedRequest struct {
	ChannelID     string
	Before        string
	Limit         string
	Token         string
	Authorization string
	UserAgent     string
}

// Responder decides the reply to a request. n is the zero-based index of the request.
type Responder func(n int, req RecordedRequest) Reply

// FakeAPI is an in-process stand-in for the chat API's channel message endpoint.
type FakeAPI struct {
	Server    *httptest.Server
	responder Responder

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFakeAPI starts a fake API server that answers each request using responder.
// The server is shut down when the test completes.
func NewFakeAPI(t testing.TB, responder Responder) *FakeAPI {
	f := &FakeAPI{responder: responder}
	r := chi.NewRouter()
	r.Get("/channels/{channelID}/messages", f.listMessages)
	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// NewScriptedAPI starts a fake API server that serves replies in order. Requests beyond the end of
// the script receive a 500 so that an unexpected extra request is visible in test results.
func NewScriptedAPI(t testing.TB, replies ...Reply) *FakeAPI {
	return NewFakeAPI(t, func(n int, req RecordedRequest) Reply {
		if n >= len(replies) {
			return Reply{Status: http.StatusInternalServerError, Body: map[string]interface{}{"message": "unscripted request"}}
		}
		return replies[n]
	})
}

// URL returns the base URL of the fake API.
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// Requests returns a copy of all requests received so far, in order.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	requests := make([]RecordedRequest, len(f.requests))
	copy(requests, f.requests)
	return requests
}

func (f *FakeAPI) listMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := RecordedRequest{
		ChannelID:     chi.URLParam(r, "channelID"),
		Before:        q.Get("before"),
		Limit:         q.Get("limit"),
		Token:         q.Get("token"),
		Authorization: r.Header.Get("Authorization"),
		UserAgent:     r.Header.Get("User-Agent"),
	}
	f.mu.Lock()
	n := len(f.requests)
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	reply := f.responder(n, req)
	for k, v := range reply.Header {
		w.Header().Set(k, v)
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	if reply.Body != nil {
		render.Status(r, status)
		render.JSON(w, r, reply.Body)
		return
	}
	w.WriteHeader(status)
	if reply.RawBody != "" {
		_, _ = w.Write([]byte(reply.RawBody))
	}
}

// Messages returns n fake messages with descending numeric ids starting at newest, newest first.
func Messages(newest int, n int) []map[string]interface{} {
	messages := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		id := newest - i
		messages = append(messages, map[string]interface{}{
			"id":      strconv.Itoa(id),
			"content": fmt.Sprintf("message %d", id),
		})
	}
	return messages
}

// ChannelHistory returns a Responder serving a channel containing messages with ids 1..total.
// Each request returns up to limit messages older than "before", newest first.
func ChannelHistory(total int) Responder {
	ids := make([]int, total)
	for i := range ids {
		ids[i] = i + 1
	}
	return func(n int, req RecordedRequest) Reply {
		before, err := strconv.Atoi(req.Before)
		if err != nil {
			before = total + 1
		}
		limit, err := strconv.Atoi(req.Limit)
		if err != nil || limit <= 0 {
			limit = 50
		}
		// Number of messages with id < before
		older := sort.SearchInts(ids, before)
		count := limit
		if older < count {
			count = older
		}
		return Reply{Status: http.StatusOK, Body: Messages(older, count)}
	}
}

// RateLimited returns a 429 reply carrying retry_after in the body.
func RateLimited(retryAfterSeconds float64) Reply {
	return Reply{
		Status: http.StatusTooManyRequests,
		Body: map[string]interface{}{
			"message":     "You are being rate limited.",
			"retry_after": retryAfterSeconds,
			"global":      false,
		},
	}
}

// BucketExhausted returns a reply whose headers say no requests remain until Retry-After passes.
func BucketExhausted(retryAfter string, body interface{}) Reply {
	return Reply{
		Status: http.StatusOK,
		Header: map[string]string{
			"X-RateLimit-Remaining": "0",
			"Retry-After":           retryAfter,
		},
		Body: body,
	}
}
