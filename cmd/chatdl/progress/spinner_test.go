package progress

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buildbeaver/chatdl/common/models"
)

type fakeSpinner struct {
	messages []string
	complete bool
	failed   bool
}

func (s *fakeSpinner) UpdateMessage(message string) { s.messages = append(s.messages, message) }
func (s *fakeSpinner) Complete()                    { s.complete = true }
func (s *fakeSpinner) Error()                       { s.failed = true }

func (s *fakeSpinner) last() string {
	return s.messages[len(s.messages)-1]
}

func TestSpinnerObserver(t *testing.T) {
	s := &fakeSpinner{}
	o := newSpinnerObserver(nil, s, "42")
	require.Equal(t, "channel 42: 0 message(s), starting", s.last())

	o.PageFetched(models.NewPage(http.StatusOK, "", nil), 100)
	require.Equal(t, "channel 42: 100 message(s), last status 200", s.last())

	o.RateLimited()
	require.Equal(t, "channel 42: 100 message(s), rate limited, retrying", s.last())

	o.Finish(nil)
	require.True(t, s.complete)
	require.False(t, s.failed)
	require.Equal(t, "channel 42: 100 message(s), done", s.last())

	// Updates after finishing are ignored
	o.PageFetched(models.NewPage(http.StatusOK, "", nil), 200)
	require.Equal(t, "channel 42: 100 message(s), done", s.last())
}

func TestSpinnerObserverFailure(t *testing.T) {
	s := &fakeSpinner{}
	o := newSpinnerObserver(nil, s, "42")
	o.Finish(errors.New("boom"))
	require.True(t, s.failed)
	require.False(t, s.complete)
	require.Equal(t, "channel 42: 0 message(s), failed", s.last())
}
