package models

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buildbeaver/chatdl/common/gerror"
)

func TestMessageID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    MessageID
		wantErr bool
	}{
		{name: "string id", raw: `{"id": "175928847299117063", "content": "hi"}`, want: "175928847299117063"},
		{name: "numeric id", raw: `{"id": 12345678901234567890}`, want: "12345678901234567890"},
		{name: "missing id", raw: `{"content": "hi"}`, wantErr: true},
		{name: "null id", raw: `{"id": null}`, wantErr: true},
		{name: "empty id", raw: `{"id": ""}`, wantErr: true},
		{name: "object id", raw: `{"id": {"a": 1}}`, wantErr: true},
		{name: "not an object", raw: `[1, 2]`, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			id, err := Message(test.raw).ID()
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.want, id)
		})
	}
}

func TestMissingIDIsValidationError(t *testing.T) {
	_, err := Message(`{}`).ID()
	require.True(t, gerror.IsValidationFailed(err))
}

func TestParseMessages(t *testing.T) {
	messages, err := ParseMessages([]byte(`[{"id": "3", "z": 1, "a": 2}, {"id": "2"}]`))
	require.NoError(t, err)
	require.Len(t, messages, 2)
	// Field order and formatting of each record is preserved
	require.Equal(t, `{"id": "3", "z": 1, "a": 2}`, string(messages[0]))

	messages, err = ParseMessages(nil)
	require.NoError(t, err)
	require.Empty(t, messages)

	messages, err = ParseMessages([]byte("  \n"))
	require.NoError(t, err)
	require.Empty(t, messages)

	messages, err = ParseMessages([]byte(`{"message": "Missing Access", "code": 50001}`))
	require.NoError(t, err)
	require.Empty(t, messages)

	_, err = ParseMessages([]byte(`<html>Bad Gateway</html>`))
	require.Error(t, err)
}

func TestMessageRoundTripKeepsRawBytes(t *testing.T) {
	messages, err := ParseMessages([]byte(`[{"id":"1","n":1.50}]`))
	require.NoError(t, err)
	out, err := json.Marshal(messages)
	require.NoError(t, err)
	require.Equal(t, `[{"id":"1","n":1.50}]`, string(out))
}

func TestResultSet(t *testing.T) {
	rs := NewResultSet("chan")
	require.Nil(t, rs.Last())
	require.NotNil(t, rs.Messages())
	require.Equal(t, 0, rs.Len())

	first := NewPage(http.StatusOK, "100", []Message{Message(`{"id":"99"}`), Message(`{"id":"98"}`)})
	second := NewPage(http.StatusOK, "98", []Message{Message(`{"id":"97"}`)})
	rs.Append(first)
	rs.Append(second)

	require.Equal(t, 3, rs.Len())
	require.Len(t, rs.Pages(), 2)
	require.Same(t, second, rs.Last())
	ids := []MessageID{}
	for _, m := range rs.Messages() {
		id, err := m.ID()
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.Equal(t, []MessageID{"99", "98", "97"}, ids)

	oldest, err := first.Oldest()
	require.NoError(t, err)
	require.Equal(t, MessageID("98"), oldest)

	_, err = NewPage(http.StatusOK, "1", nil).Oldest()
	require.Error(t, err)

	require.False(t, rs.Complete())
	rs.Finish(StopReasonEndOfHistory, nil)
	require.True(t, rs.Complete())
	require.NoError(t, rs.StopError())

	stopped := NewResultSet("chan")
	stopped.Append(NewPage(http.StatusForbidden, "100", nil))
	stopped.Finish(StopReasonUnexpectedStatus, gerror.NewErrUnexpectedStatus(http.StatusForbidden, ""))
	require.False(t, stopped.Complete())
	require.True(t, gerror.IsUnexpectedStatus(stopped.StopError()))
	require.Equal(t, StopReasonUnexpectedStatus, stopped.StopReason())
}

func TestPageAcceptedStatus(t *testing.T) {
	require.True(t, NewPage(http.StatusOK, "", nil).IsAcceptedStatus())
	require.True(t, NewPage(http.StatusTooManyRequests, "", nil).IsAcceptedStatus())
	require.False(t, NewPage(http.StatusForbidden, "", nil).IsAcceptedStatus())
	require.False(t, NewPage(http.StatusInternalServerError, "", nil).IsAcceptedStatus())
}
