package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buildbeaver/chatdl/api/client/clienttest"
	"github.com/buildbeaver/chatdl/common/gerror"
)

const usageLine = "Usage: chatdl [token] [channelId] [lastMessageId]"

func execute(t *testing.T, args ...string) (string, string, error) {
	cmd := NewRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	// A nil slice would make cobra fall back to os.Args
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func readMessages(t *testing.T, path string) []map[string]interface{} {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var messages []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &messages))
	return messages
}

func TestUsageWithoutArguments(t *testing.T) {
	api := clienttest.NewScriptedAPI(t)
	for _, args := range [][]string{
		nil,
		{"--base-url", api.URL()},
		{"--base-url", api.URL(), "-h"},
		{"--base-url", api.URL(), "--help"},
		{"--base-url", api.URL(), "-h", "secret", "42", "10"},
	} {
		stdout, _, err := execute(t, args...)
		require.NoError(t, err)
		require.Contains(t, stdout, usageLine)
		require.Contains(t, stdout, "--output")
	}
	require.Empty(t, api.Requests())
}

func TestWrongArgumentCount(t *testing.T) {
	api := clienttest.NewScriptedAPI(t)
	for _, args := range [][]string{{"token"}, {"token", "channel"}, {"a", "b", "c", "d"}} {
		_, stderr, err := execute(t, append([]string{"--base-url", api.URL()}, args...)...)
		require.Error(t, err)
		require.Contains(t, stderr, usageLine)
	}
	require.Empty(t, api.Requests())
}

func TestDownload(t *testing.T) {
	api := clienttest.NewFakeAPI(t, clienttest.ChannelHistory(120))
	output := filepath.Join(t.TempDir(), "chat.json")

	_, _, err := execute(t, "--base-url", api.URL(), "--output", output, "secret", "42", "121")
	require.NoError(t, err)

	messages := readMessages(t, output)
	require.Len(t, messages, 120)
	require.Equal(t, "120", messages[0]["id"])

	requests := api.Requests()
	require.Len(t, requests, 2)
	require.Equal(t, "42", requests[0].ChannelID)
	require.Equal(t, "121", requests[0].Before)
	require.Equal(t, "21", requests[1].Before)
	require.Equal(t, "secret", requests[0].Token)
	require.Contains(t, requests[0].UserAgent, "chatdl")
}

func TestDownloadWithBotAuthAndPageSize(t *testing.T) {
	api := clienttest.NewFakeAPI(t, clienttest.ChannelHistory(3))
	output := filepath.Join(t.TempDir(), "chat.json")

	_, _, err := execute(t, "--base-url", api.URL(), "--output", output,
		"--auth-scheme", "bot", "--limit", "2", "secret", "42", "4")
	require.NoError(t, err)
	require.Len(t, readMessages(t, output), 3)

	requests := api.Requests()
	require.Len(t, requests, 2)
	require.Equal(t, "2", requests[0].Limit)
	require.Equal(t, "", requests[0].Token)
	require.Equal(t, "Bot secret", requests[0].Authorization)
}

func TestUnexpectedStatus(t *testing.T) {
	reply := clienttest.Reply{Status: http.StatusForbidden, Body: map[string]interface{}{"message": "Missing Access", "code": 50001}}

	api := clienttest.NewScriptedAPI(t, reply)
	output := filepath.Join(t.TempDir(), "chat.json")
	_, _, err := execute(t, "--base-url", api.URL(), "--output", output, "secret", "42", "10")
	require.NoError(t, err)
	require.Empty(t, readMessages(t, output))

	api = clienttest.NewScriptedAPI(t, reply)
	output = filepath.Join(t.TempDir(), "chat.json")
	_, _, err = execute(t, "--base-url", api.URL(), "--output", output, "--strict", "secret", "42", "10")
	require.Error(t, err)
	require.True(t, gerror.IsUnexpectedStatus(err))
	require.Empty(t, readMessages(t, output))
}

func TestInvalidFlags(t *testing.T) {
	api := clienttest.NewScriptedAPI(t)
	_, _, err := execute(t, "--base-url", api.URL(), "--limit", "500", "--auth-scheme", "cookie", "secret", "42", "10")
	require.Error(t, err)
	require.True(t, gerror.IsValidationFailed(err))
	require.Contains(t, err.Error(), "limit")
	require.Contains(t, err.Error(), "auth scheme")
	require.Empty(t, api.Requests())
}

func TestConfigFile(t *testing.T) {
	api := clienttest.NewFakeAPI(t, clienttest.ChannelHistory(1))
	dir := t.TempDir()
	output := filepath.Join(dir, "from-config.json")
	configFile := filepath.Join(dir, "chatdl.yml")
	config := "base_url: " + api.URL() + "\noutput: " + output + "\nlimit: 10\n"
	require.NoError(t, os.WriteFile(configFile, []byte(config), 0644))

	_, _, err := execute(t, "--config", configFile, "secret", "42", "10")
	require.NoError(t, err)
	require.Len(t, readMessages(t, output), 1)
	require.Equal(t, "10", api.Requests()[0].Limit)
}
