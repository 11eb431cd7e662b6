package cmds

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-go-golems/confab/pkg/server"
	"github.com/go-go-golems/confab/pkg/settings"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// configure points the global settings at a fresh file store and apiURL.
func configure(t *testing.T, apiURL string) {
	t.Helper()
	viper.Reset()
	settings.SetDefaults(viper.GetViper())
	viper.Set("store", "file")
	viper.Set("store-path", t.TempDir())
	viper.Set("api-url", apiURL)
	t.Cleanup(viper.Reset)
}

// execute runs cmd and returns what it wrote. Structured output goes
// straight to os.Stdout, so that is captured as well.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	stdout := captureStdout(t)
	err := cmd.ExecuteContext(context.Background())
	return out.String() + stdout(), err
}

func captureStdout(t *testing.T) func() string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w

	done := make(chan string, 1)
	go func() {
		b, _ := io.ReadAll(r)
		done <- string(b)
	}()
	return func() string {
		os.Stdout = orig
		_ = w.Close()
		ret := <-done
		_ = r.Close()
		return ret
	}
}

func exportedRows(t *testing.T, out string) []map[string]interface{} {
	t.Helper()
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &rows), out)
	return rows
}

func TestSendAndHistory(t *testing.T) {
	ts := httptest.NewServer(server.New().Handler())
	defer ts.Close()
	configure(t, ts.URL)

	out, err := execute(t, NewSendCommand(), "hello")
	require.NoError(t, err)
	require.Contains(t, out, "Welcome to Customer Support")

	out, err = execute(t, NewHistoryCommand(), "export", "--output", "json")
	require.NoError(t, err)
	rows := exportedRows(t, out)
	require.Len(t, rows, 1)
	require.Equal(t, "hello", rows[0]["title"])
	id, ok := rows[0]["id"].(string)
	require.True(t, ok)

	out, err = execute(t, NewSendCommand(), "--continue", id, "what", "is", "the", "refund", "time")
	require.NoError(t, err)
	require.Contains(t, out, "Refunds are processed")

	out, err = execute(t, NewHistoryCommand(), "show", id)
	require.NoError(t, err)
	require.Equal(t, 4, strings.Count(out, "\n["))

	out, err = execute(t, NewHistoryCommand(), "export", "--output", "json", id)
	require.NoError(t, err)
	rows = exportedRows(t, out)
	require.Len(t, rows, 1)
	messages, ok := rows[0]["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 4)

	out, err = execute(t, NewHistoryCommand(), "export", "--output", "yaml")
	require.NoError(t, err)
	require.Contains(t, out, "title: hello")

	out, err = execute(t, NewHistoryCommand(), "list")
	require.NoError(t, err)
	require.Contains(t, out, id)

	out, err = execute(t, NewHistoryCommand(), "delete", id)
	require.NoError(t, err)
	require.Contains(t, out, "deleted "+id)

	out, err = execute(t, NewHistoryCommand(), "list")
	require.NoError(t, err)
	require.NotContains(t, out, id)
}

func TestSend_ServerDown(t *testing.T) {
	configure(t, "http://127.0.0.1:1")

	out, err := execute(t, NewSendCommand(), "hi")
	require.Error(t, err)
	require.Contains(t, out, "Server error")

	out, err = execute(t, NewHistoryCommand(), "list")
	require.NoError(t, err)
	require.Contains(t, out, "hi")
}

func TestLoginAndLogout(t *testing.T) {
	db, err := server.OpenUserDB(t.TempDir() + "/users.db")
	require.NoError(t, err)
	ts := httptest.NewServer(server.New(server.WithUsers(server.NewUsers(db))).Handler())
	defer ts.Close()
	configure(t, ts.URL)

	signup := NewSignupCommand()
	signup.SetIn(strings.NewReader("Grace\ngrace@example.com\nhopper-pw\n"))
	out, err := execute(t, signup)
	require.NoError(t, err)
	require.Contains(t, out, "Signed in as Grace <grace@example.com>")

	_, err = execute(t, NewLoginCommand(), "--email", "grace@example.com", "--password", "nope")
	require.Error(t, err)

	out, err = execute(t, NewLogoutCommand())
	require.NoError(t, err)
	require.Contains(t, out, "Logged out")
}

func TestConfigPrintsYAML(t *testing.T) {
	configure(t, "echo")
	out, err := execute(t, NewConfigCommand())
	require.NoError(t, err)
	require.Contains(t, out, "api-url: echo")
}

func TestCredentialsPrompt(t *testing.T) {
	var out bytes.Buffer
	c := &credentials{}
	err := c.prompt(strings.NewReader("Grace\n grace@example.com \nhopper-pw\n"), &out, true)
	require.NoError(t, err)
	require.Equal(t, "Grace", c.name)
	require.Equal(t, "grace@example.com", c.email)
	require.Equal(t, "hopper-pw", c.password)
	require.Contains(t, out.String(), "Password")

	// flags already given are not asked for
	out.Reset()
	c = &credentials{email: "ada@example.com", password: "pw"}
	require.NoError(t, c.prompt(strings.NewReader(""), &out, false))
	require.NotContains(t, out.String(), "Email")

	c = &credentials{}
	err = c.prompt(strings.NewReader("ada@example.com\n"), &out, false)
	require.Error(t, err)
}
