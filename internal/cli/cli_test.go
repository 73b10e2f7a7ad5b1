package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florinato/mongoagent/internal/agent"
	"github.com/florinato/mongoagent/internal/audit"
	"github.com/florinato/mongoagent/internal/executor"
	"github.com/florinato/mongoagent/internal/llm"
	"github.com/florinato/mongoagent/internal/service"
)

type echoExecutor struct{ ran []string }

func (e *echoExecutor) Execute(_ context.Context, command string) (*executor.Result, error) {
	e.ran = append(e.ran, command)
	return &executor.Result{Stdout: "result of " + command}, nil
}

func newTestService(t *testing.T, replies ...string) (*service.Service, *echoExecutor) {
	t.Helper()
	exec := &echoExecutor{}
	a, err := agent.New(llm.NewMockClient(replies...), exec, agent.WithSystemPrompt("test"))
	require.NoError(t, err)
	return service.New(a), exec
}

func TestConverse_PrintsCommandsAndAnswer(t *testing.T) {
	svc, exec := newTestService(t, "run-command: db.users.countDocuments()", "final-answer: 42 users")
	id := svc.CreateSession()

	var out bytes.Buffer
	res, err := converse(context.Background(), svc, id, "how many users?", alwaysConfirm, newPrinter(&out))
	require.NoError(t, err)
	assert.Equal(t, agent.StatusCompleted, res.Status)
	assert.Equal(t, []string{"db.users.countDocuments()"}, exec.ran)

	text := out.String()
	assert.Contains(t, text, "> db.users.countDocuments()")
	assert.Contains(t, text, "result of db.users.countDocuments()")
	assert.Contains(t, text, "42 users")
}

func TestConverse_Confirmation(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		svc, exec := newTestService(t, "run-command: db.tmp.drop()", "final-answer: gone")
		id := svc.CreateSession()

		var asked []string
		confirm := func(cmd string) (bool, error) {
			asked = append(asked, cmd)
			return true, nil
		}

		var out bytes.Buffer
		res, err := converse(context.Background(), svc, id, "drop tmp", confirm, newPrinter(&out))
		require.NoError(t, err)
		assert.Equal(t, agent.StatusCompleted, res.Status)
		assert.Equal(t, []string{"db.tmp.drop()"}, asked)
		assert.Equal(t, []string{"db.tmp.drop()"}, exec.ran)
		assert.Contains(t, out.String(), "Confirmation required")
	})

	t.Run("declined", func(t *testing.T) {
		svc, exec := newTestService(t, "run-command: db.tmp.drop()")
		id := svc.CreateSession()

		var out bytes.Buffer
		res, err := converse(context.Background(), svc, id, "drop tmp", func(string) (bool, error) { return false, nil }, newPrinter(&out))
		require.NoError(t, err)
		assert.Equal(t, agent.StatusCancelled, res.Status)
		assert.Empty(t, exec.ran)
	})

	t.Run("prompt error declines", func(t *testing.T) {
		svc, exec := newTestService(t, "run-command: db.tmp.drop()")
		id := svc.CreateSession()

		var out bytes.Buffer
		res, err := converse(context.Background(), svc, id, "drop tmp", func(string) (bool, error) {
			return true, errors.New("no terminal")
		}, newPrinter(&out))
		require.NoError(t, err)
		assert.Equal(t, agent.StatusCancelled, res.Status)
		assert.Empty(t, exec.ran)
	})
}

func TestConverse_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := converse(context.Background(), svc, "missing", "hi", alwaysConfirm, newPrinter(&bytes.Buffer{}))
	assert.Error(t, err)
}

func TestPrinter_PlainWhenNotTerminal(t *testing.T) {
	var out bytes.Buffer
	p := newPrinter(&out)
	assert.False(t, p.color)
	assert.Nil(t, p.md)

	p.command("db.users.find({})")
	p.result(&agent.Result{Status: agent.StatusError, Message: "boom"})
	assert.Contains(t, out.String(), "> db.users.find({})")
	assert.Contains(t, out.String(), "Error: boom")
}

func TestIsExitWord(t *testing.T) {
	for _, w := range []string{"exit", "QUIT", " salir "} {
		assert.True(t, isExitWord(w), w)
	}
	for _, w := range []string{"", "exit now", "show dbs"} {
		assert.False(t, isExitWord(w), w)
	}
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, int64(15), parseValue("15"))
	assert.Equal(t, 2.5, parseValue("2.5"))
	assert.Equal(t, "anthropic", parseValue("anthropic"))
}

func TestSetConfigValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mongoagent", "mongoagent.jsonc")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{
		// comment
		"llm": {"provider": "gemini"}
	}`), 0o644))

	require.NoError(t, setConfigValue(path, "agent.max_iterations", int64(15)))
	require.NoError(t, setConfigValue(path, "llm.provider", "anthropic"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"llm":{"provider":"anthropic"},"agent":{"max_iterations":15}}`, string(data))
}

func TestSetConfigValue_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mongoagent.jsonc")
	require.NoError(t, setConfigValue(path, "mongo.binary", "/opt/mongosh"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"mongo":{"binary":"/opt/mongosh"}}`, string(data))
}

func TestRenderAudit(t *testing.T) {
	var out bytes.Buffer
	renderAudit(&out, []audit.Entry{
		{SessionID: "0192aaaa-bbbb-7ccc-8ddd-eeeeffff0001", Command: "db.tmp.drop()", Outcome: audit.OutcomeDeclined, Keywords: "drop", Time: time.Now()},
		{SessionID: "s2", Command: "show dbs", Outcome: audit.OutcomeExecuted, Time: time.Now()},
	})
	text := out.String()
	assert.Contains(t, text, "OUTCOME")
	assert.Contains(t, text, "declined")
	assert.Contains(t, text, "ffff0001")
	assert.Contains(t, text, "show dbs")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
