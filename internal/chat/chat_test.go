package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/callscribe/internal/gemini"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeModel struct {
	replies []string
	errs    []error
	sent    [][]gemini.Turn
}

func (f *fakeModel) Chat(_ context.Context, turns []gemini.Turn) (string, error) {
	f.sent = append(f.sent, append([]gemini.Turn(nil), turns...))
	i := len(f.sent) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "ok", nil
}

type scriptedInput struct {
	lines []string
}

func (s *scriptedInput) ReadLine(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC) }
}

func TestSession_SendCarriesHistory(t *testing.T) {
	model := &fakeModel{replies: []string{"Hi there", "Paris"}}
	s := NewSession(model)

	reply, err := s.Send(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", reply)

	_, err = s.Send(context.Background(), "capital of France?")
	require.NoError(t, err)

	require.Len(t, model.sent, 2)
	assert.Equal(t, []gemini.Turn{
		{Role: gemini.RoleUser, Text: "hello"},
		{Role: gemini.RoleModel, Text: "Hi there"},
		{Role: gemini.RoleUser, Text: "capital of France?"},
	}, model.sent[1])
	assert.Len(t, s.History(), 4)
}

func TestSession_FailedSendKeepsAlternation(t *testing.T) {
	model := &fakeModel{errs: []error{errors.New("503")}, replies: []string{"", "second"}}
	s := NewSession(model)

	_, err := s.Send(context.Background(), "first")
	require.Error(t, err)

	_, err = s.Send(context.Background(), "again")
	require.NoError(t, err)

	assert.Equal(t, []gemini.Turn{{Role: gemini.RoleUser, Text: "again"}}, model.sent[1])
	require.Len(t, s.History(), 3)
	assert.Equal(t, "first", s.History()[0].User)
	assert.Equal(t, "second", s.History()[2].AI)
}

func TestSession_PingIsNotRecorded(t *testing.T) {
	model := &fakeModel{}
	s := NewSession(model)

	require.NoError(t, s.Ping(context.Background()))
	assert.Equal(t, PingMessage, model.sent[0][0].Text)
	assert.Empty(t, s.History())
}

func TestSession_Save(t *testing.T) {
	dir := t.TempDir()
	s := NewSession(&fakeModel{replies: []string{"pong"}})
	s.now = fixedClock()

	_, err := s.Send(context.Background(), "ping")
	require.NoError(t, err)

	path, err := s.Save(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conversation_20260301_090507.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]string
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Equal(t, []map[string]string{
		{"timestamp": "2026-03-01 09:05:07", "user": "ping"},
		{"timestamp": "2026-03-01 09:05:07", "ai": "pong"},
	}, entries)
}

func TestSession_SaveEmptyWritesNothing(t *testing.T) {
	dir := t.TempDir()
	s := NewSession(&fakeModel{})

	path, err := s.Save(dir)
	require.NoError(t, err)
	assert.Empty(t, path)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestREPL_Conversation(t *testing.T) {
	dir := t.TempDir()
	model := &fakeModel{replies: []string{"Hello!", "Sure"}}
	s := NewSession(model)
	s.now = fixedClock()
	var out bytes.Buffer

	r := NewREPL(s, &scriptedInput{lines: []string{"hi", "", "  ", "help me", "BYE", "never sent"}}, &out, dir, discardLogger())
	require.NoError(t, r.Run(context.Background()))

	assert.Len(t, model.sent, 2)
	assert.Contains(t, out.String(), "Gemini: Hello!")
	assert.Contains(t, out.String(), "Gemini: Sure")
	assert.Contains(t, out.String(), "Goodbye!")
	assert.Contains(t, out.String(), "Conversation saved to:")

	_, err := os.Stat(filepath.Join(dir, "conversation_20260301_090507.json"))
	assert.NoError(t, err)
}

func TestREPL_ClearEmptiesHistory(t *testing.T) {
	dir := t.TempDir()
	model := &fakeModel{}
	s := NewSession(model)
	var out bytes.Buffer

	r := NewREPL(s, &scriptedInput{lines: []string{"one", "clear", "quit"}}, &out, dir, discardLogger())
	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, out.String(), "Conversation history cleared!")
	assert.Empty(t, s.History())
	assert.NotContains(t, out.String(), "Conversation saved to:")
}

func TestREPL_ErrorsContinue(t *testing.T) {
	model := &fakeModel{errs: []error{errors.New("timeout")}, replies: []string{"", "fine"}}
	var out bytes.Buffer

	r := NewREPL(NewSession(model), &scriptedInput{lines: []string{"a", "b"}}, &out, t.TempDir(), discardLogger())
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 1, strings.Count(out.String(), "couldn't process your request"))
	assert.Contains(t, out.String(), "Gemini: fine")
}
