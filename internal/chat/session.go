package chat

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/MikeSquared-Agency/callscribe/internal/gemini"
	"github.com/MikeSquared-Agency/callscribe/internal/results"
)

// PingMessage is sent once before the loop starts to check the API is reachable.
const PingMessage = "Hello, can you hear me?"

const entryTimeLayout = "2006-01-02 15:04:05"

type Model interface {
	Chat(ctx context.Context, turns []gemini.Turn) (string, error)
}

// Entry is one line of a saved conversation. Exactly one of User and AI is set.
type Entry struct {
	Timestamp string `json:"timestamp"`
	User      string `json:"user,omitempty"`
	AI        string `json:"ai,omitempty"`
}

// Session keeps the turns sent to the model and the history saved on exit.
type Session struct {
	model   Model
	turns   []gemini.Turn
	history []Entry
	now     func() time.Time
}

func NewSession(model Model) *Session {
	return &Session{model: model, now: time.Now}
}

// Ping checks connectivity without touching the conversation.
func (s *Session) Ping(ctx context.Context) error {
	_, err := s.model.Chat(ctx, []gemini.Turn{{Role: gemini.RoleUser, Text: PingMessage}})
	return err
}

// Send records the message, sends the whole conversation and returns the reply. A failed
// request keeps the message in the saved history but not in the turns sent next time.
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	s.history = append(s.history, Entry{Timestamp: s.stamp(), User: message})

	turns := append(append([]gemini.Turn(nil), s.turns...), gemini.Turn{Role: gemini.RoleUser, Text: message})
	reply, err := s.model.Chat(ctx, turns)
	if err != nil {
		return "", err
	}

	s.turns = append(turns, gemini.Turn{Role: gemini.RoleModel, Text: reply})
	s.history = append(s.history, Entry{Timestamp: s.stamp(), AI: reply})
	return reply, nil
}

// Clear forgets the conversation.
func (s *Session) Clear() {
	s.turns = nil
	s.history = nil
}

func (s *Session) History() []Entry {
	return s.history
}

// Save writes the history to conversation_<YYYYMMDD_HHMMSS>.json under dir. An empty
// history writes nothing and returns "".
func (s *Session) Save(dir string) (string, error) {
	if len(s.history) == 0 {
		return "", nil
	}
	name := fmt.Sprintf("conversation_%s.json", s.now().Format(results.FileTimeLayout))
	return results.WriteJSON(filepath.Join(dir, name), s.history)
}

func (s *Session) stamp() string {
	return s.now().Format(entryTimeLayout)
}
