package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Turn is one role-tagged message of a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func SystemTurn(content string) Turn    { return Turn{Role: RoleSystem, Content: content} }
func UserTurn(content string) Turn      { return Turn{Role: RoleUser, Content: content} }
func AssistantTurn(content string) Turn { return Turn{Role: RoleAssistant, Content: content} }

// Transcript is the chronological list of turns replayed to the model.
// Turns are never reordered or removed.
type Transcript []Turn

// Append returns a new transcript with turns added at the end. The receiver's
// backing array is never shared with the result.
func (t Transcript) Append(turns ...Turn) Transcript {
	out := make(Transcript, 0, len(t)+len(turns))
	out = append(out, t...)
	return append(out, turns...)
}

func (t Transcript) Clone() Transcript {
	if t == nil {
		return Transcript{}
	}
	return t.Append()
}

// Validate reports the first turn whose role is not one of the known roles.
func (t Transcript) Validate() error {
	for i, turn := range t {
		if !turn.Role.Valid() {
			return &InvalidTurnError{Index: i, Role: turn.Role}
		}
	}
	return nil
}

// String renders the transcript for embedding inside a prompt.
func (t Transcript) String() string {
	var sb strings.Builder
	for i, turn := range t {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(string(turn.Role))
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
	}
	return sb.String()
}

// JSON renders the transcript for persistence.
func (t Transcript) JSON() string {
	if t == nil {
		t = Transcript{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// ParseTranscript decodes the persisted form produced by JSON.
func ParseTranscript(s string) (Transcript, error) {
	var t Transcript
	if strings.TrimSpace(s) == "" {
		return Transcript{}, nil
	}
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return nil, err
	}
	return t, nil
}

type InvalidTurnError struct {
	Index int
	Role  Role
}

func (e *InvalidTurnError) Error() string {
	return fmt.Sprintf("invalid role %q in history turn %d", e.Role, e.Index)
}
