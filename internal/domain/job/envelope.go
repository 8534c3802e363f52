package job

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownKind   = errors.New("unknown job kind")
	ErrInvalidCursor = errors.New("invalid batch cursor")
)

// Kind discriminates the queued job payloads. Sweep kinds carry a cursor and
// chain themselves page by page; one-shot kinds run a single pass.
type Kind string

const (
	KindTrialExpire Kind = "trial.expire"
	KindCancelSweep Kind = "subscription.cancel"
	KindDailyPrompt Kind = "prompt.daily"
	KindMemberStats Kind = "member.stats"
)

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	switch k {
	case KindTrialExpire, KindCancelSweep, KindDailyPrompt, KindMemberStats:
		return true
	default:
		return false
	}
}

func NewKind(s string) (Kind, error) {
	kind := Kind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return kind, nil
}

// Envelope is the JSON message placed on the job queue. The kind tag is
// validated at the boundary so runners never see a shape they don't expect.
type Envelope struct {
	Kind   Kind   `json:"kind"`
	Cursor Cursor `json:"cursor"`
}

func NewEnvelope(kind Kind, cursor Cursor) (Envelope, error) {
	if !kind.IsValid() {
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := cursor.Validate(); err != nil {
		return Envelope{}, err
	}
	return Envelope{Kind: kind, Cursor: cursor}, nil
}

func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses and validates a queued payload. Unknown kinds and
// malformed cursors are rejected here, before any runner is invoked.
func DecodeEnvelope(payload []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(payload, &e); err != nil {
		return Envelope{}, fmt.Errorf("malformed job payload: %w", err)
	}
	if !e.Kind.IsValid() {
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	if err := e.Cursor.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}
