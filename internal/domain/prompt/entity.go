package prompt

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyQuestion   = errors.New("prompt question cannot be empty")
	ErrQuestionTooLong = errors.New("prompt question exceeds maximum length")
)

const maxQuestionLength = 500

// ReflectionPrompt is a journaling question scheduled for a calendar date.
type ReflectionPrompt struct {
	id            uuid.UUID
	question      string
	scheduledDate *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func NewReflectionPrompt(question string, scheduledDate *time.Time, now time.Time) (*ReflectionPrompt, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if len(question) > maxQuestionLength {
		return nil, ErrQuestionTooLong
	}
	return &ReflectionPrompt{
		id:            uuid.New(),
		question:      question,
		scheduledDate: scheduledDate,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructPrompt(id uuid.UUID, question string, scheduledDate *time.Time, createdAt, updatedAt time.Time) *ReflectionPrompt {
	return &ReflectionPrompt{
		id:            id,
		question:      question,
		scheduledDate: scheduledDate,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (p *ReflectionPrompt) ID() uuid.UUID             { return p.id }
func (p *ReflectionPrompt) Question() string          { return p.question }
func (p *ReflectionPrompt) ScheduledDate() *time.Time { return p.scheduledDate }
func (p *ReflectionPrompt) CreatedAt() time.Time      { return p.createdAt }
func (p *ReflectionPrompt) UpdatedAt() time.Time      { return p.updatedAt }

// Medium is the channel a prompt was delivered over.
type Medium string

const (
	MediumPush  Medium = "push"
	MediumEmail Medium = "email"
)

// SentPrompt records that a prompt reached a member on a given date.
// The (member, prompt, date) triple is unique; repeated sends update
// LastSentAt rather than inserting a second row.
type SentPrompt struct {
	MemberID    uuid.UUID
	PromptID    uuid.UUID
	SentDate    time.Time
	Medium      Medium
	FirstSentAt time.Time
	LastSentAt  time.Time
}
