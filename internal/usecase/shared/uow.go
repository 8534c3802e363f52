package shared

import (
	"context"
	"time"

	"journal-backend/internal/domain/member"
	"journal-backend/internal/domain/prompt"
	"journal-backend/internal/infra/db"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Members() MemberRepository
	Prompts() PromptRepository
	SentPrompts() SentPromptRepository
	JobQueue() JobQueueRepository
	Operators() OperatorRepository
	MemberStats() MemberStatsRepository
	Reads() CommandReads
	DB() db.DBTX
}

type CommandReads interface {
	MemberByID(ctx context.Context, id uuid.UUID) (*MemberSnapshot, error)
	MemberByEmail(ctx context.Context, email string) (*MemberSnapshot, error)
	PromptForDate(ctx context.Context, date time.Time) (*PromptSnapshot, error)
}

type MemberRepository interface {
	Create(ctx context.Context, tx db.DBTX, m *member.Member) (uuid.UUID, error)
	Update(ctx context.Context, tx db.DBTX, m *member.Member) error
	FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*member.Member, error)
	FindByIDForUpdate(ctx context.Context, tx db.DBTX, id uuid.UUID) (*member.Member, error)
}

type PromptRepository interface {
	Create(ctx context.Context, tx db.DBTX, p *prompt.ReflectionPrompt) (uuid.UUID, error)
	Reschedule(ctx context.Context, tx db.DBTX, promptID uuid.UUID, scheduledDate *time.Time) error
}

type SentPromptRepository interface {
	// Upsert records a send for (member, prompt, date). Returns true when
	// this is the first send of the triple, false on a repeat delivery.
	Upsert(ctx context.Context, tx db.DBTX, rec *prompt.SentPrompt) (bool, error)
}

type JobQueueRepository interface {
	Enqueue(ctx context.Context, tx db.DBTX, kind string, payload []byte, runAt time.Time) (uuid.UUID, error)
	MarkCompleted(ctx context.Context, tx db.DBTX, entryID uuid.UUID) error
	MarkFailed(ctx context.Context, tx db.DBTX, entryID uuid.UUID, lastError string, terminal bool, retryAt time.Time) error
}

type OperatorRepository interface {
	UpdateLastLogin(ctx context.Context, tx db.DBTX, operatorID uuid.UUID) error
	Create(ctx context.Context, tx db.DBTX, email, passwordHash, role string) (uuid.UUID, error)
}

type MemberStatsRepository interface {
	InsertSnapshot(ctx context.Context, tx db.DBTX, snap *StatsSnapshot) error
}

// Minimal snapshots for command read operations
type MemberSnapshot struct {
	ID           uuid.UUID
	Email        string
	Tier         string
	TrialEndsAt  *time.Time
	AccessEndsAt *time.Time
}

type PromptSnapshot struct {
	ID       uuid.UUID
	Question string
	SendDate time.Time
}

type StatsSnapshot struct {
	TotalMembers    int64
	ActiveTrials    int64
	ExpiredTrials   int64
	BasicMembers    int64
	PlusMembers     int64
	PremiumMembers  int64
	CanceledMembers int64
	DeletedMembers  int64
	ComputedAt      time.Time
}
