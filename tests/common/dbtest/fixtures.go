//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// bcrypt hash of "password123"
const testPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

func CreateTestOperator(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	operatorID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO operators (id, email, password_hash, role, is_active) VALUES ($1, $2, $3, $4, true) ON CONFLICT (email) DO NOTHING",
		operatorID, email, testPasswordHash, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM operators WHERE email = $1", email).Scan(&operatorID)
	}

	return operatorID
}

func CreateTestMember(t *testing.T, db DBLike, email, tier string, trialEndsAt *time.Time) uuid.UUID {
	t.Helper()

	memberID := uuid.New()
	ctx := context.Background()

	var trialStartedAt *time.Time
	if trialEndsAt != nil {
		started := trialEndsAt.AddDate(0, 0, -14)
		trialStartedAt = &started
	}

	_, err := db.Exec(ctx, `INSERT INTO members (id, email, display_name, tier, trial_started_at, trial_ends_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		memberID, email, "Test Member", tier, trialStartedAt, trialEndsAt)
	require.NoError(t, err)

	return memberID
}

func CreateTestPrompt(t *testing.T, db DBLike, question string, scheduledDate time.Time) uuid.UUID {
	t.Helper()

	promptID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx, "INSERT INTO prompts (id, question, scheduled_date) VALUES ($1, $2, $3::date)",
		promptID, question, scheduledDate)
	require.NoError(t, err)

	return promptID
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	// A known admin account so every suite can log in
	_, err := pool.Exec(ctx, `
		INSERT INTO operators (id, email, password_hash, role, is_active) VALUES
		    (gen_random_uuid(), 'admin@example.com', '`+testPasswordHash+`', 'admin', true)
		ON CONFLICT (email) DO NOTHING;
	`)
	if err != nil {
		return err
	}

	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
