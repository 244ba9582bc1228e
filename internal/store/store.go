// Package store persists synced tickets in Postgres. The scoring and
// ranking core never touches the store; it receives tickets already loaded
// in memory.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"ticket-agent/internal/ticket"
)

// ErrNotFound is returned when a ticket id has no stored record.
var ErrNotFound = errors.New("ticket not found")

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
	id               TEXT PRIMARY KEY,
	repo_identifier  TEXT NOT NULL,
	issue_number     INTEGER NOT NULL,
	title            TEXT NOT NULL,
	body             TEXT NOT NULL DEFAULT '',
	labels           JSONB NOT NULL DEFAULT '[]',
	assignees        JSONB NOT NULL DEFAULT '[]',
	milestone        TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL,
	last_activity_at TIMESTAMPTZ NOT NULL,
	comment_count    INTEGER NOT NULL DEFAULT 0,
	reactions_count  INTEGER NOT NULL DEFAULT 0,
	linked_prs       JSONB NOT NULL DEFAULT '[]',
	status           TEXT NOT NULL,
	inferred_state   TEXT NOT NULL DEFAULT '',
	score_breakdown  JSONB,
	state_history    JSONB NOT NULL DEFAULT '[]',
	synced_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tickets_repo_status ON tickets (repo_identifier, status);
`

// EnsureSchema creates the tickets table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// UpsertTicket inserts or replaces one synced ticket.
func (s *Store) UpsertTicket(ctx context.Context, t *ticket.Ticket) error {
	labels, err := json.Marshal(orEmpty(t.Labels))
	if err != nil {
		return err
	}
	assignees, err := json.Marshal(orEmpty(t.Assignees))
	if err != nil {
		return err
	}
	linkedPRs, err := json.Marshal(orEmptyPRs(t.LinkedPRs))
	if err != nil {
		return err
	}
	history, err := json.Marshal(orEmptyHistory(t.StateHistory))
	if err != nil {
		return err
	}
	var breakdown []byte
	if t.ScoreBreakdown != nil {
		if breakdown, err = json.Marshal(t.ScoreBreakdown); err != nil {
			return err
		}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO tickets (
			id, repo_identifier, issue_number, title, body, labels, assignees,
			milestone, created_at, updated_at, last_activity_at, comment_count,
			reactions_count, linked_prs, status, inferred_state, score_breakdown,
			state_history, synced_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = $4, body = $5, labels = $6, assignees = $7, milestone = $8,
			created_at = $9, updated_at = $10, last_activity_at = $11,
			comment_count = $12, reactions_count = $13, linked_prs = $14,
			status = $15, inferred_state = $16, score_breakdown = $17,
			state_history = $18, synced_at = NOW()`,
		t.ID, t.RepoIdentifier, t.IssueNumber, t.Title, t.Body, labels, assignees,
		t.Milestone, t.CreatedAt, t.UpdatedAt, t.LastActivityAt, t.CommentCount,
		t.ReactionsCount, linkedPRs, t.Status, string(t.InferredState), breakdown,
		history,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert ticket %s: %w", t.ID, err)
	}
	return nil
}

// ListTickets returns the tickets of one repo, optionally filtered by
// status. Ordered by id for deterministic snapshots.
func (s *Store) ListTickets(ctx context.Context, repo string, status ticket.Status) ([]ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE repo_identifier = $1`
	args := []any{repo}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []ticket.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Debug().Str("repo", repo).Int("count", len(tickets)).Msg("Loaded tickets from store")
	return tickets, nil
}

// GetTicket loads one ticket by id.
func (s *Store) GetTicket(ctx context.Context, id string) (*ticket.Ticket, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load ticket %s: %w", id, err)
	}
	return &t, nil
}

const ticketColumns = `id, repo_identifier, issue_number, title, body, labels,
	assignees, milestone, created_at, updated_at, last_activity_at,
	comment_count, reactions_count, linked_prs, status, inferred_state,
	score_breakdown, state_history`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (ticket.Ticket, error) {
	var (
		t                  ticket.Ticket
		labels             []byte
		assignees          []byte
		linkedPRs          []byte
		breakdown          []byte
		history            []byte
		status             string
		inferredState      string
		created, updated   time.Time
		lastActivity       time.Time
	)
	err := row.Scan(
		&t.ID, &t.RepoIdentifier, &t.IssueNumber, &t.Title, &t.Body, &labels,
		&assignees, &t.Milestone, &created, &updated, &lastActivity,
		&t.CommentCount, &t.ReactionsCount, &linkedPRs, &status, &inferredState,
		&breakdown, &history,
	)
	if err != nil {
		return ticket.Ticket{}, err
	}

	t.CreatedAt = created
	t.UpdatedAt = updated
	t.LastActivityAt = lastActivity
	t.Status = ticket.Status(status)
	t.InferredState = ticket.ProgressState(inferredState)

	if err := json.Unmarshal(labels, &t.Labels); err != nil {
		return ticket.Ticket{}, fmt.Errorf("corrupt labels for %s: %w", t.ID, err)
	}
	if err := json.Unmarshal(assignees, &t.Assignees); err != nil {
		return ticket.Ticket{}, fmt.Errorf("corrupt assignees for %s: %w", t.ID, err)
	}
	if err := json.Unmarshal(linkedPRs, &t.LinkedPRs); err != nil {
		return ticket.Ticket{}, fmt.Errorf("corrupt linked_prs for %s: %w", t.ID, err)
	}
	if err := json.Unmarshal(history, &t.StateHistory); err != nil {
		return ticket.Ticket{}, fmt.Errorf("corrupt state_history for %s: %w", t.ID, err)
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &t.ScoreBreakdown); err != nil {
			return ticket.Ticket{}, fmt.Errorf("corrupt score_breakdown for %s: %w", t.ID, err)
		}
	}

	return t, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyPRs(s []ticket.LinkedPR) []ticket.LinkedPR {
	if s == nil {
		return []ticket.LinkedPR{}
	}
	return s
}

func orEmptyHistory(s []ticket.StateTransition) []ticket.StateTransition {
	if s == nil {
		return []ticket.StateTransition{}
	}
	return s
}
