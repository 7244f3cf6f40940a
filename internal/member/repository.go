package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Member struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CareerPath string    `json:"career_path"`
	Experience string    `json:"experience"`
	PublishAt  string    `json:"publish_at"`
	WhyJoin    string    `json:"why_join"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository handles database operations for members
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// FindByEmail returns nil without error when nobody has that email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Member, error) {
	var m Member
	var created string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, career_path, experience, publish_at, why_join, created_at
		FROM members
		WHERE email = ?
	`, normalizeEmail(email)).Scan(&m.ID, &m.Name, &m.Email, &m.CareerPath,
		&m.Experience, &m.PublishAt, &m.WhyJoin, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &m, nil
}

// Insert stores m and fills in its ID. A duplicate email yields
// ErrAlreadyMember.
func (r *Repository) Insert(ctx context.Context, m *Member) error {
	m.Email = normalizeEmail(m.Email)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO members (name, email, career_path, experience, publish_at, why_join, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.Name, m.Email, m.CareerPath, m.Experience, m.PublishAt, m.WhyJoin,
		m.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyMember
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read member id: %w", err)
	}
	return nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return n, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
