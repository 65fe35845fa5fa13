package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zen-systems/listingsmith/pkg/access"
	"github.com/zen-systems/listingsmith/pkg/listing"
)

// Postgres implements Users and Sales over a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL and verifies the connection.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

const roleQuery = `SELECT role FROM users WHERE id = $1`

// Role returns the user's subscription tier.
func (p *Postgres) Role(ctx context.Context, userID string) (access.Role, error) {
	var role string
	err := p.pool.QueryRow(ctx, roleQuery, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load role: %w", err)
	}
	return access.ParseRole(role)
}

const templateQuery = `SELECT COALESCE(caption_template, '') FROM users WHERE id = $1`

// CaptionTemplate returns the user's saved caption template, or "".
func (p *Postgres) CaptionTemplate(ctx context.Context, userID string) (string, error) {
	var tmpl string
	err := p.pool.QueryRow(ctx, templateQuery, userID).Scan(&tmpl)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load caption template: %w", err)
	}
	return tmpl, nil
}

const recentSoldQuery = `
SELECT selling_price, COALESCE(condition, '')
FROM phones
WHERE owner_id = $1
  AND status = 'SOLD'
  AND selling_price IS NOT NULL
  AND name ILIKE $2
ORDER BY sold_at DESC NULLS LAST
LIMIT $3`

// RecentSold returns the owner's most recent sales of the model.
func (p *Postgres) RecentSold(ctx context.Context, ownerID, model string, limit int) ([]listing.Sale, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := p.pool.Query(ctx, recentSoldQuery, ownerID, containsPattern(model), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []listing.Sale
	for rows.Next() {
		var s listing.Sale
		if err := rows.Scan(&s.Price, &s.Condition); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", err)
	}
	return sales, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches model literally anywhere in a LIKE operand.
// Backslash is the default LIKE escape character.
func containsPattern(model string) string {
	return "%" + likeEscaper.Replace(model) + "%"
}
