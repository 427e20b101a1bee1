package credits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// DefaultTable is the table holding one row per user.
const DefaultTable = "user_credits"

// Postgres is a ledger stored in a user_credits table.
type Postgres struct {
	db      *sql.DB
	userID  string
	table   string
	initial int
	log     logrus.FieldLogger
}

// PostgresOption configures a Postgres ledger.
type PostgresOption func(*Postgres)

// WithTable overrides the table name.
func WithTable(name string) PostgresOption { return func(p *Postgres) { p.table = name } }

// WithInitial sets the balance given to new users.
func WithInitial(n int) PostgresOption { return func(p *Postgres) { p.initial = n } }

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) PostgresOption { return func(p *Postgres) { p.log = l } }

// Open connects to dsn with the postgres driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open credits database: %w", err)
	}
	return db, nil
}

// NewPostgres returns a ledger for userID.
func NewPostgres(db *sql.DB, userID string, opts ...PostgresOption) *Postgres {
	p := &Postgres{
		db:      db,
		userID:  userID,
		table:   DefaultTable,
		initial: InitialCredits,
		log:     logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(p)
	}
	p.log = p.log.WithField("user", userID)
	return p
}

func (p *Postgres) ident() string { return pq.QuoteIdentifier(p.table) }

// Migrate creates the table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS ` + p.ident() + ` (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id text NOT NULL UNIQUE,
	credits_remaining integer NOT NULL DEFAULT 0,
	monthly_upgrade boolean NOT NULL DEFAULT false,
	yearly_upgrade boolean NOT NULL DEFAULT false,
	created_at timestamptz NOT NULL DEFAULT now(),
	updated_at timestamptz NOT NULL DEFAULT now()
)`
	if _, err := p.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("migrate %s: %w", p.table, err)
	}
	return nil
}

// Balance returns the remaining credits, creating the user's row with the
// initial balance when it is missing.
func (p *Postgres) Balance(ctx context.Context) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT credits_remaining FROM `+p.ident()+` WHERE user_id = $1`, p.userID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return p.create(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("read credits: %w", err)
	}
	return n, nil
}

func (p *Postgres) create(ctx context.Context) (int, error) {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO `+p.ident()+` (user_id, credits_remaining, monthly_upgrade, yearly_upgrade)
VALUES ($1, $2, false, false) ON CONFLICT (user_id) DO NOTHING`, p.userID, p.initial)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			p.log.WithField("code", pqErr.Code).Error("creating credits row failed")
		}
		return 0, fmt.Errorf("create credits: %w", err)
	}
	p.log.WithField("credits", p.initial).Info("created credits row")
	return p.initial, nil
}

// CanConsume reports whether n credits are available. Lookup errors count as
// no.
func (p *Postgres) CanConsume(ctx context.Context, n int) bool {
	bal, err := p.Balance(ctx)
	if err != nil {
		p.log.WithError(err).Warn("credit check failed")
		return false
	}
	return n >= 0 && bal >= n
}

// Consume deducts n credits with a single conditional update.
func (p *Postgres) Consume(ctx context.Context, n int) bool {
	if n < 0 {
		return false
	}
	if _, err := p.Balance(ctx); err != nil {
		p.log.WithError(err).Warn("credit check failed")
		return false
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE `+p.ident()+` SET credits_remaining = credits_remaining - $2, updated_at = now()
WHERE user_id = $1 AND credits_remaining >= $2`, p.userID, n)
	if err != nil {
		p.log.WithError(err).Warn("deducting credits failed")
		return false
	}
	rows, err := res.RowsAffected()
	if err != nil || rows != 1 {
		return false
	}
	p.log.WithField("amount", n).Debug("credits deducted")
	return true
}
