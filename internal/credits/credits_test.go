package credits

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var (
	selectQ = regexp.QuoteMeta(`SELECT credits_remaining FROM "user_credits" WHERE user_id = $1`)
	insertQ = regexp.QuoteMeta(`INSERT INTO "user_credits" (user_id, credits_remaining`)
	updateQ = regexp.QuoteMeta(`UPDATE "user_credits" SET credits_remaining = credits_remaining - $2`)
)

func newMock(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db, "user-1", WithLogger(quiet())), mock
}

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)
	assert.True(t, m.CanConsume(ctx, 2))
	assert.False(t, m.CanConsume(ctx, 3))
	assert.True(t, m.Consume(ctx, 1))
	assert.False(t, m.Consume(ctx, 2))
	n, _ := m.Balance(ctx)
	assert.Equal(t, 1, n)
	assert.False(t, m.Consume(ctx, -1))
}

func TestPostgresBalanceCreatesRow(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(selectQ).WithArgs("user-1").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(insertQ).WithArgs("user-1", InitialCredits).WillReturnResult(sqlmock.NewResult(1, 1))

	n, err := p.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, InitialCredits, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCanConsume(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(selectQ).WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"credits_remaining"}).AddRow(1))
	mock.ExpectQuery(selectQ).WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"credits_remaining"}).AddRow(1))

	assert.True(t, p.CanConsume(context.Background(), 1))
	assert.False(t, p.CanConsume(context.Background(), 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConsume(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(selectQ).WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"credits_remaining"}).AddRow(5))
	mock.ExpectExec(updateQ).WithArgs("user-1", 2).WillReturnResult(sqlmock.NewResult(0, 1))

	assert.True(t, p.Consume(context.Background(), 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConsumeShortBalance(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(selectQ).WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"credits_remaining"}).AddRow(0))
	mock.ExpectExec(updateQ).WithArgs("user-1", 1).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.False(t, p.Consume(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresErrorsRefuse(t *testing.T) {
	p, mock := newMock(t)
	mock.ExpectQuery(selectQ).WillReturnError(errors.New("connection reset"))
	assert.False(t, p.CanConsume(context.Background(), 1))

	mock.ExpectQuery(selectQ).WillReturnRows(sqlmock.NewRows([]string{"credits_remaining"}).AddRow(3))
	mock.ExpectExec(updateQ).WillReturnError(errors.New("deadlock"))
	assert.False(t, p.Consume(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	p := NewPostgres(db, "u", WithTable("credits_v2"), WithInitial(3), WithLogger(quiet()))

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "credits_v2"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, p.Migrate(context.Background()))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "credits_v2"`)).WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "credits_v2"`)).WithArgs("u", 3).WillReturnResult(sqlmock.NewResult(1, 1))
	n, err := p.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
