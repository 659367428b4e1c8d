package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/Lyuuwu/db-project-SocialMedia/internal/core/domain"
	"github.com/Lyuuwu/db-project-SocialMedia/internal/repository"
)

func newMockStore(t *testing.T) (*SessionStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(mock, "").WithNow(func() time.Time { return fixed })
	return store, mock
}

func TestSessionStore_Load(t *testing.T) {
	store, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{"payload"}).
		AddRow([]byte(`{"credential":"tok1","identity":{"id":3,"displayName":"ann"}}`))
	mock.ExpectQuery(`SELECT payload FROM client_sessions WHERE session_key = \$1 LIMIT 1`).
		WithArgs("miniig_session").
		WillReturnRows(rows)

	session, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if session.Credential != "tok1" || session.Identity.ID != 3 || session.Identity.DisplayName != "ann" {
		t.Fatalf("unexpected session %+v", session)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_Load_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT payload FROM client_sessions`).
		WithArgs("miniig_session").
		WillReturnError(pgx.ErrNoRows)

	if _, err := store.Load(context.Background()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_Load_Corrupted(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT payload FROM client_sessions`).
		WithArgs("miniig_session").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow([]byte(`[1,2`)))

	if _, err := store.Load(context.Background()); !errors.Is(err, repository.ErrCorrupted) {
		t.Fatalf("expected ErrCorrupted, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_SaveUpserts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO client_sessions \(session_key,payload,updated_at\) VALUES \(\$1,\$2,\$3\) ON CONFLICT \(session_key\) DO UPDATE`).
		WithArgs("miniig_session", pgxmock.AnyArg(), time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	session := &domain.Session{Credential: "tok1", Identity: domain.Identity{ID: 3}}
	if err := store.Save(context.Background(), session); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_SaveNilClears(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM client_sessions WHERE session_key = \$1`).
		WithArgs("miniig_session").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := store.Save(context.Background(), nil); err != nil {
		t.Fatalf("Save(nil) returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_ClearFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM client_sessions`).
		WithArgs("miniig_session").
		WillReturnError(errors.New("connection reset"))

	if err := store.Clear(context.Background()); err == nil {
		t.Fatalf("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionStore_EnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS client_sessions`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
