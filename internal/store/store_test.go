package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestGetUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	rows := sqlmock.NewRows([]string{"id", "name", "avatar", "color"}).
		AddRow("arjun", "Arjun", "A", "#e07b39")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, avatar, color FROM users WHERE id = $1`)).
		WithArgs("arjun").
		WillReturnRows(rows)

	u, err := st.GetUser(context.Background(), "arjun")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Name != "Arjun" || u.Color != "#e07b39" {
		t.Fatalf("unexpected user %+v", u)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, avatar, color FROM users WHERE id = $1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "avatar", "color"}))

	if _, err := st.GetUser(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestListUsers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	rows := sqlmock.NewRows([]string{"id", "name", "avatar", "color"}).
		AddRow("arjun", "Arjun", "A", "#e07b39").
		AddRow("meera", "Meera", "M", "#4b7bec")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, avatar, color FROM users ORDER BY name`)).
		WillReturnRows(rows)

	users, err := st.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 || users[1].ID != "meera" {
		t.Fatalf("unexpected users %+v", users)
	}
}

func TestEnsureSessionIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	query := regexp.QuoteMeta(`
INSERT INTO sessions (app_name, user_id, session_id, created_at, updated_at)
VALUES ($1,$2,$3,NOW(),NOW())
ON CONFLICT (app_name, user_id, session_id) DO NOTHING;
`)
	mock.ExpectExec(query).
		WithArgs("carnatic_guru", "arjun", "arjun_session").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := st.EnsureSession(context.Background(), "carnatic_guru", "arjun", "arjun_session"); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`
INSERT INTO session_events (id, app_name, user_id, session_id, author, content, created_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW());
`)).
		WithArgs(sqlmock.AnyArg(), "carnatic_guru", "arjun", "arjun_session", "user", "teach me sarali").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`
UPDATE sessions SET updated_at = NOW()
WHERE app_name = $1 AND user_id = $2 AND session_id = $3;
`)).
		WithArgs("carnatic_guru", "arjun", "arjun_session").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := st.AppendEvent(context.Background(), "carnatic_guru", "arjun", "arjun_session", "user", "teach me sarali"); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAppendEventRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO session_events").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	if err := st.AppendEvent(context.Background(), "carnatic_guru", "ghost", "ghost_session", "user", "hi"); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	st := &Store{DB: db}
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "author", "content", "created_at"}).
		AddRow("e1", "user", "teach me sarali", now.Add(-time.Minute)).
		AddRow("e2", "lesson_agent", "Sarali Varisai\ns r g m", now)
	mock.ExpectQuery("SELECT id, author, content, created_at FROM session_events").
		WithArgs("carnatic_guru", "arjun", "arjun_session").
		WillReturnRows(rows)

	events, err := st.ListEvents(context.Background(), "carnatic_guru", "arjun", "arjun_session")
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 || events[0].Author != "user" || events[1].Author != "lesson_agent" {
		t.Fatalf("unexpected events %+v", events)
	}
}
