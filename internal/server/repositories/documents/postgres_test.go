package documents

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nipa/healthsync/internal/common"
	"github.com/nipa/healthsync/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var upsertQuery = regexp.MustCompile(`INSERT INTO documents .* ON CONFLICT \(collection, id\)\s+DO UPDATE SET .* WHERE documents\.owner_id = EXCLUDED\.owner_id;`).String()

func sampleDoc() *models.StoredDocument {
	return &models.StoredDocument{
		Collection: "notifications",
		ID:         "n1",
		OwnerID:    "u1",
		Body:       models.Document{"id": "n1", "userId": "u1", "read": false},
	}
}

func TestUpsert_SuccessRowsAffected1(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertQuery).
		WithArgs("notifications", "n1", "u1", []byte(`{"id":"n1","read":false,"userId":"u1"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), sampleDoc()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsert_OtherOwnerRowsAffected0(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertQuery).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Upsert(context.Background(), sampleDoc())
	if !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestUpsert_DBExecError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertQuery).WillReturnError(errors.New("connection refused"))

	err := repo.Upsert(context.Background(), sampleDoc())
	if err == nil || errors.Is(err, common.ErrForbidden) {
		t.Fatalf("want db error, got %v", err)
	}
}

func TestUpsert_RowsAffectedError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertQuery).WillReturnResult(sqlmock.NewErrorResult(errors.New("ra")))

	if err := repo.Upsert(context.Background(), sampleDoc()); err == nil {
		t.Fatal("expected error")
	}
}

func TestQuery_DecodesBodies(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"body"}).
		AddRow([]byte(`{"id":"h1","providerId":"p1","attachments":["a"]}`)).
		AddRow([]byte(`{"id":"h2","providerId":"p1","timestamp":1700000000}`))

	mock.ExpectQuery(`SELECT body FROM documents WHERE collection = \$1 AND body->>\$2 = \$3 ORDER BY id`).
		WithArgs("client_history", "providerId", "p1").
		WillReturnRows(rows)

	docs, err := repo.Query(context.Background(), "client_history", "providerId", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("want 2 docs, got %d", len(docs))
	}
	if got := docs[0]["attachments"].([]any)[0]; got != "a" {
		t.Fatalf("attachments[0] = %v", got)
	}
	if got := docs[1]["timestamp"]; got != float64(1700000000) {
		t.Fatalf("timestamp = %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQuery_EmptyResultIsNotNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT body FROM documents`).WillReturnRows(sqlmock.NewRows([]string{"body"}))

	docs, err := repo.Query(context.Background(), "notifications", "userId", "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", docs)
	}
}

func TestQuery_BadJSON(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT body FROM documents`).
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{oops`)))

	if _, err := repo.Query(context.Background(), "notifications", "userId", "u1"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestQuery_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT body FROM documents`).WillReturnError(errors.New("timeout"))

	if _, err := repo.Query(context.Background(), "notifications", "userId", "u1"); err == nil {
		t.Fatal("expected error")
	}
}
