package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	errorvalues "github.com/stadiumfit/scorecard/internal/error_values"
	"github.com/stadiumfit/scorecard/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewDocumentsRepoWithConn(conn)
	body := []byte(`{"users":[]}`)
	query := regexp.QuoteMeta(`SELECT body FROM documents WHERE name = $1;`)
	t.Run("found", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(repository.DocIdentity).
			WillReturnRows(pgxmock.NewRows([]string{"body"}).AddRow(body))
		result, err := repo.Load(ctx, repository.DocIdentity)
		assert.NoError(t, err)
		assert.Equal(t, body, result)
	})
	t.Run("not found", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(repository.DocCatalog).
			WillReturnError(pgx.ErrNoRows)
		_, err := repo.Load(ctx, repository.DocCatalog)
		assert.ErrorIs(t, err, errorvalues.ErrDocumentNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectQuery(query).
			WithArgs(repository.DocLedger).
			WillReturnError(errors.New("db error"))
		_, err := repo.Load(ctx, repository.DocLedger)
		assert.Error(t, err)
	})
}

func TestSave(t *testing.T) {
	conn, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	repo := repository.NewDocumentsRepoWithConn(conn)
	body := []byte(`{"entries":[]}`)
	query := `INSERT INTO documents`
	t.Run("inserted", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(repository.DocLedger, body).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		err := repo.Save(ctx, repository.DocLedger, body)
		assert.NoError(t, err)
	})
	t.Run("upserted", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(repository.DocLedger, body).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		err := repo.Save(ctx, repository.DocLedger, body)
		assert.NoError(t, err)
	})
	t.Run("db error", func(t *testing.T) {
		conn.ExpectExec(query).
			WithArgs(repository.DocLedger, body).
			WillReturnError(errors.New("db error"))
		err := repo.Save(ctx, repository.DocLedger, body)
		assert.Error(t, err)
	})
}
