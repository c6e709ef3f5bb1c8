package repository

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/stadiumfit/scorecard/internal/error_values"
	"github.com/stadiumfit/scorecard/pkg/cleanup"
)

type DocumentsRepository struct {
	conn PgConnection
}

func NewDocumentsRepo(cfg DBConfig) *DocumentsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for documentsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for documentsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &DocumentsRepository{
		conn: pool,
	}
}

func NewDocumentsRepoWithConn(conn PgConnection) *DocumentsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for documentsRepo: " + err.Error())
	}
	return &DocumentsRepository{
		conn: conn,
	}
}

func (dr *DocumentsRepository) Load(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	row := dr.conn.QueryRow(ctx, `SELECT body FROM documents WHERE name = $1;`, name)
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrDocumentNotFound
		}
		return nil, errors.New("loading document error: " + err.Error())
	}
	return body, nil
}

func (dr *DocumentsRepository) Save(ctx context.Context, name string, body []byte) error {
	_, err := dr.conn.Exec(
		ctx,
		`INSERT INTO documents (name, body, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW();`,
		name,
		body,
	)
	if err != nil {
		return errors.New("saving document error: " + err.Error())
	}
	return nil
}
