package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Names of the three independently persisted documents. Each has its own
// schema and evolves separately.
const (
	DocIdentity = "identity"
	DocCatalog  = "catalog"
	DocLedger   = "ledger"
)

type DocumentsRepositoryI interface {
	// Loads the whole document body. Returns ErrDocumentNotFound if the
	// document was never saved
	Load(ctx context.Context, name string) ([]byte, error)
	// Upserts the whole document body
	Save(ctx context.Context, name string, body []byte) error
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
