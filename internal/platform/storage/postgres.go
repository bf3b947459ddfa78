package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MichalMitros/marketguard/internal/platform/models"
	"github.com/MichalMitros/marketguard/internal/platform/storage/gen/postgres/public/table"

	pgmodels "github.com/MichalMitros/marketguard/internal/platform/storage/gen/postgres/public/model"
	pg "github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
)

// Postgres is comp storage backed by resale_comp table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns new Postgres.
func NewPostgres(db *sql.DB) Postgres {
	return Postgres{
		db: db,
	}
}

// Get returns comp stored under key or nil if there is none.
func (p Postgres) Get(ctx context.Context, key string) (*models.ResaleComp, error) {
	var comp pgmodels.ResaleComp
	err := table.ResaleComp.SELECT(table.ResaleComp.AllColumns).
		WHERE(table.ResaleComp.Query.EQ(pg.String(key))).
		QueryContext(ctx, p.db, &comp)

	if errors.Is(err, qrm.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("can't get comp from database: %w", err)
	}

	return fromDBComp(comp), nil
}

// Put upserts comp under key.
func (p Postgres) Put(ctx context.Context, key string, comp models.ResaleComp) error {
	return upsertComps(ctx, p.db, toDBComp(key, comp))
}

func upsertComps(ctx context.Context, db qrm.DB, comps ...pgmodels.ResaleComp) error {
	if len(comps) == 0 {
		return nil
	}

	excludedExpressions := make([]pg.Expression, 0, len(table.ResaleComp.MutableColumns)) // converting to expression
	for _, col := range table.ResaleComp.EXCLUDED.MutableColumns {
		excludedExpressions = append(excludedExpressions, col)
	}

	_, err := table.ResaleComp.INSERT(table.ResaleComp.AllColumns).
		MODELS(comps).
		ON_CONFLICT(table.ResaleComp.Query).
		DO_UPDATE(
			pg.SET(
				table.ResaleComp.MutableColumns.SET(pg.ROW(excludedExpressions...)),
			),
		).
		ExecContext(ctx, db)
	if err != nil {
		return fmt.Errorf("can't upsert comps into database: %w", err)
	}

	return nil
}
