package leads

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db execer
}

// NewPostgresRepository initializes a repo backed by a pgxpool (or anything
// with the same Exec signature).
func NewPostgresRepository(db execer) *PostgresRepository {
	if db == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

const insertLeadSQL = `
	INSERT INTO leads (id, name, phone, email, procedure, location_interest, urgency, source,
		utm_source, utm_medium, utm_campaign, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (id) DO NOTHING
`

// Save inserts the lead. Re-saving the same lead id is a no-op.
func (r *PostgresRepository) Save(ctx context.Context, lead Lead) error {
	if err := lead.Validate(); err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, insertLeadSQL,
		lead.ID,
		lead.Name,
		lead.Phone,
		lead.Email,
		string(lead.Procedure),
		lead.Location,
		string(lead.Urgency),
		string(lead.Source),
		lead.UTMSource,
		lead.UTMMedium,
		lead.UTMCampaign,
		lead.CreatedAt,
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}
