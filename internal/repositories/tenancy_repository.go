package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/utils"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type TenancyRepository interface {
	Create(ctx context.Context, t *models.Tenancy) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenancy, error)
	// GetActiveByTenantID returns the tenant's sole non-terminated
	// tenancy, or nil.
	GetActiveByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.Tenancy, error)
	GetActiveByPropertyID(ctx context.Context, propertyID uuid.UUID) (*models.Tenancy, error)

	ListActiveByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Tenancy, error)
	ListPastByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Tenancy, error)
	ListActiveByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Tenancy, error)
	ListPastByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Tenancy, error)

	CountActiveByLandlordID(ctx context.Context, landlordID uuid.UUID) (int, error)

	// RecordTerminationAtomic sets the caller's termination flag under
	// a row lock. When the second flag lands the tenancy terminates
	// and the property goes back on the marketplace, all in the same
	// transaction. Re-requesting by the same party changes nothing and
	// returns the current row.
	RecordTerminationAtomic(ctx context.Context, tenancyID, actorID uuid.UUID, role models.RoleType) (*models.Tenancy, error)

	// Archive moves a terminated tenancy into the archive. Zero rows
	// affected means the tenancy was missing or not yet terminated.
	Archive(ctx context.Context, tenancyID uuid.UUID) (bool, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type tenancyRepo struct {
	db DB
}

func NewTenancyRepository(db DB) TenancyRepository {
	return &tenancyRepo{db: db}
}

func (r *tenancyRepo) Create(ctx context.Context, t *models.Tenancy) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO tenancies (
            id, tenant_id, landlord_id, property_id, application_id,
            status, landlord_terminated, tenant_terminated,
            start_date, terminated_at, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW(), NOW())
    `,
		t.ID, t.TenantID, t.LandlordID, t.PropertyID, t.ApplicationID,
		string(t.Status), t.LandlordTerminated, t.TenantTerminated,
		t.StartDate, t.TerminatedAt,
	)
	return err
}

func (r *tenancyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenancy, error) {
	row := r.db.QueryRow(ctx, baseSelectTenancy()+" WHERE id=$1", id)
	return scanTenancy(row)
}

func (r *tenancyRepo) GetActiveByTenantID(ctx context.Context, tenantID uuid.UUID) (*models.Tenancy, error) {
	row := r.db.QueryRow(ctx, baseSelectTenancy()+`
        WHERE tenant_id=$1 AND status IN ('active','pending_termination')
        ORDER BY created_at DESC LIMIT 1`, tenantID)
	return scanTenancy(row)
}

func (r *tenancyRepo) GetActiveByPropertyID(ctx context.Context, propertyID uuid.UUID) (*models.Tenancy, error) {
	row := r.db.QueryRow(ctx, baseSelectTenancy()+`
        WHERE property_id=$1 AND status IN ('active','pending_termination')
        ORDER BY created_at DESC LIMIT 1`, propertyID)
	return scanTenancy(row)
}

func (r *tenancyRepo) ListActiveByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Tenancy, error) {
	return r.list(ctx, ` WHERE landlord_id=$1 AND status IN ('active','pending_termination')
        ORDER BY created_at DESC`, landlordID)
}

func (r *tenancyRepo) ListPastByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Tenancy, error) {
	return r.list(ctx, ` WHERE landlord_id=$1 AND status IN ('terminated','archived')
        ORDER BY terminated_at DESC NULLS LAST`, landlordID)
}

func (r *tenancyRepo) CountActiveByLandlordID(ctx context.Context, landlordID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT count(*) FROM tenancies
        WHERE landlord_id = $1 AND status IN ('active','pending_termination')`, landlordID).Scan(&n)
	return n, err
}

func (r *tenancyRepo) ListActiveByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Tenancy, error) {
	return r.list(ctx, ` WHERE tenant_id=$1 AND status IN ('active','pending_termination')
        ORDER BY created_at DESC`, tenantID)
}

func (r *tenancyRepo) ListPastByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.Tenancy, error) {
	return r.list(ctx, ` WHERE tenant_id=$1 AND status IN ('terminated','archived')
        ORDER BY terminated_at DESC NULLS LAST`, tenantID)
}

func (r *tenancyRepo) list(ctx context.Context, where string, arg any) ([]*models.Tenancy, error) {
	rows, err := r.db.Query(ctx, baseSelectTenancy()+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Tenancy
	for rows.Next() {
		t, err := scanTenancy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *tenancyRepo) RecordTerminationAtomic(
	ctx context.Context,
	tenancyID, actorID uuid.UUID,
	role models.RoleType,
) (*models.Tenancy, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	row := tx.QueryRow(ctx, baseSelectTenancy()+" WHERE id=$1 FOR UPDATE", tenancyID)
	t, err := scanTenancy(row)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, pgx.ErrNoRows
	}

	switch role {
	case models.RoleLandlord:
		if t.LandlordID != actorID {
			return nil, utils.ErrNotTenancyParty
		}
	case models.RoleTenant:
		if t.TenantID != actorID {
			return nil, utils.ErrNotTenancyParty
		}
	default:
		return nil, utils.ErrNotTenancyParty
	}

	if t.IsFinalized() {
		return nil, utils.ErrTenancyFinalized
	}

	if !t.RequestTermination(role, time.Now()) {
		// Same party asking twice is a no-op.
		return t, nil
	}

	_, err = tx.Exec(ctx, `
        UPDATE tenancies
        SET status=$2, landlord_terminated=$3, tenant_terminated=$4,
            terminated_at=$5, updated_at=NOW()
        WHERE id=$1
    `, t.ID, string(t.Status), t.LandlordTerminated, t.TenantTerminated, t.TerminatedAt)
	if err != nil {
		return nil, err
	}

	if t.Status == models.TenancyTerminated {
		// Free the property for the marketplace again.
		_, err = tx.Exec(ctx, `
            UPDATE properties
            SET is_occupied=FALSE, is_available=TRUE, row_version=row_version+1, updated_at=NOW()
            WHERE id=$1
        `, t.PropertyID)
		if err != nil {
			return nil, err
		}
	}

	newRow := tx.QueryRow(ctx, baseSelectTenancy()+" WHERE id=$1", t.ID)
	return scanTenancy(newRow)
}

func (r *tenancyRepo) Archive(ctx context.Context, tenancyID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE tenancies
        SET status='archived', updated_at=NOW()
        WHERE id=$1 AND status='terminated'
    `, tenancyID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

/* ---------- internals ---------- */

func baseSelectTenancy() string {
	return `
        SELECT id, tenant_id, landlord_id, property_id, application_id,
               status, landlord_terminated, tenant_terminated,
               start_date, terminated_at, created_at, updated_at
        FROM tenancies
    `
}

func scanTenancy(row pgx.Row) (*models.Tenancy, error) {
	var t models.Tenancy
	var status string
	err := row.Scan(
		&t.ID,
		&t.TenantID,
		&t.LandlordID,
		&t.PropertyID,
		&t.ApplicationID,
		&status,
		&t.LandlordTerminated,
		&t.TenantTerminated,
		&t.StartDate,
		&t.TerminatedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.Status = models.TenancyStatus(status)
	return &t, nil
}
