package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/utils"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type ApplicationRepository interface {
	Create(ctx context.Context, a *models.TenancyApplication) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.TenancyApplication, error)
	GetByTenantAndProperty(ctx context.Context, tenantID, propertyID uuid.UUID) (*models.TenancyApplication, error)
	ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.TenancyApplication, error)
	ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.TenancyApplication, error)
	ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.TenancyApplication, error)

	CountPendingByLandlordID(ctx context.Context, landlordID uuid.UUID) (int, error)
	CountPendingByTenantID(ctx context.Context, tenantID uuid.UUID) (int, error)

	// Reapply resets a settled application back to pending with a new
	// message. The (tenant, property) pair is unique, so a rejected or
	// withdrawn row is reused instead of inserting a duplicate.
	Reapply(ctx context.Context, id uuid.UUID, message *string) error

	// UpdateStatusIfPending flips status only while the row is still
	// pending. Zero rows affected means it was already settled.
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) (pgconn.CommandTag, error)

	SetLandlordReply(ctx context.Context, id uuid.UUID, reply string) error

	// HasActiveTenancy reports whether the tenant holds any tenancy
	// that is not yet terminated.
	HasActiveTenancy(ctx context.Context, tenantID uuid.UUID) (bool, error)

	// AcceptAtomic accepts one pending application in a single
	// transaction: opens the tenancy, flags the property, marks this
	// application accepted and rejects every other pending application
	// for the same property. The accepted application is immune from
	// its own cascade.
	AcceptAtomic(ctx context.Context, applicationID uuid.UUID, startDate time.Time) (*models.Tenancy, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type applicationRepo struct {
	db DB
}

func NewApplicationRepository(db DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Create(ctx context.Context, a *models.TenancyApplication) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO tenancy_applications (id, tenant_id, property_id, status, message, landlord_reply, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,NULL, NOW(), NOW())
    `, a.ID, a.TenantID, a.PropertyID, string(a.Status), a.Message)
	return err
}

func (r *applicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.TenancyApplication, error) {
	row := r.db.QueryRow(ctx, baseSelectApplication()+" WHERE a.id=$1", id)
	return scanApplication(row)
}

func (r *applicationRepo) GetByTenantAndProperty(ctx context.Context, tenantID, propertyID uuid.UUID) (*models.TenancyApplication, error) {
	row := r.db.QueryRow(ctx,
		baseSelectApplication()+" WHERE a.tenant_id=$1 AND a.property_id=$2", tenantID, propertyID)
	return scanApplication(row)
}

func (r *applicationRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.TenancyApplication, error) {
	return r.list(ctx, baseSelectApplication()+" WHERE a.tenant_id=$1 ORDER BY a.created_at DESC", tenantID)
}

func (r *applicationRepo) ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.TenancyApplication, error) {
	return r.list(ctx, baseSelectApplication()+" WHERE a.property_id=$1 ORDER BY a.created_at DESC", propertyID)
}

func (r *applicationRepo) ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.TenancyApplication, error) {
	query := baseSelectApplication() + `
        JOIN properties p ON p.id = a.property_id
        WHERE p.landlord_id=$1
        ORDER BY a.created_at DESC`
	return r.list(ctx, query, landlordID)
}

func (r *applicationRepo) CountPendingByLandlordID(ctx context.Context, landlordID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT count(*)
        FROM tenancy_applications a
        JOIN properties p ON p.id = a.property_id
        WHERE p.landlord_id = $1 AND a.status = 'pending'`, landlordID).Scan(&n)
	return n, err
}

func (r *applicationRepo) CountPendingByTenantID(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT count(*) FROM tenancy_applications
        WHERE tenant_id = $1 AND status = 'pending'`, tenantID).Scan(&n)
	return n, err
}

func (r *applicationRepo) list(ctx context.Context, query string, arg any) ([]*models.TenancyApplication, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.TenancyApplication
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *applicationRepo) Reapply(ctx context.Context, id uuid.UUID, message *string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE tenancy_applications
        SET status='pending', message=$2, landlord_reply=NULL, updated_at=NOW()
        WHERE id=$1 AND status <> 'pending'
    `, id, message)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return utils.ErrDuplicatePending
	}
	return nil
}

func (r *applicationRepo) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE tenancy_applications
        SET status=$2, updated_at=NOW()
        WHERE id=$1 AND status='pending'
    `, id, string(status))
}

func (r *applicationRepo) SetLandlordReply(ctx context.Context, id uuid.UUID, reply string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE tenancy_applications
        SET landlord_reply=$2, updated_at=NOW()
        WHERE id=$1
    `, id, reply)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *applicationRepo) HasActiveTenancy(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM tenancies
            WHERE tenant_id = $1 AND status IN ('active','pending_termination')
        )`, tenantID).Scan(&exists)
	return exists, err
}

func (r *applicationRepo) AcceptAtomic(
	ctx context.Context,
	applicationID uuid.UUID,
	startDate time.Time,
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

	row := tx.QueryRow(ctx, baseSelectApplication()+" WHERE a.id=$1 FOR UPDATE OF a", applicationID)
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, pgx.ErrNoRows
	}
	if app.Status != models.ApplicationPending {
		return nil, utils.ErrApplicationNotPending
	}

	prow := tx.QueryRow(ctx, baseSelectProperty()+" WHERE id=$1 FOR UPDATE", app.PropertyID)
	prop, err := scanProperty(prow)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, pgx.ErrNoRows
	}
	if prop.IsOccupied {
		return nil, utils.ErrPropertyOccupied
	}

	var tenantBusy bool
	err = tx.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM tenancies
            WHERE tenant_id = $1 AND status IN ('active','pending_termination')
        )`, app.TenantID).Scan(&tenantBusy)
	if err != nil {
		return nil, err
	}
	if tenantBusy {
		return nil, utils.ErrActiveTenancyExists
	}

	t := &models.Tenancy{
		ID:            uuid.New(),
		TenantID:      app.TenantID,
		LandlordID:    prop.LandlordID,
		PropertyID:    app.PropertyID,
		ApplicationID: &app.ID,
		Status:        models.TenancyActive,
		StartDate:     startDate,
	}
	_, err = tx.Exec(ctx, `
        INSERT INTO tenancies (
            id, tenant_id, landlord_id, property_id, application_id,
            status, landlord_terminated, tenant_terminated,
            start_date, terminated_at, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,FALSE,FALSE,$7,NULL, NOW(), NOW())
    `, t.ID, t.TenantID, t.LandlordID, t.PropertyID, t.ApplicationID, string(t.Status), t.StartDate)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
        UPDATE properties
        SET is_occupied=TRUE, is_available=FALSE, row_version=row_version+1, updated_at=NOW()
        WHERE id=$1
    `, app.PropertyID)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
        UPDATE tenancy_applications
        SET status='accepted', updated_at=NOW()
        WHERE id=$1
    `, app.ID)
	if err != nil {
		return nil, err
	}

	// Everyone else still pending on this property loses.
	_, err = tx.Exec(ctx, `
        UPDATE tenancy_applications
        SET status='rejected', updated_at=NOW()
        WHERE property_id=$1 AND status='pending' AND id <> $2
    `, app.PropertyID, app.ID)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectTenancy()+" WHERE id=$1", t.ID)
	return scanTenancy(newRow)
}

/* ---------- internals ---------- */

func baseSelectApplication() string {
	return `
        SELECT a.id, a.tenant_id, a.property_id, a.status, a.message, a.landlord_reply, a.created_at, a.updated_at
        FROM tenancy_applications a
    `
}

func scanApplication(row pgx.Row) (*models.TenancyApplication, error) {
	var a models.TenancyApplication
	var status string
	err := row.Scan(
		&a.ID,
		&a.TenantID,
		&a.PropertyID,
		&status,
		&a.Message,
		&a.LandlordReply,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	a.Status = models.ApplicationStatus(status)
	return &a, nil
}
