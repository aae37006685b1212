package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type MaintenanceRepository interface {
	// CreateWithImages inserts the request and its attachments in one
	// transaction. Callers cap the image list beforehand.
	CreateWithImages(ctx context.Context, m *models.MaintenanceRequest, imageURLs []string) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.MaintenanceRequest, error)
	// The landlord lists take an optional status narrowing.
	ListByLandlordID(ctx context.Context, landlordID uuid.UUID, status *models.MaintenanceStatus) ([]*models.MaintenanceRequest, error)
	ListByPropertyID(ctx context.Context, propertyID uuid.UUID, status *models.MaintenanceStatus) ([]*models.MaintenanceRequest, error)

	CountUnreadByLandlordID(ctx context.Context, landlordID uuid.UUID) (int, error)
	CountPendingByLandlordID(ctx context.Context, landlordID uuid.UUID) (int, error)
	CountOpenByTenantID(ctx context.Context, tenantID uuid.UUID) (int, error)

	// MarkViewed flips the unread flag once; safe to fire and forget.
	MarkViewed(ctx context.Context, id uuid.UUID) error

	Update(ctx context.Context, m *models.MaintenanceRequest) error
	UpdateIfVersion(ctx context.Context, m *models.MaintenanceRequest, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MaintenanceRequest) error) error

	CountImages(ctx context.Context, requestID uuid.UUID) (int, error)
	ListImages(ctx context.Context, requestID uuid.UUID) ([]*models.MaintenanceImage, error)
	GetImage(ctx context.Context, imageID uuid.UUID) (*models.MaintenanceImage, error)
	AddImages(ctx context.Context, requestID uuid.UUID, urls []string, startPos int) error
	DeleteImage(ctx context.Context, imageID uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type maintenanceRepo struct {
	*BaseVersionedRepo[*models.MaintenanceRequest]
	db DB
}

func NewMaintenanceRepository(db DB) MaintenanceRepository {
	r := &maintenanceRepo{db: db}
	selectStmt := baseSelectMaintenance() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanMaintenance)
	return r
}

func (r *maintenanceRepo) CreateWithImages(ctx context.Context, m *models.MaintenanceRequest, imageURLs []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
        INSERT INTO maintenance_requests (
            id, tenancy_id, tenant_id, landlord_id, property_id,
            title, description, priority, status,
            landlord_notes, viewed_by_landlord, completed_at,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULL,FALSE,NULL, NOW(), NOW(), 1)
    `,
		m.ID, m.TenancyID, m.TenantID, m.LandlordID, m.PropertyID,
		m.Title, m.Description, string(m.Priority), string(m.Status),
	)
	if err != nil {
		return err
	}

	for i, url := range imageURLs {
		_, err = tx.Exec(ctx, `
            INSERT INTO maintenance_images (id, request_id, image_url, position, created_at)
            VALUES ($1,$2,$3,$4, NOW())
        `, uuid.New(), m.ID, url, i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *maintenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *maintenanceRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.MaintenanceRequest, error) {
	return r.list(ctx, " WHERE tenant_id=$1 ORDER BY created_at DESC", tenantID)
}

func (r *maintenanceRepo) ListByLandlordID(ctx context.Context, landlordID uuid.UUID, status *models.MaintenanceStatus) ([]*models.MaintenanceRequest, error) {
	where, args := " WHERE landlord_id=$1", []any{landlordID}
	if status != nil {
		where += " AND status=$2"
		args = append(args, *status)
	}
	return r.list(ctx, where+" ORDER BY created_at DESC", args...)
}

func (r *maintenanceRepo) ListByPropertyID(ctx context.Context, propertyID uuid.UUID, status *models.MaintenanceStatus) ([]*models.MaintenanceRequest, error) {
	where, args := " WHERE property_id=$1", []any{propertyID}
	if status != nil {
		where += " AND status=$2"
		args = append(args, *status)
	}
	return r.list(ctx, where+" ORDER BY created_at DESC", args...)
}

func (r *maintenanceRepo) list(ctx context.Context, where string, args ...any) ([]*models.MaintenanceRequest, error) {
	rows, err := r.db.Query(ctx, baseSelectMaintenance()+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MaintenanceRequest
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *maintenanceRepo) CountUnreadByLandlordID(ctx context.Context, landlordID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT count(*) FROM maintenance_requests
        WHERE landlord_id=$1 AND viewed_by_landlord=FALSE
    `, landlordID).Scan(&n)
	return n, err
}

func (r *maintenanceRepo) CountPendingByLandlordID(ctx context.Context, landlordID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT count(*) FROM maintenance_requests
        WHERE landlord_id=$1 AND status='pending'
    `, landlordID).Scan(&n)
	return n, err
}

func (r *maintenanceRepo) CountOpenByTenantID(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT count(*) FROM maintenance_requests
        WHERE tenant_id=$1 AND status IN ('pending','in_progress')
    `, tenantID).Scan(&n)
	return n, err
}

func (r *maintenanceRepo) MarkViewed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        UPDATE maintenance_requests
        SET viewed_by_landlord=TRUE, row_version=row_version+1, updated_at=NOW()
        WHERE id=$1 AND viewed_by_landlord=FALSE
    `, id)
	return err
}

func (r *maintenanceRepo) Update(ctx context.Context, m *models.MaintenanceRequest) error {
	_, err := r.update(ctx, m, false, 0)
	return err
}

func (r *maintenanceRepo) UpdateIfVersion(ctx context.Context, m *models.MaintenanceRequest, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, m, true, expected)
}

func (r *maintenanceRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.MaintenanceRequest) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *maintenanceRepo) update(ctx context.Context, m *models.MaintenanceRequest, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
        UPDATE maintenance_requests SET
            title=$1, description=$2, priority=$3, status=$4,
            landlord_notes=$5, viewed_by_landlord=$6, completed_at=$7,
            updated_at=NOW()
    `
	args := []any{
		m.Title, m.Description, string(m.Priority), string(m.Status),
		m.LandlordNotes, m.ViewedByLandlord, m.CompletedAt,
	}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$8 AND row_version=$9`
		args = append(args, m.ID, expected)
	} else {
		sql += ` WHERE id=$8`
		args = append(args, m.ID)
	}

	return r.db.Exec(ctx, sql, args...)
}

/* ---------- images ---------- */

func (r *maintenanceRepo) CountImages(ctx context.Context, requestID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM maintenance_images WHERE request_id=$1`, requestID).Scan(&n)
	return n, err
}

func (r *maintenanceRepo) ListImages(ctx context.Context, requestID uuid.UUID) ([]*models.MaintenanceImage, error) {
	rows, err := r.db.Query(ctx, baseSelectMaintenanceImage()+
		" WHERE request_id=$1 ORDER BY position, created_at", requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MaintenanceImage
	for rows.Next() {
		img, err := scanMaintenanceImage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (r *maintenanceRepo) GetImage(ctx context.Context, imageID uuid.UUID) (*models.MaintenanceImage, error) {
	row := r.db.QueryRow(ctx, baseSelectMaintenanceImage()+" WHERE id=$1", imageID)
	return scanMaintenanceImage(row)
}

func (r *maintenanceRepo) AddImages(ctx context.Context, requestID uuid.UUID, urls []string, startPos int) error {
	for i, url := range urls {
		_, err := r.db.Exec(ctx, `
            INSERT INTO maintenance_images (id, request_id, image_url, position, created_at)
            VALUES ($1,$2,$3,$4, NOW())
        `, uuid.New(), requestID, url, startPos+i)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *maintenanceRepo) DeleteImage(ctx context.Context, imageID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM maintenance_images WHERE id=$1`, imageID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ---------- internals ---------- */

func baseSelectMaintenance() string {
	return `
        SELECT id, tenancy_id, tenant_id, landlord_id, property_id,
               title, description, priority, status,
               landlord_notes, viewed_by_landlord, completed_at,
               created_at, updated_at, row_version
        FROM maintenance_requests
    `
}

func scanMaintenance(row pgx.Row) (*models.MaintenanceRequest, error) {
	var m models.MaintenanceRequest
	var priority, status string
	err := row.Scan(
		&m.ID,
		&m.TenancyID,
		&m.TenantID,
		&m.LandlordID,
		&m.PropertyID,
		&m.Title,
		&m.Description,
		&priority,
		&status,
		&m.LandlordNotes,
		&m.ViewedByLandlord,
		&m.CompletedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	m.Priority = models.MaintenancePriority(priority)
	m.Status = models.MaintenanceStatus(status)
	return &m, nil
}

func baseSelectMaintenanceImage() string {
	return `
        SELECT id, request_id, image_url, position, created_at
        FROM maintenance_images
    `
}

func scanMaintenanceImage(row pgx.Row) (*models.MaintenanceImage, error) {
	var img models.MaintenanceImage
	err := row.Scan(
		&img.ID,
		&img.RequestID,
		&img.ImageURL,
		&img.Position,
		&img.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}
