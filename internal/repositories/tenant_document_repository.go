package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/models"
)

type TenantDocumentRepository interface {
	Create(ctx context.Context, d *models.TenantDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TenantDocument, error)
	ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.TenantDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tenantDocumentRepo struct {
	db DB
}

func NewTenantDocumentRepository(db DB) TenantDocumentRepository {
	return &tenantDocumentRepo{db: db}
}

func (r *tenantDocumentRepo) Create(ctx context.Context, d *models.TenantDocument) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO tenant_documents (id, tenant_id, name, file_url, created_at)
        VALUES ($1,$2,$3,$4, NOW())
    `, d.ID, d.TenantID, d.Name, d.FileURL)
	return err
}

func (r *tenantDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.TenantDocument, error) {
	row := r.db.QueryRow(ctx, baseSelectTenantDocument()+" WHERE id=$1", id)
	return scanTenantDocument(row)
}

func (r *tenantDocumentRepo) ListByTenantID(ctx context.Context, tenantID uuid.UUID) ([]*models.TenantDocument, error) {
	rows, err := r.db.Query(ctx,
		baseSelectTenantDocument()+" WHERE tenant_id=$1 ORDER BY created_at DESC", tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.TenantDocument
	for rows.Next() {
		d, err := scanTenantDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *tenantDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tenant_documents WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectTenantDocument() string {
	return `
        SELECT id, tenant_id, name, file_url, created_at
        FROM tenant_documents
    `
}

func scanTenantDocument(row pgx.Row) (*models.TenantDocument, error) {
	var d models.TenantDocument
	err := row.Scan(
		&d.ID,
		&d.TenantID,
		&d.Name,
		&d.FileURL,
		&d.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
