package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/models"
)

type PropertyImageRepository interface {
	Create(ctx context.Context, img *models.PropertyImage) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PropertyImage, error)
	ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.PropertyImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type propertyImageRepo struct {
	db DB
}

func NewPropertyImageRepository(db DB) PropertyImageRepository {
	return &propertyImageRepo{db: db}
}

func (r *propertyImageRepo) Create(ctx context.Context, img *models.PropertyImage) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO property_images (id, property_id, image_url, caption, position, created_at)
        VALUES ($1,$2,$3,$4,$5, NOW())
    `, img.ID, img.PropertyID, img.ImageURL, img.Caption, img.Position)
	return err
}

func (r *propertyImageRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PropertyImage, error) {
	row := r.db.QueryRow(ctx, baseSelectPropertyImage()+" WHERE id=$1", id)
	return scanPropertyImage(row)
}

func (r *propertyImageRepo) ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.PropertyImage, error) {
	rows, err := r.db.Query(ctx,
		baseSelectPropertyImage()+" WHERE property_id=$1 ORDER BY position, created_at", propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PropertyImage
	for rows.Next() {
		img, err := scanPropertyImage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (r *propertyImageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM property_images WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func baseSelectPropertyImage() string {
	return `
        SELECT id, property_id, image_url, caption, position, created_at
        FROM property_images
    `
}

func scanPropertyImage(row pgx.Row) (*models.PropertyImage, error) {
	var img models.PropertyImage
	err := row.Scan(
		&img.ID,
		&img.PropertyID,
		&img.ImageURL,
		&img.Caption,
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
