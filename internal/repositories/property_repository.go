package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/shopspring/decimal"

	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/utils"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

// MarketplaceFilter narrows the public listing search. Zero values
// mean "no constraint".
type MarketplaceFilter struct {
	Query        string
	State        string
	ListingType  models.ListingType
	PropertyType models.PropertyType
	MinBedrooms  *int
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal

	Limit  int
	Offset int
}

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Property, error)

	// Search lists marketplace-visible properties plus the unpaged total.
	Search(ctx context.Context, f MarketplaceFilter) ([]*models.Property, int, error)

	// Update blind-overwrites the landlord-editable columns.
	Update(ctx context.Context, p *models.Property) error
	UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error

	// DeleteCascade removes the property with its invitations,
	// applications, images, terminated-tenancy history and their
	// maintenance records, all in one transaction. Refused while a
	// non-terminated tenancy exists.
	DeleteCascade(ctx context.Context, id uuid.UUID) error

	// OccupancyCounts returns (total, occupied) for one landlord.
	OccupancyCounts(ctx context.Context, landlordID uuid.UUID) (int, int, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyRepo struct {
	*BaseVersionedRepo[*models.Property]
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	r := &propertyRepo{db: db}
	selectStmt := baseSelectProperty() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanProperty)
	return r
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO properties (
            id, landlord_id, title, description, address, city, state, unit_number,
            property_type, listing_type, bedrooms,
            rent_amount, rent_period_months, shortlet_start, shortlet_end,
            is_occupied, is_available, photo_url,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18, NOW(), NOW(), 1)
    `,
		p.ID,
		p.LandlordID,
		p.Title,
		p.Description,
		p.Address,
		p.City,
		p.State,
		p.UnitNumber,
		string(p.PropertyType),
		string(p.ListingType),
		p.Bedrooms,
		p.RentAmount,
		p.RentPeriodMonths,
		p.ShortletStart,
		p.ShortletEnd,
		p.IsOccupied,
		p.IsAvailable,
		p.PhotoURL,
	)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *propertyRepo) ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx,
		baseSelectProperty()+" WHERE landlord_id=$1 ORDER BY created_at DESC", landlordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *propertyRepo) Search(ctx context.Context, f MarketplaceFilter) ([]*models.Property, int, error) {
	where, args := buildMarketplaceWhere(f)

	var total int
	if err := r.db.QueryRow(ctx,
		"SELECT count(*) FROM properties"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	idx := len(args) + 1
	sql := baseSelectProperty() + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// buildMarketplaceWhere renders the shared WHERE clause for Search and
// its count query. Only available listings are ever visible.
func buildMarketplaceWhere(f MarketplaceFilter) (string, []any) {
	conditions := []string{"is_available = TRUE"}
	var args []any
	idx := 1

	add := func(cond string, value any) {
		conditions = append(conditions, fmt.Sprintf(cond, idx))
		args = append(args, value)
		idx++
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR address ILIKE $%d OR description ILIKE $%d)", idx, idx, idx))
		args = append(args, "%"+q+"%")
		idx++
	}
	if f.State != "" {
		add("state = $%d", f.State)
	}
	if f.ListingType != "" {
		add("listing_type = $%d", string(f.ListingType))
	}
	if f.PropertyType != "" {
		add("property_type = $%d", string(f.PropertyType))
	}
	if f.MinBedrooms != nil {
		add("bedrooms >= $%d", *f.MinBedrooms)
	}
	if f.MinPrice != nil {
		add("rent_amount >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("rent_amount <= $%d", *f.MaxPrice)
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *propertyRepo) Update(ctx context.Context, p *models.Property) error {
	_, err := r.update(ctx, p, false, 0)
	return err
}

func (r *propertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, p, true, expected)
}

func (r *propertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *propertyRepo) update(ctx context.Context, p *models.Property, check bool, expected int64) (pgconn.CommandTag, error) {
	sql := `
        UPDATE properties SET
            title=$1, description=$2, address=$3, city=$4, state=$5, unit_number=$6,
            property_type=$7, listing_type=$8, bedrooms=$9,
            rent_amount=$10, rent_period_months=$11, shortlet_start=$12, shortlet_end=$13,
            is_available=$14, photo_url=$15, updated_at=NOW()
    `
	args := []any{
		p.Title, p.Description, p.Address, p.City, p.State, p.UnitNumber,
		string(p.PropertyType), string(p.ListingType), p.Bedrooms,
		p.RentAmount, p.RentPeriodMonths, p.ShortletStart, p.ShortletEnd,
		p.IsAvailable, p.PhotoURL,
	}
	if check {
		sql += `, row_version=row_version+1 WHERE id=$16 AND row_version=$17`
		args = append(args, p.ID, expected)
	} else {
		sql += ` WHERE id=$16`
		args = append(args, p.ID)
	}

	return r.db.Exec(ctx, sql, args...)
}

func (r *propertyRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
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

	row := tx.QueryRow(ctx, baseSelectProperty()+" WHERE id=$1 FOR UPDATE", id)
	p, err := scanProperty(row)
	if err != nil {
		return err
	}
	if p == nil {
		return pgx.ErrNoRows
	}

	var occupied bool
	err = tx.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM tenancies
            WHERE property_id = $1 AND status IN ('active','pending_termination')
        )`, id).Scan(&occupied)
	if err != nil {
		return err
	}
	if occupied {
		return utils.ErrPropertyOccupied
	}

	// Explicit cascade, innermost rows first.
	statements := []string{
		`DELETE FROM maintenance_images WHERE request_id IN
		    (SELECT id FROM maintenance_requests WHERE property_id = $1)`,
		`DELETE FROM maintenance_requests WHERE property_id = $1`,
		`DELETE FROM tenancies WHERE property_id = $1`,
		`DELETE FROM tenancy_applications WHERE property_id = $1`,
		`DELETE FROM invitation_links WHERE property_id = $1`,
		`DELETE FROM property_images WHERE property_id = $1`,
		`DELETE FROM properties WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err = tx.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *propertyRepo) OccupancyCounts(ctx context.Context, landlordID uuid.UUID) (int, int, error) {
	var total, occupied int
	err := r.db.QueryRow(ctx, `
        SELECT count(*),
               count(*) FILTER (WHERE is_occupied)
        FROM properties
        WHERE landlord_id = $1
    `, landlordID).Scan(&total, &occupied)
	return total, occupied, err
}

func baseSelectProperty() string {
	return `
        SELECT
            id, landlord_id, title, description, address, city, state, unit_number,
            property_type, listing_type, bedrooms,
            rent_amount, rent_period_months, shortlet_start, shortlet_end,
            is_occupied, is_available, photo_url,
            created_at, updated_at, row_version
        FROM properties
    `
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	var propertyType, listingType string
	err := row.Scan(
		&p.ID,
		&p.LandlordID,
		&p.Title,
		&p.Description,
		&p.Address,
		&p.City,
		&p.State,
		&p.UnitNumber,
		&propertyType,
		&listingType,
		&p.Bedrooms,
		&p.RentAmount,
		&p.RentPeriodMonths,
		&p.ShortletStart,
		&p.ShortletEnd,
		&p.IsOccupied,
		&p.IsAvailable,
		&p.PhotoURL,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.RowVersion,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.PropertyType = models.PropertyType(propertyType)
	p.ListingType = models.ListingType(listingType)
	return &p, nil
}
