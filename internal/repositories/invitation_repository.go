package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/models"
	"github.com/rentline/rental-service/internal/utils"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type InvitationRepository interface {
	Create(ctx context.Context, l *models.InvitationLink) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.InvitationLink, error)
	GetByToken(ctx context.Context, token uuid.UUID) (*models.InvitationLink, error)
	ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.InvitationLink, error)
	ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.InvitationLink, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// RedeemAtomic runs the whole redemption in one transaction:
	// registers the tenant, opens the tenancy, flags the property
	// occupied and unavailable, and burns the link. The invitation and
	// property rows are locked first so concurrent redeems of the same
	// link serialize.
	RedeemAtomic(ctx context.Context, token uuid.UUID, tenant *models.User, moveIn time.Time) (*models.Tenancy, error)

	// PurgeExpired deletes unused links whose expiry predates the
	// cutoff, returning how many went away. Validity checks never
	// depend on this; it is housekeeping only.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type invitationRepo struct {
	db DB
}

func NewInvitationRepository(db DB) InvitationRepository {
	return &invitationRepo{db: db}
}

func (r *invitationRepo) Create(ctx context.Context, l *models.InvitationLink) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO invitation_links (id, landlord_id, property_id, token, tenant_email, is_used, created_at, expires_at)
        VALUES ($1,$2,$3,$4,$5,$6, NOW(), $7)
    `, l.ID, l.LandlordID, l.PropertyID, l.Token, emailArg(l.TenantEmail), l.IsUsed, l.ExpiresAt)
	return err
}

func (r *invitationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.InvitationLink, error) {
	row := r.db.QueryRow(ctx, baseSelectInvitation()+" WHERE id=$1", id)
	return scanInvitation(row)
}

func (r *invitationRepo) GetByToken(ctx context.Context, token uuid.UUID) (*models.InvitationLink, error) {
	row := r.db.QueryRow(ctx, baseSelectInvitation()+" WHERE token=$1", token)
	return scanInvitation(row)
}

func (r *invitationRepo) ListByLandlordID(ctx context.Context, landlordID uuid.UUID) ([]*models.InvitationLink, error) {
	return r.list(ctx, " WHERE landlord_id=$1 ORDER BY created_at DESC", landlordID)
}

func (r *invitationRepo) ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.InvitationLink, error) {
	return r.list(ctx, " WHERE property_id=$1 ORDER BY created_at DESC", propertyID)
}

func (r *invitationRepo) list(ctx context.Context, where string, arg any) ([]*models.InvitationLink, error) {
	rows, err := r.db.Query(ctx, baseSelectInvitation()+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.InvitationLink
	for rows.Next() {
		l, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *invitationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invitation_links WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *invitationRepo) RedeemAtomic(
	ctx context.Context,
	token uuid.UUID,
	tenant *models.User,
	moveIn time.Time,
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

	row := tx.QueryRow(ctx, baseSelectInvitation()+" WHERE token=$1 FOR UPDATE", token)
	inv, err := scanInvitation(row)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, pgx.ErrNoRows
	}
	if inv.IsUsed {
		return nil, utils.ErrInvitationUsed
	}
	if inv.IsExpired() {
		return nil, utils.ErrInvitationExpired
	}

	prow := tx.QueryRow(ctx, baseSelectProperty()+" WHERE id=$1 FOR UPDATE", inv.PropertyID)
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

	_, err = tx.Exec(ctx, `
		INSERT INTO users (
			id, username, email, password_hash, role,
			first_name, last_name, gender,
			phone_number, whatsapp_number, telegram_username, show_phone,
			profile_picture_url,
			created_at, updated_at, row_version
		) VALUES (
			$1,$2,$3,$4,$5,
			$6,$7,$8,
			$9,$10,$11,$12,
			$13,
			NOW(), NOW(), 1
		)`,
		tenant.ID, tenant.Username, strings.ToLower(tenant.Email), tenant.PasswordHash, string(models.RoleTenant),
		tenant.FirstName, tenant.LastName, genderArg(tenant.Gender),
		tenant.PhoneNumber, tenant.WhatsappNumber, tenant.TelegramUsername, tenant.ShowPhone,
		tenant.ProfilePictureURL,
	)
	if err != nil {
		return nil, err
	}

	t := &models.Tenancy{
		ID:         uuid.New(),
		TenantID:   tenant.ID,
		LandlordID: inv.LandlordID,
		PropertyID: inv.PropertyID,
		Status:     models.TenancyActive,
		StartDate:  moveIn,
	}
	_, err = tx.Exec(ctx, `
        INSERT INTO tenancies (
            id, tenant_id, landlord_id, property_id, application_id,
            status, landlord_terminated, tenant_terminated,
            start_date, terminated_at, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,NULL,$5,FALSE,FALSE,$6,NULL, NOW(), NOW())
    `, t.ID, t.TenantID, t.LandlordID, t.PropertyID, string(t.Status), t.StartDate)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
        UPDATE properties
        SET is_occupied=TRUE, is_available=FALSE, row_version=row_version+1, updated_at=NOW()
        WHERE id=$1
    `, inv.PropertyID)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE invitation_links SET is_used=TRUE WHERE id=$1`, inv.ID)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectTenancy()+" WHERE id=$1", t.ID)
	return scanTenancy(newRow)
}

func (r *invitationRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM invitation_links WHERE is_used=FALSE AND expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

/* ---------- internals ---------- */

func emailArg(email *string) *string {
	if email == nil {
		return nil
	}
	lowered := strings.ToLower(*email)
	return &lowered
}

func baseSelectInvitation() string {
	return `
        SELECT id, landlord_id, property_id, token, tenant_email, is_used, created_at, expires_at
        FROM invitation_links
    `
}

func scanInvitation(row pgx.Row) (*models.InvitationLink, error) {
	var l models.InvitationLink
	err := row.Scan(
		&l.ID,
		&l.LandlordID,
		&l.PropertyID,
		&l.Token,
		&l.TenantEmail,
		&l.IsUsed,
		&l.CreatedAt,
		&l.ExpiresAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}
