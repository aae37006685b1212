package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"github.com/rentline/rental-service/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByIdentifier matches username OR email, case-insensitive.
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)

	// Legacy blind overwrite
	Update(ctx context.Context, u *models.User) error

	// Optimistic-lock helpers
	UpdateIfVersion(ctx context.Context, u *models.User, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.User) error) error

	SoftDelete(ctx context.Context, id uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type userRepo struct {
	*BaseVersionedRepo[*models.User]

	db DB
}

func NewUserRepository(db DB) UserRepository {
	r := &userRepo{db: db}
	selectStmt := baseSelectUser() + " WHERE id=$1 AND deleted_at IS NULL"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanUser)
	return r
}

/* ---------- Create ---------- */

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	_, err := r.db.Exec(ctx, `
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
		u.ID, u.Username, strings.ToLower(u.Email), u.PasswordHash, string(u.Role),
		u.FirstName, u.LastName, genderArg(u.Gender),
		u.PhoneNumber, u.WhatsappNumber, u.TelegramUsername, u.ShowPhone,
		u.ProfilePictureURL,
	)
	return err
}

/* ---------- Reads ---------- */

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRow(ctx,
		baseSelectUser()+" WHERE lower(email)=lower($1) AND deleted_at IS NULL", email)
	return scanUser(row)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRow(ctx,
		baseSelectUser()+" WHERE lower(username)=lower($1) AND deleted_at IS NULL", username)
	return scanUser(row)
}

func (r *userRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	row := r.db.QueryRow(ctx,
		baseSelectUser()+` WHERE (lower(username)=lower($1) OR lower(email)=lower($1))
		 AND deleted_at IS NULL`, identifier)
	return scanUser(row)
}

/* ---------- Updates ---------- */

// Legacy blind overwrite
func (r *userRepo) Update(ctx context.Context, u *models.User) error {
	_, err := r.update(ctx, u, false, 0)
	return err
}

// Optimistic
func (r *userRepo) UpdateIfVersion(ctx context.Context, u *models.User, expected int64) (pgconn.CommandTag, error) {
	return r.update(ctx, u, true, expected)
}

func (r *userRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.User) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *userRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET deleted_at=NOW() WHERE id=$1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

/* ---------- internals ---------- */

func (r *userRepo) update(
	ctx context.Context,
	u *models.User,
	check bool,
	expected int64,
) (pgconn.CommandTag, error) {
	sql := `
		UPDATE users SET
			email=$1, password_hash=$2,
			first_name=$3, last_name=$4, gender=$5,
			phone_number=$6, whatsapp_number=$7, telegram_username=$8, show_phone=$9,
			profile_picture_url=$10,
			updated_at=NOW()`
	args := []any{
		strings.ToLower(u.Email), u.PasswordHash,
		u.FirstName, u.LastName, genderArg(u.Gender),
		u.PhoneNumber, u.WhatsappNumber, u.TelegramUsername, u.ShowPhone,
		u.ProfilePictureURL,
	}

	if check {
		sql += `, row_version=row_version+1 WHERE id=$11 AND row_version=$12`
		args = append(args, u.ID, expected)
	} else {
		sql += ` WHERE id=$11`
		args = append(args, u.ID)
	}

	return r.db.Exec(ctx, sql, args...)
}

func genderArg(g *models.GenderType) *string {
	if g == nil {
		return nil
	}
	s := string(*g)
	return &s
}

func baseSelectUser() string {
	return `
		SELECT id, username, email, password_hash, role,
		       first_name, last_name, gender,
		       phone_number, whatsapp_number, telegram_username, show_phone,
		       profile_picture_url,
		       row_version, created_at, updated_at, deleted_at
		FROM users`
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role string
	var gender *string
	var deletedAt pgtype.Timestamptz

	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role,
		&u.FirstName, &u.LastName, &gender,
		&u.PhoneNumber, &u.WhatsappNumber, &u.TelegramUsername, &u.ShowPhone,
		&u.ProfilePictureURL,
		&u.RowVersion, &u.CreatedAt, &u.UpdatedAt, &deletedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	u.Role = models.RoleType(role)
	if gender != nil {
		g := models.GenderType(*gender)
		u.Gender = &g
	}
	if deletedAt.Status == pgtype.Present {
		u.DeletedAt = &deletedAt.Time
	} else {
		u.DeletedAt = nil
	}

	return &u, nil
}
