package repository

import (
	"context"
	"errors"
	"time"

	"fieldtrack-backend/internal/db"
	"fieldtrack-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrNotFound is returned when a record does not exist or is outside the
// caller's tenant.
var ErrNotFound = errors.New("not found")

// IsDuplicate detects unique constraint violation.
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}

type UserRepository struct {
	DB *db.Postgres
}

type CreateUserParams struct {
	OwnerID            *int64
	Name               string
	Email              string
	Phone              string
	Role               domain.UserRole
	PasswordHash       *string
	PlanType           string
	SubscriptionStatus string
	SubscriptionExpiry *time.Time
	OwnedDomain        *string
}

const userColumns = `id, owner_id, name, email, phone, role, password_hash, is_on_duty,
	       last_latitude, last_longitude, last_location_update,
	       plan_type, subscription_status, subscription_expiry, owned_domain,
	       created_at, updated_at`

func (r UserRepository) Create(ctx context.Context, p CreateUserParams) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO users (owner_id, name, email, phone, role, password_hash,
		                   plan_type, subscription_status, subscription_expiry, owned_domain,
		                   created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, now(), now())
		RETURNING `+userColumns+`
	`, p.OwnerID, p.Name, p.Email, p.Phone, p.Role, p.PasswordHash,
		p.PlanType, p.SubscriptionStatus, p.SubscriptionExpiry, p.OwnedDomain)
	return scanUser(row)
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(email)=lower($1) AND deleted_at IS NULL
	`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Exists backs token verification: a deleted account fails the check and its
// outstanding tokens stop working.
func (r UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id=$1 AND deleted_at IS NULL)
	`, id).Scan(&exists)
	return exists, err
}

// GetEmployeeForOwner resolves an employee only within the owner's tenant.
func (r UserRepository) GetEmployeeForOwner(ctx context.Context, ownerID, employeeID int64) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id=$1 AND owner_id=$2 AND role=$3 AND deleted_at IS NULL
	`, employeeID, ownerID, domain.RoleEmployee)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r UserRepository) ListEmployees(ctx context.Context, ownerID int64) ([]domain.User, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE owner_id=$1 AND role=$2 AND deleted_at IS NULL
		ORDER BY name ASC
	`, ownerID, domain.RoleEmployee)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r UserRepository) ListOwners(ctx context.Context) ([]domain.User, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role=$1 AND deleted_at IS NULL
		ORDER BY name ASC
	`, domain.RoleOwner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

type UpdateUserParams struct {
	Name  *string
	Phone *string
}

func (r UserRepository) UpdateProfile(ctx context.Context, id int64, p UpdateUserParams) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE users SET
			name  = COALESCE($2, name),
			phone = COALESCE($3, phone),
			updated_at = now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING `+userColumns+`
	`, id, p.Name, p.Phone)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

type UpdateSubscriptionParams struct {
	PlanType           *string
	SubscriptionStatus *string
	SubscriptionExpiry *time.Time
	OwnedDomain        *string
}

func (r UserRepository) UpdateSubscription(ctx context.Context, ownerID int64, p UpdateSubscriptionParams) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE users SET
			plan_type           = COALESCE($2, plan_type),
			subscription_status = COALESCE($3, subscription_status),
			subscription_expiry = COALESCE($4, subscription_expiry),
			owned_domain        = COALESCE($5, owned_domain),
			updated_at = now()
		WHERE id=$1 AND role=$6 AND deleted_at IS NULL
		RETURNING `+userColumns+`
	`, ownerID, p.PlanType, p.SubscriptionStatus, p.SubscriptionExpiry, p.OwnedDomain, domain.RoleOwner)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE users SET password_hash=$2, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
	`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes a user. Deleting an owner cascades to the tenant's
// employees, shops, and routes in the same transaction.
func (r UserRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var role string
	err = tx.QueryRow(ctx, `
		UPDATE users SET deleted_at=now() WHERE id=$1 AND deleted_at IS NULL
		RETURNING role
	`, id).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if domain.UserRole(role) == domain.RoleOwner {
		if _, err := tx.Exec(ctx, `UPDATE users SET deleted_at=now() WHERE owner_id=$1 AND deleted_at IS NULL`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE shops SET deleted_at=now() WHERE owner_id=$1 AND deleted_at IS NULL`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE routes SET deleted_at=now() WHERE owner_id=$1 AND deleted_at IS NULL`, id); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u       domain.User
		role    string
		ownerID pgtype.Int8
		lastLat pgtype.Float8
		lastLng pgtype.Float8
	)
	if err := row.Scan(
		&u.ID,
		&ownerID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&role,
		&u.PasswordHash,
		&u.IsOnDuty,
		&lastLat,
		&lastLng,
		&u.LastLocationUpdate,
		&u.PlanType,
		&u.SubscriptionStatus,
		&u.SubscriptionExpiry,
		&u.OwnedDomain,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.UserRole(role)
	if ownerID.Valid {
		u.OwnerID = &ownerID.Int64
	}
	if lastLat.Valid {
		u.LastLatitude = &lastLat.Float64
	}
	if lastLng.Valid {
		u.LastLongitude = &lastLng.Float64
	}
	return &u, nil
}

func collectUsers(rows pgx.Rows) ([]domain.User, error) {
	var items []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	return items, rows.Err()
}
