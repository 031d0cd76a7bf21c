package handler

import (
	"context"
	"errors"

	"fieldtrack-backend/internal/domain"
	"fieldtrack-backend/internal/repository"
	"fieldtrack-backend/internal/server/authctx"
)

// resolveTenantID maps the current user to the owner id that scopes their
// data: owners are their own tenant, employees belong to theirs.
func resolveTenantID(ctx context.Context, user authctx.CurrentUser, users repository.UserRepository) (int64, error) {
	switch user.Role {
	case domain.RoleOwner:
		return user.ID, nil
	case domain.RoleEmployee:
		u, err := users.GetByID(ctx, user.ID)
		if err != nil {
			return 0, errors.New("employee not found")
		}
		if u.OwnerID == nil {
			return 0, errors.New("employee has no owner")
		}
		return *u.OwnerID, nil
	default:
		return 0, errors.New("invalid role")
	}
}

func floatOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
