package workflow

import (
	"context"
	"errors"

	"github.com/kendall-kelly/prepress-orders-api/models"
)

// UserLookup resolves identities. Implementations return an error wrapping ErrNotFound for unknown ids.
type UserLookup interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

// Assigner validates assignment targets for stages, claims and tasks
type Assigner struct {
	users UserLookup
}

// NewAssigner creates an assigner backed by the given lookup
func NewAssigner(users UserLookup) Assigner {
	return Assigner{users: users}
}

// Resolve returns the employee with the given id, or InvalidAssignee when the id is
// missing, unknown, or belongs to someone who is not an employee.
func (a Assigner) Resolve(ctx context.Context, employeeID uint) (*models.User, error) {
	if employeeID == 0 {
		return nil, InvalidAssignee("employee id is required")
	}

	user, err := a.users.FindUserByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, InvalidAssignee("invalid employee id %d", employeeID)
		}
		return nil, err
	}

	if user.Role != models.RoleEmployee {
		return nil, InvalidAssignee("user %d is not an employee", employeeID)
	}
	return user, nil
}
