package workflow

import (
	"slices"

	"github.com/kendall-kelly/prepress-orders-api/models"
)

// EntityKind is the type of entity a guard decision is about
type EntityKind string

const (
	KindOrder EntityKind = "order"
	KindClaim EntityKind = "claim"
	KindTask  EntityKind = "task"
)

// Action is an operation an actor asks to perform
type Action string

const (
	ActionCreate    Action = "create"
	ActionView      Action = "view"
	ActionUpdate    Action = "update"
	ActionSetStatus Action = "set_status"
	ActionAssign    Action = "assign"
	ActionAttach    Action = "attach"
	ActionComplete  Action = "complete"
	ActionDelete    Action = "delete"
)

// Subject is the guard's view of an entity: who owns it, who works on it, where it is
type Subject struct {
	Kind       EntityKind
	OwnerID    uint
	Status     string
	IsAssignee func(userID uint) bool
}

// OrderSubject describes an order for the guard
func OrderSubject(o *models.Order) Subject {
	return Subject{Kind: KindOrder, OwnerID: o.ClientID, Status: string(o.Status), IsAssignee: o.IsAssignee}
}

// ClaimSubject describes a claim for the guard
func ClaimSubject(c *models.Claim) Subject {
	return Subject{Kind: KindClaim, OwnerID: c.ClientID, Status: string(c.Status), IsAssignee: c.IsAssignee}
}

// claimFilingSubject describes the order a claim is filed against; only its owner may file
func claimFilingSubject(o *models.Order) Subject {
	return Subject{Kind: KindClaim, OwnerID: o.ClientID}
}

// TaskSubject describes a task for the guard
func TaskSubject(t *models.Task) Subject {
	return Subject{Kind: KindTask, Status: string(t.Status), IsAssignee: t.IsAssignee}
}

type policy func(actor Actor, s Subject) error

func allow(Actor, Subject) error { return nil }

func ownerOnly(actor Actor, s Subject) error {
	if s.OwnerID != actor.ID {
		return NotAuthorized("not authorized to access this %s", s.Kind)
	}
	return nil
}

func assigneeOnly(actor Actor, s Subject) error {
	if s.IsAssignee == nil || !s.IsAssignee(actor.ID) {
		return NotAuthorized("not authorized to access this %s", s.Kind)
	}
	return nil
}

func clientStatusChange(_ Actor, s Subject) error {
	return ForbiddenTransition("clients cannot change the status of a %s", s.Kind)
}

// clientEditableStatuses are the early states in which the owning client may still edit
var clientEditableStatuses = map[EntityKind][]string{
	KindOrder: {string(models.OrderSubmitted), string(models.OrderInReview)},
	KindClaim: {string(models.ClaimSubmitted), string(models.ClaimUnderReview)},
}

func ownerWhileEditable(actor Actor, s Subject) error {
	if err := ownerOnly(actor, s); err != nil {
		return err
	}
	if !slices.Contains(clientEditableStatuses[s.Kind], s.Status) {
		return ForbiddenTransition("%s cannot be modified in status %q", s.Kind, s.Status)
	}
	return nil
}

// byRole maps a role to its policy; a role missing from the map is not authorized
type byRole map[models.Role]policy

// rolesWhere applies p to every role that passes keep
func rolesWhere(p policy, keep func(models.Role) bool) byRole {
	out := byRole{}
	for _, role := range models.Roles {
		if keep(role) {
			out[role] = p
		}
	}
	return out
}

func staff(p policy) byRole {
	return rolesWhere(p, models.Role.IsStaff)
}

func managers(p policy) byRole {
	return rolesWhere(p, models.Role.CanAssign)
}

func with(base byRole, role models.Role, p policy) byRole {
	out := make(byRole, len(base)+1)
	for r, existing := range base {
		out[r] = existing
	}
	out[role] = p
	return out
}

// viewRules: clients see their own, employees what they are assigned to, managers everything
var viewRules = byRole{
	models.RoleClient:   ownerOnly,
	models.RoleEmployee: assigneeOnly,
	models.RoleManager:  allow,
	models.RoleAdmin:    allow,
}

// rules is the single (entity, action, role) -> decision table
var rules = map[EntityKind]map[Action]byRole{
	KindOrder: {
		ActionCreate:    {models.RoleClient: allow},
		ActionView:      viewRules,
		ActionAttach:    viewRules,
		ActionUpdate:    with(staff(allow), models.RoleClient, ownerWhileEditable),
		ActionSetStatus: with(staff(allow), models.RoleClient, clientStatusChange),
		ActionAssign:    managers(allow),
	},
	KindClaim: {
		ActionCreate:    {models.RoleClient: ownerOnly},
		ActionView:      viewRules,
		ActionAttach:    viewRules,
		ActionUpdate:    with(staff(allow), models.RoleClient, ownerWhileEditable),
		ActionSetStatus: with(staff(allow), models.RoleClient, clientStatusChange),
		ActionAssign:    managers(allow),
	},
	KindTask: {
		ActionCreate:   managers(allow),
		ActionView:     with(managers(allow), models.RoleEmployee, assigneeOnly),
		ActionUpdate:   with(managers(allow), models.RoleEmployee, assigneeOnly),
		ActionComplete: staff(assigneeOnly),
		ActionAssign:   managers(allow),
		ActionDelete:   managers(allow),
	},
}

// Authorize decides whether actor may perform action on subject
func Authorize(actor Actor, action Action, s Subject) error {
	p, ok := rules[s.Kind][action][actor.Role]
	if !ok {
		return NotAuthorized("%s is not allowed to %s this %s", roleLabel(actor.Role), action, s.Kind)
	}
	return p(actor, s)
}

// mutableFields lists the fields each role may set through a partial update.
// Status, stages, history, owner and identity numbers are absent on purpose:
// they only change through dedicated operations.
var mutableFields = map[EntityKind]byRoleFields{
	KindOrder: staffFields(
		[]string{"title", "description", "specifications"},
		[]string{"title", "description", "specifications", "order_type", "priority", "deadline",
			"estimated_cost", "final_cost", "currency", "payment_status", "stage_notes",
			"tracking_number", "delivery_method"},
	),
	KindClaim: staffFields(
		[]string{"title", "description", "severity"},
		[]string{"title", "description", "severity", "claim_type"},
	),
	KindTask: {
		models.RoleEmployee: {"notes", "progress"},
		models.RoleManager:  {"title", "description", "due_date", "priority", "task_type", "notes", "progress"},
		models.RoleAdmin:    {"title", "description", "due_date", "priority", "task_type", "notes", "progress"},
	},
}

type byRoleFields map[models.Role][]string

func staffFields(client, staff []string) byRoleFields {
	return byRoleFields{
		models.RoleClient:   client,
		models.RoleEmployee: staff,
		models.RoleManager:  staff,
		models.RoleAdmin:    staff,
	}
}

// AuthorizeFields rejects any field outside the role's allow-list
func AuthorizeFields(actor Actor, kind EntityKind, fields []string) error {
	allowed := mutableFields[kind][actor.Role]
	for _, field := range fields {
		if !slices.Contains(allowed, field) {
			return ForbiddenTransition("%s may not change %s field %q", roleLabel(actor.Role), kind, field)
		}
	}
	return nil
}

func roleLabel(role models.Role) string {
	if role == "" {
		return "unknown role"
	}
	return string(role)
}
