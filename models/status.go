package models

// Role identifies what an authenticated user may do in the system
type Role string

const (
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Roles lists every known role
var Roles = []Role{RoleClient, RoleEmployee, RoleManager, RoleAdmin}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether r belongs to the print shop (employee, manager or admin)
func (r Role) IsStaff() bool {
	return r == RoleEmployee || r == RoleManager || r == RoleAdmin
}

// CanAssign reports whether r may hand work to employees
func (r Role) CanAssign() bool {
	return r == RoleManager || r == RoleAdmin
}

// OrderStatus is the single overall status of an order
type OrderStatus string

const (
	OrderSubmitted          OrderStatus = "Submitted"
	OrderInReview           OrderStatus = "In Review"
	OrderApproved           OrderStatus = "Approved"
	OrderInPrepress         OrderStatus = "In Prepress"
	OrderReadyForProduction OrderStatus = "Ready for Production"
	OrderInProduction       OrderStatus = "In Production"
	OrderCompleted          OrderStatus = "Completed"
	OrderDelivered          OrderStatus = "Delivered"
	OrderCancelled          OrderStatus = "Cancelled"
	OrderOnHold             OrderStatus = "On Hold"
)

// OrderStatuses lists every overall order status in workflow order
var OrderStatuses = []OrderStatus{
	OrderSubmitted,
	OrderInReview,
	OrderApproved,
	OrderInPrepress,
	OrderReadyForProduction,
	OrderInProduction,
	OrderCompleted,
	OrderDelivered,
	OrderCancelled,
	OrderOnHold,
}

// IsValid reports whether s is a known order status
func (s OrderStatus) IsValid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// StageName names one of the four production stages of an order
type StageName string

const (
	StageReview     StageName = "review"
	StagePrepress   StageName = "prepress"
	StageProduction StageName = "production"
	StageDelivery   StageName = "delivery"
)

// StageNames lists the stages in the order work flows through them
var StageNames = []StageName{StageReview, StagePrepress, StageProduction, StageDelivery}

// IsValid reports whether n is one of the four stages
func (n StageName) IsValid() bool {
	switch n {
	case StageReview, StagePrepress, StageProduction, StageDelivery:
		return true
	}
	return false
}

// StageStatus is the state of a single order stage
type StageStatus string

const (
	StagePending       StageStatus = "Pending"
	StageInProgress    StageStatus = "In Progress"
	StageCompleted     StageStatus = "Completed"
	StageRejected      StageStatus = "Rejected"
	StageNotApplicable StageStatus = "N/A"
)

// ValidFor reports whether s is allowed on the given stage. Delivery cannot be rejected.
func (s StageStatus) ValidFor(stage StageName) bool {
	switch s {
	case StagePending, StageInProgress, StageCompleted, StageNotApplicable:
		return true
	case StageRejected:
		return stage != StageDelivery
	}
	return false
}

// ClaimStatus is the lifecycle state of a quality claim
type ClaimStatus string

const (
	ClaimSubmitted   ClaimStatus = "Submitted"
	ClaimUnderReview ClaimStatus = "Under Review"
	ClaimInProgress  ClaimStatus = "In Progress"
	ClaimResolved    ClaimStatus = "Resolved"
	ClaimRejected    ClaimStatus = "Rejected"
	ClaimClosed      ClaimStatus = "Closed"
)

// IsValid reports whether s is a known claim status
func (s ClaimStatus) IsValid() bool {
	switch s {
	case ClaimSubmitted, ClaimUnderReview, ClaimInProgress, ClaimResolved, ClaimRejected, ClaimClosed:
		return true
	}
	return false
}

// RequiresResolution reports whether reaching s records a resolution
func (s ClaimStatus) RequiresResolution() bool {
	return s == ClaimResolved || s == ClaimRejected
}

// Severity grades how serious a claim is
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// IsValid reports whether s is a known severity
func (s Severity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// ClaimType classifies what went wrong with a delivered order
type ClaimType string

const (
	ClaimQualityIssue ClaimType = "Quality Issue"
	ClaimDamaged      ClaimType = "Damaged"
	ClaimWrongItem    ClaimType = "Wrong Item"
	ClaimLateDelivery ClaimType = "Late Delivery"
	ClaimMissingItems ClaimType = "Missing Items"
	ClaimOther        ClaimType = "Other"
)

// IsValid reports whether t is a known claim type
func (t ClaimType) IsValid() bool {
	switch t {
	case ClaimQualityIssue, ClaimDamaged, ClaimWrongItem, ClaimLateDelivery, ClaimMissingItems, ClaimOther:
		return true
	}
	return false
}

// Priority is shared by orders and tasks
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// IsValid reports whether p is a known priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// OrderType describes what kind of print job was requested
type OrderType string

const (
	OrderTypeNewDesign    OrderType = "New Design"
	OrderTypeReprint      OrderType = "Reprint"
	OrderTypeModification OrderType = "Modification"
	OrderTypeOther        OrderType = "Other"
)

// IsValid reports whether t is a known order type
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeNewDesign, OrderTypeReprint, OrderTypeModification, OrderTypeOther:
		return true
	}
	return false
}

// FinishType is the surface finish of printed material
type FinishType string

const (
	FinishMatte      FinishType = "Matte"
	FinishGlossy     FinishType = "Glossy"
	FinishSemiGlossy FinishType = "Semi-Glossy"
	FinishNone       FinishType = "None"
)

// IsValid reports whether f is a known finish
func (f FinishType) IsValid() bool {
	switch f {
	case FinishMatte, FinishGlossy, FinishSemiGlossy, FinishNone:
		return true
	}
	return false
}

// DimensionUnit is the unit used for order dimensions
type DimensionUnit string

const (
	UnitMillimeter DimensionUnit = "mm"
	UnitCentimeter DimensionUnit = "cm"
	UnitInch       DimensionUnit = "inch"
)

// IsValid reports whether u is a known unit
func (u DimensionUnit) IsValid() bool {
	return u == UnitMillimeter || u == UnitCentimeter || u == UnitInch
}

// PaymentStatus tracks whether the client has paid for an order
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPartial PaymentStatus = "Partial"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentOverdue PaymentStatus = "Overdue"
)

// IsValid reports whether p is a known payment status
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentOverdue:
		return true
	}
	return false
}

// TaskStatus is the state of an internal work item
type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
)

// IsValid reports whether s is a known task status
func (s TaskStatus) IsValid() bool {
	return s == TaskPending || s == TaskInProgress || s == TaskCompleted
}

// FileType classifies an uploaded attachment
type FileType string

const (
	FileDesign    FileType = "design"
	FileReference FileType = "reference"
	FileProof     FileType = "proof"
	FileClaim     FileType = "claim"
	FileOther     FileType = "other"
)

// IsValid reports whether f is a known file type
func (f FileType) IsValid() bool {
	switch f {
	case FileDesign, FileReference, FileProof, FileClaim, FileOther:
		return true
	}
	return false
}
