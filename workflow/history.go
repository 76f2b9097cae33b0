package workflow

import (
	"time"

	"github.com/kendall-kelly/prepress-orders-api/models"
)

// History actions
const (
	ActionOrderCreated      = "Order Created"
	ActionOrderUpdated      = "Order Updated"
	ActionClaimCreated      = "Claim Created"
	ActionClaimUpdated      = "Claim Updated"
	ActionStatusUpdated     = "Status Updated"
	ActionAssignmentUpdated = "Assignment Updated"
	ActionFileUploaded      = "File Uploaded"
)

// Audited is an entity that carries an append-only history
type Audited interface {
	HistoryEntityType() string
	EntityID() uint
	AppendHistory(entry models.HistoryEntry) *models.HistoryEntry
}

// Recorder appends audit entries. It never edits or removes one.
type Recorder struct {
	now func() time.Time
}

// NewRecorder creates a recorder stamping entries with the given clock
func NewRecorder(now func() time.Time) Recorder {
	if now == nil {
		now = time.Now
	}
	return Recorder{now: now}
}

// Append pushes one entry onto the entity and returns the stored entry for persistence
func (r Recorder) Append(entity Audited, action string, actor Actor, detail string) *models.HistoryEntry {
	entry := models.HistoryEntry{
		EntityID:   entity.EntityID(),
		EntityType: entity.HistoryEntityType(),
		Action:     action,
		ActorID:    actor.ID,
		Details:    detail,
		Timestamp:  r.now(),
	}
	return entity.AppendHistory(entry)
}
