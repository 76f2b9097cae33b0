package workflow

import (
	"context"
	"fmt"

	"github.com/kendall-kelly/prepress-orders-api/models"
	"go.uber.org/zap"
)

// AttachmentTarget identifies the order or claim a file belongs to
type AttachmentTarget struct {
	Kind EntityKind
	ID   uint
}

// NewAttachment is the metadata of a file that has already been stored
type NewAttachment struct {
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	StorageKey   string
	FileType     models.FileType
}

// loadAudited fetches the target entity and checks the actor may perform action on it
func (e *Engine) loadAudited(ctx context.Context, actor Actor, action Action, target AttachmentTarget) (Audited, error) {
	switch target.Kind {
	case KindOrder:
		order, err := e.store.FindOrder(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		return order, Authorize(actor, action, OrderSubject(order))
	case KindClaim:
		claim, err := e.store.FindClaim(ctx, target.ID)
		if err != nil {
			return nil, err
		}
		return claim, Authorize(actor, action, ClaimSubject(claim))
	}
	return nil, Validation("files can only be attached to orders or claims")
}

// CheckAttach verifies the actor may attach files to the target before anything is uploaded
func (e *Engine) CheckAttach(ctx context.Context, actor Actor, target AttachmentTarget) error {
	_, err := e.loadAudited(ctx, actor, ActionAttach, target)
	return err
}

// RecordAttachment stores the metadata of an uploaded file and appends a "File Uploaded" entry
func (e *Engine) RecordAttachment(ctx context.Context, actor Actor, target AttachmentTarget, in NewAttachment) (*models.Attachment, error) {
	entity, err := e.loadAudited(ctx, actor, ActionAttach, target)
	if err != nil {
		return nil, err
	}
	if in.FileType == "" {
		in.FileType = models.FileOther
	}
	if !in.FileType.IsValid() {
		return nil, Validation("file type %q is invalid", in.FileType)
	}

	attachment := &models.Attachment{
		EntityID:     entity.EntityID(),
		EntityType:   entity.HistoryEntityType(),
		Filename:     in.Filename,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		Size:         in.Size,
		StorageKey:   in.StorageKey,
		FileType:     in.FileType,
		UploadedByID: actor.ID,
	}
	entry := e.recorder.Append(entity, ActionFileUploaded, actor,
		fmt.Sprintf("%s file %s uploaded", in.FileType, in.OriginalName))

	if err := e.store.CreateAttachment(ctx, attachment, entry); err != nil {
		e.log.Error("failed to record attachment", append(actorFields(actor), zap.Error(err))...)
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}

	e.log.Info("file attached", append(actorFields(actor),
		zap.String("entity_type", attachment.EntityType),
		zap.Uint("entity_id", attachment.EntityID),
		zap.String("filename", attachment.Filename))...)
	return attachment, nil
}

// ListAttachments returns the files attached to an entity the actor may view
func (e *Engine) ListAttachments(ctx context.Context, actor Actor, target AttachmentTarget) ([]models.Attachment, error) {
	entity, err := e.loadAudited(ctx, actor, ActionView, target)
	if err != nil {
		return nil, err
	}
	attachments, err := e.store.ListAttachments(ctx, entity.HistoryEntityType(), entity.EntityID())
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return attachments, nil
}
