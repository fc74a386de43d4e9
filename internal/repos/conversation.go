package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/civilink/civilink-backend/internal/logger"
	"github.com/civilink/civilink-backend/internal/types"
)

type ConversationRepo interface {
	// ListAssignedInRange returns conversations owned by an officer whose
	// updated_at falls inside [start, end].
	ListAssignedInRange(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Conversation, error)
	// ActivityTimestamps returns the updated_at of every conversation, for
	// period discovery by the refresh orchestrator.
	ActivityTimestamps(ctx context.Context, tx *gorm.DB) ([]time.Time, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: baseLog.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) ListAssignedInRange(ctx context.Context, tx *gorm.DB, start, end time.Time) ([]*types.Conversation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Conversation
	if err := transaction.WithContext(ctx).
		Where("officer_id IS NOT NULL AND updated_at >= ? AND updated_at <= ?", start, end).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *conversationRepo) ActivityTimestamps(ctx context.Context, tx *gorm.DB) ([]time.Time, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var stamps []time.Time
	if err := transaction.WithContext(ctx).
		Model(&types.Conversation{}).
		Pluck("updated_at", &stamps).Error; err != nil {
		return nil, err
	}
	return stamps, nil
}
