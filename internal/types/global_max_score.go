package types

import (
	"time"

	"github.com/google/uuid"
)

// GlobalMaxScore stores, per period, the maximum rank score observed across
// all monthly rollups. It is the denominator for score normalization. The
// all-time max is derived from the cumulative table on demand, never stored.
type GlobalMaxScore struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Period       string    `gorm:"not null;uniqueIndex;column:period" json:"period"` // YYYY-MM
	MaxRankScore float64   `gorm:"not null;default:0;column:max_rank_score" json:"max_rank_score"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (GlobalMaxScore) TableName() string {
	return "global_max_score"
}
