package types

import (
	"time"

	"github.com/google/uuid"
)

// OfficerStatsCumulative is the all-time rollup per officer, derived by
// folding that officer's monthly rows. It is a cache: only valid when rebuilt
// after every monthly recomputation that touches the officer.
type OfficerStatsCumulative struct {
	ID                        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OfficerID                 uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:officer_id" json:"officer_id"`
	Department                string    `gorm:"not null;index:idx_cumulative_dept_subcity;column:department" json:"department"`
	Subcity                   string    `gorm:"not null;index:idx_cumulative_dept_subcity;column:subcity" json:"subcity"`
	TotalConversations        int       `gorm:"not null;default:0;column:total_conversations" json:"total_conversations"`
	ProcessedConversations    int       `gorm:"not null;default:0;column:processed_conversations" json:"processed_conversations"`
	TotalApplications         int       `gorm:"not null;default:0;column:total_applications" json:"total_applications"`
	ProcessedApplications     int       `gorm:"not null;default:0;column:processed_applications" json:"processed_applications"`
	CommunicationResponseRate float64   `gorm:"not null;default:0;column:communication_response_rate" json:"communication_response_rate"`
	ApplicationResponseRate   float64   `gorm:"not null;default:0;column:application_response_rate" json:"application_response_rate"`
	AverageResponseTimeMs     float64   `gorm:"not null;default:0;column:average_response_time_ms" json:"average_response_time_ms"`
	RequestsTotal             int       `gorm:"not null;default:0;column:requests_total" json:"requests_total"`
	RequestsProcessed         int       `gorm:"not null;default:0;column:requests_processed" json:"requests_processed"`
	RawScore                  float64   `gorm:"not null;default:0;column:raw_score" json:"raw_score"`
	RankScore                 float64   `gorm:"not null;default:0;index;column:rank_score" json:"rank_score"`
	CreatedAt                 time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt                 time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (OfficerStatsCumulative) TableName() string {
	return "officer_stats_cumulative"
}
