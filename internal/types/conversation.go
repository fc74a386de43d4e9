package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ConversationStatusOpen    = "open"
	ConversationStatusPending = "pending"
	// ConversationStatusClosed is the only terminal conversation status.
	ConversationStatusClosed = "closed"
)

// Conversation is a support thread between a citizen and a customer support
// officer. The analytics engine treats these as immutable activity records.
type Conversation struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CitizenID uuid.UUID      `gorm:"type:uuid;not null;index;column:citizen_id" json:"citizen_id"`
	Citizen   *Citizen       `gorm:"constraint:OnDelete:CASCADE;foreignKey:CitizenID;references:ID" json:"citizen,omitempty"`
	OfficerID *uuid.UUID     `gorm:"type:uuid;index;column:officer_id" json:"officer_id,omitempty"`
	Officer   *Officer       `gorm:"foreignKey:OfficerID;references:ID" json:"officer,omitempty"`
	Status    string         `gorm:"not null;default:'open';index;column:status" json:"status"`
	Subject   string         `gorm:"column:subject" json:"subject"`
	Metadata  datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
}

func (Conversation) TableName() string {
	return "conversation"
}
