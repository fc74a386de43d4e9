package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ApplicationTypeTIN      = "tin"
	ApplicationTypeMarriage = "marriage"
	ApplicationTypeBirth    = "birth"
)

const (
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusInReview  = "in_review"
	// Approved and rejected are both terminal: either way the officer has
	// processed the application.
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// Application is a certificate application (TIN, marriage, birth) reviewed by
// an approver officer. Immutable to the analytics engine.
type Application struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CitizenID       uuid.UUID      `gorm:"type:uuid;not null;index;column:citizen_id" json:"citizen_id"`
	Citizen         *Citizen       `gorm:"constraint:OnDelete:CASCADE;foreignKey:CitizenID;references:ID" json:"citizen,omitempty"`
	AssignedOfficer *uuid.UUID     `gorm:"type:uuid;index;column:assigned_officer" json:"assigned_officer,omitempty"`
	Officer         *Officer       `gorm:"foreignKey:AssignedOfficer;references:ID" json:"officer,omitempty"`
	Type            string         `gorm:"not null;index;column:type" json:"type"`
	Status          string         `gorm:"not null;default:'submitted';index;column:status" json:"status"`
	FormData        datatypes.JSON `gorm:"type:jsonb;column:form_data" json:"form_data,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now();index" json:"updated_at"`
}

func (Application) TableName() string {
	return "application"
}
