package types

import (
	"time"

	"github.com/google/uuid"
)

type Citizen struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FullName  string    `gorm:"not null;column:full_name" json:"full_name"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Subcity   string    `gorm:"column:subcity" json:"subcity"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Citizen) TableName() string {
	return "citizen"
}
