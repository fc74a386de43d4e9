package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	DepartmentApprover        = "approver"
	DepartmentCustomerSupport = "customer_support"
)

// Officer is the directory record for a government service officer. The
// analytics engine only reads these; assignment middleware owns Workload.
type Officer struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FullName   string    `gorm:"not null;column:full_name" json:"full_name"`
	Email      string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Department string    `gorm:"not null;index:idx_officer_dept_subcity;column:department" json:"department"`
	Subcity    string    `gorm:"not null;index:idx_officer_dept_subcity;column:subcity" json:"subcity"`
	OnLeave    bool      `gorm:"not null;default:false;column:on_leave" json:"on_leave"`
	Workload   int       `gorm:"not null;default:0;column:workload" json:"workload"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Officer) TableName() string {
	return "officer"
}
