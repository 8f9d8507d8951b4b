package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRequest is one entry of the append-only request ledger used for quotas.
type UserRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	IPAddress string    `gorm:"type:text;index" json:"ip_address"`
	ProcessID string    `gorm:"type:text;not null" json:"process_id"`
	UserID    string    `gorm:"type:text" json:"user_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (UserRequest) TableName() string {
	return "user_requests"
}
