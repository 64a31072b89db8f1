package models

import (
	"time"
)

// Connection is the persisted auth state for one external provider. The
// provider's token manager is the sole owner of this row; other components
// receive the access token by value only.
type Connection struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Provider     string    `gorm:"uniqueIndex;size:50;not null" json:"provider"`
	Status       string    `gorm:"size:20;default:'unauthenticated'" json:"status"`
	AccessToken  string    `gorm:"size:2000" json:"-"`
	RefreshToken string    `gorm:"size:2000" json:"-"`
	ExpiresIn    int64     `json:"expires_in,omitempty"`
	AccountName  string    `gorm:"size:255" json:"account_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
