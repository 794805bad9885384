package models

import (
	"time"
)

// Comment is feedback left on a post. Target of ranking and tipping.
type Comment struct {
	ID       string  `json:"id" gorm:"primaryKey;type:uuid"`
	PostID   string  `json:"post_id" gorm:"type:uuid;not null;index"`
	WalletID string  `json:"wallet_id" gorm:"type:uuid;not null;index"`
	Content  string  `json:"content" gorm:"type:text;not null"`
	ParentID *string `json:"parent_id,omitempty" gorm:"type:uuid"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	Wallet Wallet `json:"wallet,omitempty" gorm:"foreignKey:WalletID"`
	Post   Post   `json:"post,omitempty" gorm:"foreignKey:PostID"`
}
