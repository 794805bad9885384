package models

import (
	"time"
)

// Post is a project asking for feedback. Core fields are immutable after
// creation; a post owns zero or one PrizePool.
type Post struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"index"`
	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image_url"`
	ProjectLink string `json:"project_link"`
	Category    string `json:"category" gorm:"index"`
	WalletID    string `json:"wallet_id" gorm:"type:uuid;not null;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Wallet    Wallet     `json:"wallet,omitempty" gorm:"foreignKey:WalletID"`
	PrizePool *PrizePool `json:"prize_pool,omitempty" gorm:"foreignKey:PostID"`
	Comments  []Comment  `json:"comments,omitempty" gorm:"foreignKey:PostID"`
}
