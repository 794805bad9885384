package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ranking assigns one rank of a prize pool to one comment. The composite
// unique indexes are what make concurrent double-assignment impossible: a
// rank slot and a comment slot can each be taken exactly once per pool.
type Ranking struct {
	ID          string          `json:"id" gorm:"primaryKey;type:uuid"`
	PrizePoolID string          `json:"prize_pool_id" gorm:"type:uuid;not null;uniqueIndex:idx_pool_rank;uniqueIndex:idx_pool_comment"`
	CommentID   string          `json:"comment_id" gorm:"type:uuid;not null;uniqueIndex:idx_pool_comment"`
	WalletID    string          `json:"wallet_id" gorm:"type:uuid;not null"` // wallet that assigned the rank (post owner)
	Rank        int             `json:"rank" gorm:"not null;uniqueIndex:idx_pool_rank"`
	PrizeAmount decimal.Decimal `json:"prize_amount" gorm:"type:decimal(20,6);not null"`
	Claimed     bool            `json:"claimed" gorm:"not null;default:false"`
	ClaimTx     *string         `json:"claim_tx,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	PrizePool PrizePool `json:"prize_pool,omitempty" gorm:"foreignKey:PrizePoolID"`
	Comment   Comment   `json:"comment,omitempty" gorm:"foreignKey:CommentID"`
}
