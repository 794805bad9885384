package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tip is an immutable record of a verified peer payment on a comment. The
// transaction signature is the natural idempotence key: one row per signature,
// ever.
type Tip struct {
	ID          string          `json:"id" gorm:"primaryKey;type:uuid"`
	CommentID   string          `json:"comment_id" gorm:"type:uuid;not null;index"`
	FromWallet  string          `json:"from_wallet" gorm:"type:varchar(64);not null;index"`
	ToWallet    string          `json:"to_wallet" gorm:"type:varchar(64);not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,6);not null"`
	TxSignature string          `json:"tx_signature" gorm:"type:varchar(128);not null;uniqueIndex"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Relationship
	Comment Comment `json:"comment,omitempty" gorm:"foreignKey:CommentID"`
}
