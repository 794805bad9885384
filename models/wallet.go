package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletType enumerates the supported wallet providers
type WalletType string

const (
	WalletTypePhantom  WalletType = "phantom"
	WalletTypeSolflare WalletType = "solflare"
	WalletTypeLazorkit WalletType = "lazorkit"
)

// Wallet is the identity anchor. Created on first signature-verified connect,
// never deleted. Tip counters only ever increase.
type Wallet struct {
	ID           string          `json:"id" gorm:"primaryKey;type:uuid"`
	Address      string          `json:"address" gorm:"type:varchar(64);not null;uniqueIndex"`
	Type         WalletType      `json:"type" gorm:"type:varchar(32);not null;default:'phantom'"`
	TipsGiven    decimal.Decimal `json:"tips_given" gorm:"type:decimal(20,6);not null;default:0"`
	TipsReceived decimal.Decimal `json:"tips_received" gorm:"type:decimal(20,6);not null;default:0"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsValidWalletType reports whether t is one of the known providers.
func IsValidWalletType(t WalletType) bool {
	switch t {
	case WalletTypePhantom, WalletTypeSolflare, WalletTypeLazorkit:
		return true
	}
	return false
}
