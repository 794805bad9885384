package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PrizeShare maps one rank to its prize amount.
type PrizeShare struct {
	Rank   int             `json:"rank"`
	Amount decimal.Decimal `json:"amount"`
}

// Distribution is the ordered rank -> amount table fixed at pool creation,
// persisted as a JSON column.
type Distribution []PrizeShare

func (d Distribution) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *Distribution) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		*d = nil
		return nil
	default:
		return fmt.Errorf("unsupported distribution column type %T", value)
	}
}

// AmountFor returns the prize amount for rank, if the table has an entry.
func (d Distribution) AmountFor(rank int) (decimal.Decimal, bool) {
	for _, share := range d {
		if share.Rank == rank {
			return share.Amount, true
		}
	}
	return decimal.Zero, false
}

// Validate checks the table against the pool it belongs to: ranks must be
// exactly 1..winnersCount with no gaps or duplicates, every amount positive,
// and the amounts must not sum past totalAmount.
func (d Distribution) Validate(winnersCount int, totalAmount decimal.Decimal) error {
	if len(d) != winnersCount {
		return fmt.Errorf("distribution has %d entries, expected %d", len(d), winnersCount)
	}
	seen := make(map[int]bool, len(d))
	sum := decimal.Zero
	for _, share := range d {
		if share.Rank < 1 || share.Rank > winnersCount {
			return fmt.Errorf("distribution rank %d outside 1..%d", share.Rank, winnersCount)
		}
		if seen[share.Rank] {
			return fmt.Errorf("duplicate distribution rank %d", share.Rank)
		}
		seen[share.Rank] = true
		if !share.Amount.IsPositive() {
			return fmt.Errorf("distribution amount for rank %d must be positive", share.Rank)
		}
		sum = sum.Add(share.Amount)
	}
	if sum.GreaterThan(totalAmount) {
		return fmt.Errorf("distribution sum %s exceeds pool total %s", sum, totalAmount)
	}
	return nil
}

// PrizePool is a bounty attached to a post, split among ranked winning
// comments. distributed is monotonic false -> true.
type PrizePool struct {
	ID           string          `json:"id" gorm:"primaryKey;type:uuid"`
	PostID       string          `json:"post_id" gorm:"type:uuid;not null;uniqueIndex"`
	TotalAmount  decimal.Decimal `json:"total_amount" gorm:"type:decimal(20,6);not null"`
	WinnersCount int             `json:"winners_count" gorm:"not null"`
	Distribution Distribution    `json:"distribution" gorm:"type:jsonb;not null"`
	EndsAt       time.Time       `json:"ends_at" gorm:"not null;index"`
	Ended        bool            `json:"ended" gorm:"not null;default:false"`
	Distributed  bool            `json:"distributed" gorm:"not null;default:false"`
	DistributeTx *string         `json:"distribute_tx,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Post     Post      `json:"post,omitempty" gorm:"foreignKey:PostID"`
	Rankings []Ranking `json:"rankings,omitempty" gorm:"foreignKey:PrizePoolID"`
}

// HasEnded reports whether the pool is closed at the given instant, either by
// the stored flag or the deadline having passed.
func (p *PrizePool) HasEnded(now time.Time) bool {
	return p.Ended || !now.Before(p.EndsAt)
}
