package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func share(rank int, amount int64) PrizeShare {
	return PrizeShare{Rank: rank, Amount: decimal.NewFromInt(amount)}
}

func TestDistributionValidate(t *testing.T) {
	total := decimal.NewFromInt(150)

	t.Run("valid", func(t *testing.T) {
		d := Distribution{share(1, 100), share(2, 50)}
		assert.NoError(t, d.Validate(2, total))
	})

	t.Run("valid out of order", func(t *testing.T) {
		d := Distribution{share(2, 50), share(1, 100)}
		assert.NoError(t, d.Validate(2, total))
	})

	t.Run("wrong entry count", func(t *testing.T) {
		d := Distribution{share(1, 100)}
		assert.Error(t, d.Validate(2, total))
	})

	t.Run("duplicate rank", func(t *testing.T) {
		d := Distribution{share(1, 100), share(1, 50)}
		assert.Error(t, d.Validate(2, total))
	})

	t.Run("gap in ranks", func(t *testing.T) {
		d := Distribution{share(1, 100), share(3, 50)}
		assert.Error(t, d.Validate(2, total))
	})

	t.Run("zero amount", func(t *testing.T) {
		d := Distribution{share(1, 100), PrizeShare{Rank: 2, Amount: decimal.Zero}}
		assert.Error(t, d.Validate(2, total))
	})

	t.Run("negative amount", func(t *testing.T) {
		d := Distribution{share(1, 100), share(2, -5)}
		assert.Error(t, d.Validate(2, total))
	})

	t.Run("sum exceeds total", func(t *testing.T) {
		d := Distribution{share(1, 100), share(2, 51)}
		assert.Error(t, d.Validate(2, total))
	})

	t.Run("sum equal to total is fine", func(t *testing.T) {
		d := Distribution{share(1, 100), share(2, 50)}
		assert.NoError(t, d.Validate(2, decimal.NewFromInt(150)))
	})
}

func TestDistributionAmountFor(t *testing.T) {
	d := Distribution{share(1, 100), share(2, 50)}

	amount, ok := d.AmountFor(2)
	require.True(t, ok)
	assert.True(t, amount.Equal(decimal.NewFromInt(50)))

	_, ok = d.AmountFor(3)
	assert.False(t, ok)
}

func TestDistributionScanValue(t *testing.T) {
	d := Distribution{share(1, 100), share(2, 50)}

	raw, err := d.Value()
	require.NoError(t, err)

	var decoded Distribution
	require.NoError(t, decoded.Scan(raw))
	require.Len(t, decoded, 2)
	assert.Equal(t, 1, decoded[0].Rank)
	assert.True(t, decoded[0].Amount.Equal(decimal.NewFromInt(100)))

	var fromString Distribution
	require.NoError(t, fromString.Scan(`[{"rank":1,"amount":"25"}]`))
	require.Len(t, fromString, 1)
	assert.True(t, fromString[0].Amount.Equal(decimal.NewFromInt(25)))
}

func TestPrizePoolHasEnded(t *testing.T) {
	now := time.Now()

	open := PrizePool{EndsAt: now.Add(time.Hour)}
	assert.False(t, open.HasEnded(now))

	past := PrizePool{EndsAt: now.Add(-time.Hour)}
	assert.True(t, past.HasEnded(now))

	flagged := PrizePool{EndsAt: now.Add(time.Hour), Ended: true}
	assert.True(t, flagged.HasEnded(now))
}
