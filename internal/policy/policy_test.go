package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
)

func TestBuyGiftUnderCap(t *testing.T) {
	c := NewChecker(DefaultConfig())

	// Paying 9 TON for a gift valued 12 TON: 75% of value, under the 80% cap.
	res := c.Check(
		model.CurrencyAsset(9*model.NanoPerTON),
		model.GiftAsset("plush-pepe-001", 12.0),
	)

	assert.True(t, res.Acceptable)
	assert.Equal(t, RuleBuyGift, res.Rule)
	assert.InDelta(t, 3.0, res.ProfitTON, 1e-9)
	assert.Empty(t, res.Reason)
}

func TestBuyGiftOverCap(t *testing.T) {
	c := NewChecker(DefaultConfig())

	// 10 TON for a 12 TON gift is 83% of value.
	res := c.Check(
		model.CurrencyAsset(10*model.NanoPerTON),
		model.GiftAsset("plush-pepe-001", 12.0),
	)

	assert.False(t, res.Acceptable)
	assert.Equal(t, RuleBuyGift, res.Rule)
	assert.InDelta(t, 2.0, res.ProfitTON, 1e-9)
	assert.Contains(t, res.Reason, "cap is 80%")
}

func TestBuyGiftExactlyAtCap(t *testing.T) {
	c := NewChecker(DefaultConfig())

	// 8 TON for a 10 TON gift is exactly the 80% cap; at-cap is acceptable.
	res := c.Check(
		model.CurrencyAsset(8*model.NanoPerTON),
		model.GiftAsset("heart-locket-7", 10.0),
	)

	assert.True(t, res.Acceptable)
}

func TestSellGiftAboveFloor(t *testing.T) {
	c := NewChecker(DefaultConfig())

	// Asking 12 TON for a gift valued 10 TON: 120%, above the 115% floor.
	res := c.Check(
		model.GiftAsset("heart-locket-7", 10.0),
		model.CurrencyAsset(12*model.NanoPerTON),
	)

	assert.True(t, res.Acceptable)
	assert.Equal(t, RuleSellGift, res.Rule)
	assert.InDelta(t, 2.0, res.ProfitTON, 1e-9)
}

func TestSellGiftBelowFloor(t *testing.T) {
	c := NewChecker(DefaultConfig())

	// 11 TON for a 10 TON gift is 110%, below the 115% floor.
	res := c.Check(
		model.GiftAsset("heart-locket-7", 10.0),
		model.CurrencyAsset(11*model.NanoPerTON),
	)

	assert.False(t, res.Acceptable)
	assert.Equal(t, RuleSellGift, res.Rule)
	assert.Contains(t, res.Reason, "minimum is 115%")
}

func TestSellGiftExactlyAtFloor(t *testing.T) {
	c := NewChecker(DefaultConfig())

	res := c.Check(
		model.GiftAsset("heart-locket-7", 10.0),
		model.CurrencyAsset(11_500_000_000),
	)

	assert.True(t, res.Acceptable)
}

func TestGiftSwapNoLoss(t *testing.T) {
	c := NewChecker(DefaultConfig())

	res := c.Check(
		model.GiftAsset("heart-locket-7", 10.0),
		model.GiftAsset("plush-pepe-001", 12.0),
	)
	assert.True(t, res.Acceptable)
	assert.Equal(t, RuleGiftForGift, res.Rule)

	res = c.Check(
		model.GiftAsset("plush-pepe-001", 12.0),
		model.GiftAsset("heart-locket-7", 10.0),
	)
	assert.False(t, res.Acceptable)
	assert.InDelta(t, -2.0, res.ProfitTON, 1e-9)
}

func TestGiftSwapEqualValue(t *testing.T) {
	c := NewChecker(DefaultConfig())

	res := c.Check(
		model.GiftAsset("heart-locket-7", 10.0),
		model.GiftAsset("snoop-dogg-33", 10.0),
	)
	assert.True(t, res.Acceptable)
	assert.InDelta(t, 0.0, res.ProfitTON, 1e-9)
}

func TestCurrencySwapNoLoss(t *testing.T) {
	c := NewChecker(DefaultConfig())

	res := c.Check(
		model.CurrencyAsset(5*model.NanoPerTON),
		model.CurrencyAsset(5*model.NanoPerTON),
	)
	assert.True(t, res.Acceptable)
	assert.Equal(t, RuleCurrencySwap, res.Rule)

	res = c.Check(
		model.CurrencyAsset(5*model.NanoPerTON),
		model.CurrencyAsset(5*model.NanoPerTON-1),
	)
	assert.False(t, res.Acceptable)
	assert.Contains(t, res.Reason, "loses value")
}

func TestCustomMultipliers(t *testing.T) {
	c := NewChecker(Config{BuyMaxMultiplier: 0.5, SellMinMultiplier: 2.0})

	// 6 TON for a 10 TON gift clears the default cap but not a 50% cap.
	res := c.Check(
		model.CurrencyAsset(6*model.NanoPerTON),
		model.GiftAsset("plush-pepe-001", 10.0),
	)
	assert.False(t, res.Acceptable)

	// 15 TON for a 10 TON gift clears the default floor but not a 200% floor.
	res = c.Check(
		model.GiftAsset("plush-pepe-001", 10.0),
		model.CurrencyAsset(15*model.NanoPerTON),
	)
	assert.False(t, res.Acceptable)
}
