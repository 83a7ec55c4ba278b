// Package policy implements the margin rules every proposed exchange must
// clear before a record is created. Check is a pure function: no I/O, no
// clock, fully determined by its inputs and the configured multipliers.
package policy

import (
	"fmt"

	"github.com/itsdeadcow/teleton-agent-sub001/internal/domain/model"
)

// Rule labels identify which comparison produced the verdict.
const (
	RuleBuyGift      = "buy_gift_max_multiplier"
	RuleSellGift     = "sell_gift_min_multiplier"
	RuleGiftForGift  = "gift_for_gift_no_loss"
	RuleCurrencySwap = "currency_no_loss"
)

// Config holds the margin multipliers. BuyMaxMultiplier caps what the agent
// pays for a gift relative to its reference value; SellMinMultiplier floors
// what the agent accepts when selling one.
type Config struct {
	BuyMaxMultiplier  float64
	SellMinMultiplier float64
}

func DefaultConfig() Config {
	return Config{
		BuyMaxMultiplier:  0.80,
		SellMinMultiplier: 1.15,
	}
}

type Checker struct {
	cfg Config
}

func NewChecker(cfg Config) *Checker {
	return &Checker{cfg: cfg}
}

// Check evaluates a proposed exchange from the agent's perspective: offered
// is what the agent gives, requested is what the agent receives. Profit is
// computed for every verdict, acceptable or not, so rejected proposals still
// show up correctly in reporting.
func (c *Checker) Check(offered, requested model.AssetValue) model.ComplianceResult {
	profit := requested.RefValueTON - offered.RefValueTON

	switch {
	case offered.IsCurrency() && requested.IsGift():
		return c.checkBuy(offered, requested, profit)
	case offered.IsGift() && requested.IsCurrency():
		return c.checkSell(offered, requested, profit)
	case offered.IsGift() && requested.IsGift():
		return c.checkGiftSwap(offered, requested, profit)
	default:
		return c.checkCurrencySwap(offered, requested, profit)
	}
}

func (c *Checker) checkBuy(offered, requested model.AssetValue, profit float64) model.ComplianceResult {
	paid := model.NanoToTON(offered.QuantityNano)
	capTON := requested.RefValueTON * c.cfg.BuyMaxMultiplier

	res := model.ComplianceResult{Rule: RuleBuyGift, ProfitTON: profit}
	if paid <= capTON {
		res.Acceptable = true
		return res
	}
	paidPct := 0.0
	if requested.RefValueTON > 0 {
		paidPct = paid / requested.RefValueTON * 100
	}
	res.Reason = fmt.Sprintf(
		"paying %.4f TON is %.0f%% of the gift's %.4f TON value; cap is %.0f%% (%.4f TON)",
		paid, paidPct, requested.RefValueTON, c.cfg.BuyMaxMultiplier*100, capTON,
	)
	return res
}

func (c *Checker) checkSell(offered, requested model.AssetValue, profit float64) model.ComplianceResult {
	asked := model.NanoToTON(requested.QuantityNano)
	floor := offered.RefValueTON * c.cfg.SellMinMultiplier

	res := model.ComplianceResult{Rule: RuleSellGift, ProfitTON: profit}
	if asked >= floor {
		res.Acceptable = true
		return res
	}
	res.Reason = fmt.Sprintf(
		"receiving %.4f TON for a gift valued %.4f TON; minimum is %.0f%% (%.4f TON)",
		asked, offered.RefValueTON, c.cfg.SellMinMultiplier*100, floor,
	)
	return res
}

func (c *Checker) checkGiftSwap(offered, requested model.AssetValue, profit float64) model.ComplianceResult {
	res := model.ComplianceResult{Rule: RuleGiftForGift, ProfitTON: profit}
	if requested.RefValueTON >= offered.RefValueTON {
		res.Acceptable = true
		return res
	}
	res.Reason = fmt.Sprintf(
		"incoming gift valued %.4f TON is below outgoing gift valued %.4f TON",
		requested.RefValueTON, offered.RefValueTON,
	)
	return res
}

func (c *Checker) checkCurrencySwap(offered, requested model.AssetValue, profit float64) model.ComplianceResult {
	res := model.ComplianceResult{Rule: RuleCurrencySwap, ProfitTON: profit}
	if requested.QuantityNano >= offered.QuantityNano {
		res.Acceptable = true
		return res
	}
	res.Reason = fmt.Sprintf(
		"receiving %.4f TON for %.4f TON loses value",
		model.NanoToTON(requested.QuantityNano), model.NanoToTON(offered.QuantityNano),
	)
	return res
}
