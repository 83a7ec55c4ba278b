package model

import "fmt"

// NanoPerTON is the number of nanotons in one TON.
const NanoPerTON = 1_000_000_000

type AssetKind string

const (
	AssetKindCurrency AssetKind = "CURRENCY"
	AssetKindGift     AssetKind = "GIFT"
)

// AssetValue describes what one side of an exchange gives. Immutable once
// attached to a record.
type AssetValue struct {
	Kind AssetKind `db:"kind"`

	// QuantityNano is the currency amount in nanotons. Zero for gifts.
	QuantityNano int64 `db:"quantity_nano"`

	// GiftRef identifies a unique collectible. Empty for currency.
	GiftRef string `db:"gift_ref"`

	// RefValueTON is the best-effort reference value in TON, used by the
	// compliance checker for both kinds.
	RefValueTON float64 `db:"ref_value_ton"`
}

func CurrencyAsset(quantityNano int64) AssetValue {
	return AssetValue{
		Kind:         AssetKindCurrency,
		QuantityNano: quantityNano,
		RefValueTON:  NanoToTON(quantityNano),
	}
}

func GiftAsset(giftRef string, refValueTON float64) AssetValue {
	return AssetValue{
		Kind:        AssetKindGift,
		GiftRef:     giftRef,
		RefValueTON: refValueTON,
	}
}

func (a AssetValue) IsCurrency() bool {
	return a.Kind == AssetKindCurrency
}

func (a AssetValue) IsGift() bool {
	return a.Kind == AssetKindGift
}

func (a AssetValue) String() string {
	if a.IsCurrency() {
		return fmt.Sprintf("%.4f TON", NanoToTON(a.QuantityNano))
	}
	return fmt.Sprintf("gift:%s (~%.4f TON)", a.GiftRef, a.RefValueTON)
}

func (a AssetValue) Validate() error {
	switch a.Kind {
	case AssetKindCurrency:
		if a.QuantityNano <= 0 {
			return fmt.Errorf("currency asset requires a positive quantity, got %d", a.QuantityNano)
		}
		if a.GiftRef != "" {
			return fmt.Errorf("currency asset must not carry a gift ref")
		}
	case AssetKindGift:
		if a.GiftRef == "" {
			return fmt.Errorf("gift asset requires a gift ref")
		}
		if a.QuantityNano != 0 {
			return fmt.Errorf("gift asset must not carry a currency quantity")
		}
	default:
		return fmt.Errorf("unknown asset kind %q", a.Kind)
	}
	return nil
}

func NanoToTON(nano int64) float64 {
	return float64(nano) / NanoPerTON
}

func TONToNano(ton float64) int64 {
	return int64(ton * NanoPerTON)
}
