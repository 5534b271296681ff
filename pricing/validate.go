package pricing

import "fmt"

// Code is a machine-readable validation error code.
type Code string

const (
	CodeQuantityTooLow      Code = "QUOTE_QUANTITY_TOO_LOW"
	CodeLengthOutOfRange    Code = "QUOTE_LENGTH_OUT_OF_RANGE"
	CodeWidthOutOfRange     Code = "QUOTE_WIDTH_OUT_OF_RANGE"
	CodeHeightOutOfRange    Code = "QUOTE_HEIGHT_OUT_OF_RANGE"
	CodeLoadCapacityInvalid Code = "QUOTE_LOAD_CAPACITY_INVALID"
	CodePalletTypeUnknown   Code = "QUOTE_PALLET_TYPE_UNKNOWN"
	CodeMaterialUnknown     Code = "QUOTE_MATERIAL_UNKNOWN"
	CodeUrgencyUnknown      Code = "QUOTE_URGENCY_UNKNOWN"
	CodeDiscountUnknown     Code = "QUOTE_DISCOUNT_UNKNOWN"

	CodeRateMinQuantityInvalid Code = "RATES_MIN_QUANTITY_INVALID"
	CodeRatePercentNegative    Code = "RATES_PERCENT_NEGATIVE"
	CodeRateMoneyNegative      Code = "RATES_MONEY_NEGATIVE"
)

// ValidationError reports a malformed spec or rate table. It is raised by
// callers before a spec reaches Compute; the engine itself never errors.
type ValidationError struct {
	Code  Code
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Msg, e.Code)
}

func validationErr(code Code, field, msg string) error {
	return &ValidationError{Code: code, Field: field, Msg: msg}
}

// ValidateSpec checks a QuoteSpec against the dimension bounds and enum
// domains. It must pass before the spec is persisted or priced for
// submission; Compute itself accepts anything.
func ValidateSpec(spec QuoteSpec) error {
	if spec.Quantity < 1 {
		return validationErr(CodeQuantityTooLow, "quantity", "must be at least 1")
	}
	if spec.LengthMM < MinLengthMM || spec.LengthMM > MaxLengthMM {
		return validationErr(CodeLengthOutOfRange, "length_mm",
			fmt.Sprintf("must be between %d and %d", MinLengthMM, MaxLengthMM))
	}
	if spec.WidthMM < MinWidthMM || spec.WidthMM > MaxWidthMM {
		return validationErr(CodeWidthOutOfRange, "width_mm",
			fmt.Sprintf("must be between %d and %d", MinWidthMM, MaxWidthMM))
	}
	if spec.HeightMM < MinHeightMM || spec.HeightMM > MaxHeightMM {
		return validationErr(CodeHeightOutOfRange, "height_mm",
			fmt.Sprintf("must be between %d and %d", MinHeightMM, MaxHeightMM))
	}
	if spec.LoadCapacity <= 0 {
		return validationErr(CodeLoadCapacityInvalid, "load_capacity_kg", "must be positive")
	}

	switch spec.PalletType {
	case PalletStandard, PalletEuro, PalletIndustrial, PalletCustom:
	default:
		return validationErr(CodePalletTypeUnknown, "pallet_type", string(spec.PalletType))
	}
	switch spec.Material {
	case MaterialPine, MaterialOak, MaterialBirch, MaterialPlywood, MaterialPresswood:
	default:
		return validationErr(CodeMaterialUnknown, "material", string(spec.Material))
	}
	switch spec.Urgency {
	case UrgencyStandard, UrgencyExpress, UrgencyUrgent:
	default:
		return validationErr(CodeUrgencyUnknown, "urgency", string(spec.Urgency))
	}
	switch spec.Discount {
	case "", DiscountVIP, DiscountBulkOrders, DiscountSpecialPricing, DiscountFrequentBuyer:
	default:
		return validationErr(CodeDiscountUnknown, "discount_category", string(spec.Discount))
	}

	return nil
}

// ValidateRates checks an incoming RateConfiguration before it is accepted by
// the settings store.
func ValidateRates(rates RateConfiguration) error {
	if rates.MinimumOrderQuantity < 1 {
		return validationErr(CodeRateMinQuantityInvalid, "minimum_order_quantity", "must be at least 1")
	}
	for field, pct := range map[string]float64{
		"price_increase_percent_below_minimum": rates.PriceIncreasePercentBelowMinimum,
		"cgst_percent":                         rates.CGSTPercent,
		"sgst_percent":                         rates.SGSTPercent,
	} {
		if pct < 0 {
			return validationErr(CodeRatePercentNegative, field, "must not be negative")
		}
	}
	for cat, pct := range rates.DiscountPercent {
		if pct < 0 {
			return validationErr(CodeRatePercentNegative, "discount_percent."+string(cat), "must not be negative")
		}
	}
	if rates.ShippingEstimate < 0 {
		return validationErr(CodeRateMoneyNegative, "shipping_estimate", "must not be negative")
	}
	for t, m := range rates.BasePalletCost {
		if m < 0 {
			return validationErr(CodeRateMoneyNegative, "base_pallet_cost."+string(t), "must not be negative")
		}
	}
	for t, m := range rates.MaterialSurcharge {
		if m < 0 {
			return validationErr(CodeRateMoneyNegative, "material_surcharge."+string(t), "must not be negative")
		}
	}
	for t, m := range rates.UrgencyFee {
		if m < 0 {
			return validationErr(CodeRateMoneyNegative, "urgency_fee."+string(t), "must not be negative")
		}
	}
	return nil
}
