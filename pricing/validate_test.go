package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSpec(t *testing.T) {
	valid := testSpec()
	require.NoError(t, ValidateSpec(valid))

	tests := []struct {
		name   string
		mutate func(*QuoteSpec)
		code   Code
	}{
		{"zero quantity", func(s *QuoteSpec) { s.Quantity = 0 }, CodeQuantityTooLow},
		{"negative quantity", func(s *QuoteSpec) { s.Quantity = -3 }, CodeQuantityTooLow},
		{"length too short", func(s *QuoteSpec) { s.LengthMM = 599 }, CodeLengthOutOfRange},
		{"length too long", func(s *QuoteSpec) { s.LengthMM = 2001 }, CodeLengthOutOfRange},
		{"width too narrow", func(s *QuoteSpec) { s.WidthMM = 399 }, CodeWidthOutOfRange},
		{"height too tall", func(s *QuoteSpec) { s.HeightMM = 301 }, CodeHeightOutOfRange},
		{"zero load capacity", func(s *QuoteSpec) { s.LoadCapacity = 0 }, CodeLoadCapacityInvalid},
		{"unknown pallet type", func(s *QuoteSpec) { s.PalletType = "mega" }, CodePalletTypeUnknown},
		{"unknown material", func(s *QuoteSpec) { s.Material = "steel" }, CodeMaterialUnknown},
		{"unknown urgency", func(s *QuoteSpec) { s.Urgency = "yesterday" }, CodeUrgencyUnknown},
		{"unknown discount", func(s *QuoteSpec) { s.Discount = "friends" }, CodeDiscountUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := valid
			tc.mutate(&spec)

			err := ValidateSpec(spec)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.code, verr.Code)
		})
	}
}

func TestValidateSpecAllowsEmptyDiscount(t *testing.T) {
	spec := testSpec()
	spec.Discount = ""
	assert.NoError(t, ValidateSpec(spec))
}

func TestValidateRates(t *testing.T) {
	require.NoError(t, ValidateRates(testRates()))

	tests := []struct {
		name   string
		mutate func(*RateConfiguration)
		code   Code
	}{
		{"zero minimum quantity", func(r *RateConfiguration) { r.MinimumOrderQuantity = 0 }, CodeRateMinQuantityInvalid},
		{"negative cgst", func(r *RateConfiguration) { r.CGSTPercent = -1 }, CodeRatePercentNegative},
		{"negative surcharge percent", func(r *RateConfiguration) { r.PriceIncreasePercentBelowMinimum = -5 }, CodeRatePercentNegative},
		{"negative shipping", func(r *RateConfiguration) { r.ShippingEstimate = -10 }, CodeRateMoneyNegative},
		{"negative base cost", func(r *RateConfiguration) { r.BasePalletCost[PalletEuro] = -1 }, CodeRateMoneyNegative},
		{"negative discount percent", func(r *RateConfiguration) { r.DiscountPercent[DiscountVIP] = -2 }, CodeRatePercentNegative},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rates := testRates()
			tc.mutate(&rates)

			err := ValidateRates(rates)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.code, verr.Code)
		})
	}
}
