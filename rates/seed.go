package rates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/madan-prog/palletforge/pricing"
)

// Default returns the rate table used before an admin has saved settings.
func Default() pricing.RateConfiguration {
	return pricing.RateConfiguration{
		BasePalletCost: map[pricing.PalletType]pricing.Money{
			pricing.PalletStandard:   800,
			pricing.PalletEuro:       950,
			pricing.PalletIndustrial: 1200,
			pricing.PalletCustom:     1500,
		},
		MaterialSurcharge: map[pricing.MaterialType]pricing.Money{
			pricing.MaterialPine:      100,
			pricing.MaterialOak:       250,
			pricing.MaterialBirch:     180,
			pricing.MaterialPlywood:   80,
			pricing.MaterialPresswood: 60,
		},
		UrgencyFee: map[pricing.UrgencyLevel]pricing.Money{
			pricing.UrgencyStandard: 0,
			pricing.UrgencyExpress:  50,
			pricing.UrgencyUrgent:   120,
		},
		MinimumOrderQuantity:             20,
		PriceIncreasePercentBelowMinimum: 20,
		ShippingEstimate:                 250,
		ShippingPerPallet:                true,
		CGSTPercent:                      9,
		SGSTPercent:                      9,
		DiscountPercent: map[pricing.DiscountCategory]float64{
			pricing.DiscountVIP:            10,
			pricing.DiscountBulkOrders:     5,
			pricing.DiscountSpecialPricing: 8,
			pricing.DiscountFrequentBuyer:  3,
		},
	}
}

// LoadSeedFile reads a rate configuration from a YAML file. Used to seed the
// settings store in dev mode; production rates come from the settings API.
func LoadSeedFile(path string) (pricing.RateConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pricing.RateConfiguration{}, fmt.Errorf("read rates file: %w", err)
	}

	rates := Default()
	if err := yaml.Unmarshal(data, &rates); err != nil {
		return pricing.RateConfiguration{}, fmt.Errorf("parse rates file: %w", err)
	}
	if err := pricing.ValidateRates(rates); err != nil {
		return pricing.RateConfiguration{}, fmt.Errorf("invalid rates file: %w", err)
	}

	return rates, nil
}
