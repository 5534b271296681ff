package pricing

import "math"

// Compute derives a PriceBreakdown from a spec and a rate table.
//
// The step order is fixed: base cost (with the below-minimum per-unit
// surcharge), material surcharge, urgency fees, shipping, discount, then
// CGST/SGST. Intermediate sums stay unrounded; each field is rounded exactly
// once when placed into the returned breakdown. The discount is computed on
// the subtotal, deliberately excluding shipping from the discount base.
//
// Compute is total: it never errors. Unknown enum values and missing rate
// entries contribute zero, so a partially-filled form still yields a partial
// estimate. Quantity bounds are enforced upstream by ValidateSpec, not here.
func Compute(spec QuoteSpec, rates RateConfiguration) PriceBreakdown {
	qty := float64(spec.Quantity)

	unitBase := float64(rates.BasePalletCost[spec.PalletType])
	if spec.Quantity < rates.MinimumOrderQuantity {
		// Below-minimum surcharge applies per unit, not as a flat fee.
		unitBase *= 1 + rates.PriceIncreasePercentBelowMinimum/100
	}

	baseCost := unitBase * qty
	materialSurcharge := float64(rates.MaterialSurcharge[spec.Material]) * qty
	urgencyFees := float64(rates.UrgencyFee[spec.Urgency]) * qty
	subtotal := baseCost + materialSurcharge + urgencyFees

	shippingCost := float64(rates.ShippingEstimate)
	if rates.ShippingPerPallet {
		shippingCost *= qty
	}

	preDiscount := subtotal + shippingCost

	var discount float64
	if spec.Discount != "" {
		if pct := rates.DiscountPercent[spec.Discount]; pct > 0 {
			discount = math.Round(subtotal * pct / 100)
		}
	}
	taxableAmount := preDiscount - discount

	cgst := taxableAmount * rates.CGSTPercent / 100
	sgst := taxableAmount * rates.SGSTPercent / 100

	b := PriceBreakdown{
		BaseCost:          round(baseCost),
		MaterialSurcharge: round(materialSurcharge),
		UrgencyFees:       round(urgencyFees),
		Subtotal:          round(subtotal),
		Discount:          round(discount),
		ShippingCost:      round(shippingCost),
		TaxableAmount:     round(taxableAmount),
		CGST:              round(cgst),
		SGST:              round(sgst),
	}
	// Total is the sum of the rounded components so the displayed line items
	// always add up to the displayed total.
	b.Total = b.TaxableAmount + b.CGST + b.SGST
	return b
}

func round(v float64) Money {
	return Money(math.Round(v))
}
