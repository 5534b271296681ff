// Package pricing computes itemized price breakdowns for pallet quotations.
// The engine is a pure function over a QuoteSpec and a RateConfiguration:
// no I/O, no side effects, safe to call on every keystroke of a quote form.
package pricing

// Money is a monetary amount in whole currency units (rupees). Intermediate
// calculations run in float64 and are rounded exactly once, when a value is
// placed into a PriceBreakdown.
type Money int64

// PalletType identifies the pallet construction style.
type PalletType string

const (
	PalletStandard   PalletType = "standard"
	PalletEuro       PalletType = "euro"
	PalletIndustrial PalletType = "industrial"
	PalletCustom     PalletType = "custom"
)

// MaterialType identifies the timber or board the pallet is built from.
type MaterialType string

const (
	MaterialPine      MaterialType = "pine"
	MaterialOak       MaterialType = "oak"
	MaterialBirch     MaterialType = "birch"
	MaterialPlywood   MaterialType = "plywood"
	MaterialPresswood MaterialType = "presswood"
)

// UrgencyLevel identifies the requested production turnaround.
type UrgencyLevel string

const (
	UrgencyStandard UrgencyLevel = "standard"
	UrgencyExpress  UrgencyLevel = "express"
	UrgencyUrgent   UrgencyLevel = "urgent"
)

// DiscountCategory identifies an admin-assigned customer discount tier.
// An empty category means no discount applies.
type DiscountCategory string

const (
	DiscountVIP            DiscountCategory = "vip"
	DiscountBulkOrders     DiscountCategory = "bulk_orders"
	DiscountSpecialPricing DiscountCategory = "special_pricing"
	DiscountFrequentBuyer  DiscountCategory = "frequent_buyer"
)

// Dimension bounds in millimeters for a valid pallet spec.
const (
	MinLengthMM = 600
	MaxLengthMM = 2000
	MinWidthMM  = 400
	MaxWidthMM  = 1500
	MinHeightMM = 100
	MaxHeightMM = 300
)

// QuoteSpec is a customer's pallet specification, the input to Compute.
type QuoteSpec struct {
	PalletType   PalletType       `json:"pallet_type" yaml:"pallet_type"`
	Material     MaterialType     `json:"material" yaml:"material"`
	Urgency      UrgencyLevel     `json:"urgency" yaml:"urgency"`
	Quantity     int              `json:"quantity" yaml:"quantity"`
	LengthMM     int              `json:"length_mm" yaml:"length_mm"`
	WidthMM      int              `json:"width_mm" yaml:"width_mm"`
	HeightMM     int              `json:"height_mm" yaml:"height_mm"`
	LoadCapacity float64          `json:"load_capacity_kg" yaml:"load_capacity_kg"`
	Discount     DiscountCategory `json:"discount_category,omitempty" yaml:"discount_category,omitempty"`
	Notes        string           `json:"notes,omitempty" yaml:"notes,omitempty"`
	Attachment   string           `json:"attachment,omitempty" yaml:"attachment,omitempty"`
}

// RateConfiguration is the admin-tunable rate table consumed by Compute.
// It is owned by the settings store and read-only to the engine; missing map
// entries contribute zero rather than failing the computation.
type RateConfiguration struct {
	BasePalletCost    map[PalletType]Money   `json:"base_pallet_cost" yaml:"base_pallet_cost"`
	MaterialSurcharge map[MaterialType]Money `json:"material_surcharge" yaml:"material_surcharge"`
	UrgencyFee        map[UrgencyLevel]Money `json:"urgency_fee" yaml:"urgency_fee"`

	MinimumOrderQuantity             int     `json:"minimum_order_quantity" yaml:"minimum_order_quantity"`
	PriceIncreasePercentBelowMinimum float64 `json:"price_increase_percent_below_minimum" yaml:"price_increase_percent_below_minimum"`

	ShippingEstimate Money `json:"shipping_estimate" yaml:"shipping_estimate"`
	ShippingPerPallet bool `json:"shipping_per_pallet" yaml:"shipping_per_pallet"`

	CGSTPercent float64 `json:"cgst_percent" yaml:"cgst_percent"`
	SGSTPercent float64 `json:"sgst_percent" yaml:"sgst_percent"`

	DiscountPercent map[DiscountCategory]float64 `json:"discount_percent" yaml:"discount_percent"`
}

// PriceBreakdown is the itemized result of applying a QuoteSpec to a
// RateConfiguration. All fields are derived; the breakdown is never the
// source of truth and is recomputed on demand.
type PriceBreakdown struct {
	BaseCost          Money `json:"base_cost"`
	MaterialSurcharge Money `json:"material_surcharge"`
	UrgencyFees       Money `json:"urgency_fees"`
	Subtotal          Money `json:"subtotal"`
	Discount          Money `json:"discount"`
	ShippingCost      Money `json:"shipping_cost"`
	TaxableAmount     Money `json:"taxable_amount"`
	CGST              Money `json:"cgst"`
	SGST              Money `json:"sgst"`
	Total             Money `json:"total"`
}
