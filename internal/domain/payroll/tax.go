package payroll

import "math"

// Band is one slice of a progressive schedule. The last band of a schedule
// is always treated as unbounded, whatever its Width says.
type Band struct {
	Width float64 `yaml:"width"`
	Rate  float64 `yaml:"rate"`
}

// DefaultBands is the annual PAYE schedule in NGN.
func DefaultBands() []Band {
	return []Band{
		{Width: 300000, Rate: 0.07},
		{Width: 300000, Rate: 0.11},
		{Width: 500000, Rate: 0.15},
		{Width: 500000, Rate: 0.19},
		{Width: 1600000, Rate: 0.21},
		{Width: math.Inf(1), Rate: 0.24},
	}
}

type BandCharge struct {
	Band     int     `json:"band"`
	Rate     float64 `json:"rate"`
	Consumed float64 `json:"consumed"`
	Tax      float64 `json:"tax"`
}

func ComputeTax(taxable float64, bands []Band) float64 {
	var total float64
	for _, charge := range BandBreakdown(taxable, bands) {
		total += charge.Tax
	}
	return total
}

// BandBreakdown walks the bands in order and reports what each consumed.
// Negative amounts are clamped to zero.
func BandBreakdown(taxable float64, bands []Band) []BandCharge {
	remaining := math.Max(0, taxable)
	var charges []BandCharge
	for i, band := range bands {
		if remaining <= 0 {
			break
		}
		consumed := remaining
		if i < len(bands)-1 {
			consumed = math.Min(remaining, math.Max(0, band.Width))
		}
		charges = append(charges, BandCharge{
			Band:     i,
			Rate:     band.Rate,
			Consumed: consumed,
			Tax:      consumed * band.Rate,
		})
		remaining -= consumed
	}
	return charges
}
