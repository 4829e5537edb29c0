package models

// AgingState summarises insulation paper condition at one temperature.
type AgingState struct {
	CurrentDP          float64 `json:"current_dp"`
	AgingRate          float64 `json:"aging_rate"`
	LifeLossFactor     float64 `json:"life_loss_factor"`
	RemainingLifeYears Horizon `json:"remaining_life_years"`
	LifeConsumedPct    float64 `json:"life_consumed_pct"`
}

// RemainingLifeDays converts the remaining life to days.
func (a AgingState) RemainingLifeDays() Horizon {
	return a.RemainingLifeYears * 365
}

// DPPoint is one day of a DP evolution.
type DPPoint struct {
	Day         int     `json:"day"`
	DP          float64 `json:"dp"`
	Temperature float64 `json:"temperature"`
	Rate        float64 `json:"rate"`
}
