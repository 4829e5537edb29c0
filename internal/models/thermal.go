package models

// ThermalState is the steady-state temperature distribution for one operating point.
type ThermalState struct {
	OilTopTemp    float64 `json:"oil_top_temp"`
	OilBottomTemp float64 `json:"oil_bottom_temp"`
	HotspotTemp   float64 `json:"hotspot_temp"`
	AmbientTemp   float64 `json:"ambient_temp"`
	LoadPercent   float64 `json:"load_percent"`
	Overheating   bool    `json:"is_overheating"`
}

// OilTempRise is the top-oil rise over ambient.
func (s ThermalState) OilTempRise() float64 { return s.OilTopTemp - s.AmbientTemp }

// HotspotTempRise is the winding hot-spot rise over top oil.
func (s ThermalState) HotspotTempRise() float64 { return s.HotspotTemp - s.OilTopTemp }

// TransientPoint is one hourly sample of a transient hot-spot response.
type TransientPoint struct {
	Hour        int     `json:"hour"`
	Temperature float64 `json:"temperature"`
}
