package domain

import "fmt"

// FeatureCount is the number of values the trained model expects per row.
const FeatureCount = 9

// FeatureOrder names the feature positions in the exact order the model was
// trained with. Keep this consistent with training.
var FeatureOrder = []string{
	"sea_surface_temp",
	"pressure",
	"humidity",
	"wind_shear",
	"vorticity",
	"latitude",
	"ocean_depth",
	"proximity",
	"disturbance",
}

// FeatureVector holds one observation in named form. It is constructed once by
// the inbound adapter and never mutated afterwards.
type FeatureVector struct {
	SeaSurfaceTemp float64 `json:"sea_surface_temp"` // °C
	Pressure       float64 `json:"pressure"`         // hPa
	Humidity       float64 `json:"humidity"`         // %
	WindShear      float64 `json:"wind_shear"`       // m/s
	Vorticity      float64 `json:"vorticity"`        // s⁻¹
	Latitude       float64 `json:"latitude"`         // degrees
	OceanDepth     float64 `json:"ocean_depth"`      // m
	Proximity      float64 `json:"proximity"`        // proximity-to-land metric
	Disturbance    float64 `json:"disturbance"`      // 0 or 1
}

// Values returns the feature row in the order of FeatureOrder. This is the
// only conversion from named fields to a raw model input.
func (f FeatureVector) Values() []float64 {
	return []float64{
		f.SeaSurfaceTemp,
		f.Pressure,
		f.Humidity,
		f.WindShear,
		f.Vorticity,
		f.Latitude,
		f.OceanDepth,
		f.Proximity,
		f.Disturbance,
	}
}

// Validate checks each feature against the observation ranges the training
// data was collected under. It is called by the inbound adapter; the
// prediction core itself passes values through unchecked.
func (f FeatureVector) Validate() error {
	checks := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"sea_surface_temp", f.SeaSurfaceTemp, -2, 40},
		{"pressure", f.Pressure, 800, 1100},
		{"humidity", f.Humidity, 0, 100},
		{"wind_shear", f.WindShear, 0, 100},
		{"latitude", f.Latitude, -90, 90},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return fmt.Errorf("%s must be between %g and %g, got %g", c.name, c.min, c.max, c.value)
		}
	}
	if f.OceanDepth < 0 {
		return fmt.Errorf("ocean_depth must be non-negative, got %g", f.OceanDepth)
	}
	if f.Proximity < 0 {
		return fmt.Errorf("proximity must be non-negative, got %g", f.Proximity)
	}
	if f.Disturbance != 0 && f.Disturbance != 1 {
		return fmt.Errorf("disturbance must be 0 or 1, got %g", f.Disturbance)
	}
	return nil
}
