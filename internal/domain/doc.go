// Package domain models tropical-cyclone formation observations and the
// predictions made from them.
//
// # Feature Contract
//
// The classifier is trained on a fixed, ordered set of nine numeric features
// describing environmental conditions at a candidate formation site:
//
//	position  name               unit      notes
//	0         sea_surface_temp   °C        warm water fuels cyclogenesis; ~26°C is the classical threshold
//	1         pressure           hPa       sea-level pressure; deep lows favor formation
//	2         humidity           %         mid-level relative humidity
//	3         wind_shear         m/s       vertical wind shear; strong shear tears storms apart
//	4         vorticity          s⁻¹       low-level relative vorticity
//	5         latitude           degrees   Coriolis force vanishes at the equator
//	6         ocean_depth        m         deep warm layers resist storm-induced upwelling
//	7         proximity          (index)   proximity-to-land metric
//	8         disturbance        0 or 1    pre-existing disturbance indicator
//
// The order is a contract shared with the trained model artifact. Reordering
// the values does not fail loudly, it silently corrupts every prediction, so
// conversion to a raw feature row happens in exactly one place,
// [FeatureVector.Values], and [FeatureOrder] is the single place the position
// names are written down.
//
// # Classes
//
// The model is a binary classifier. Class 1 ("Cyclone") is the positive class:
// conditions favor tropical-cyclone formation. Class 0 is "No Cyclone". The
// probability attached to a [Prediction] is always the probability of the
// positive class, and is absent when the loaded model cannot estimate it.
//
// # Validation
//
// Range validation ([FeatureVector.Validate]) belongs to the inbound adapter,
// not to the prediction core: the predictor passes whatever values it is given
// straight to the model. Bounds follow the observation ranges the training
// data was collected under (e.g. sea-surface temperature in [-2, 40] °C,
// sea-level pressure in [800, 1100] hPa).
package domain
