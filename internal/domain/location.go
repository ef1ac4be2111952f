package domain

// Location is a geocoded town.
type Location struct {
	Name string  `json:"name"` // provider label, e.g. "Tampere, Finland"
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}
