package geo

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, tolerance        float64
	}{
		{"same point", 60.1699, 24.9384, 60.1699, 24.9384, 0, 1e-9},
		{"helsinki-tampere", 60.1699, 24.9384, 61.4978, 23.7610, 160, 5},
		{"helsinki-turku", 60.1699, 24.9384, 60.4518, 22.2666, 150, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := HaversineKm(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.want) > tc.tolerance {
				t.Errorf("HaversineKm = %.2f, want %.2f±%.0f", got, tc.want, tc.tolerance)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{60.17, 24.94, true},
		{-90, -180, true},
		{90, 180, true},
		{90.1, 0, false},
		{0, -180.5, false},
	}
	for _, tc := range tests {
		if got := ValidateCoordinates(tc.lat, tc.lon); got != tc.want {
			t.Errorf("ValidateCoordinates(%v, %v) = %v, want %v", tc.lat, tc.lon, got, tc.want)
		}
	}
}
