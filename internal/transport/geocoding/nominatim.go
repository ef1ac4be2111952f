package geocoding

import (
	"context"
	"net/url"
	"strconv"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/domain/geo"
	"github.com/commu-practical/helpmap/internal/usecase/location"
)

var _ location.Provider = (*Nominatim)(nil)

// Nominatim queries an OpenStreetMap Nominatim search endpoint.
type Nominatim struct {
	client
}

// NewNominatim creates the primary geocoding provider.
func NewNominatim(cfg Config) *Nominatim {
	return &Nominatim{client: newClient("nominatim", cfg)}
}

// Name returns the provider name.
func (n *Nominatim) Name() string { return n.name }

// nominatimPlace mirrors the jsonv2 format, which encodes coordinates as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup resolves town, restricted to countryCode when non-empty.
func (n *Nominatim) Lookup(ctx context.Context, town, countryCode string) (domain.Location, bool, error) {
	q := url.Values{}
	q.Set("q", town)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	if countryCode != "" {
		q.Set("countrycodes", countryCode)
	}

	var places []nominatimPlace
	if err := n.getJSON(ctx, q, &places); err != nil {
		return domain.Location{}, false, err
	}
	if len(places) == 0 || places[0].Lat == "" || places[0].Lon == "" {
		return domain.Location{}, false, nil
	}

	p := places[0]
	lat, latErr := strconv.ParseFloat(p.Lat, 64)
	lon, lonErr := strconv.ParseFloat(p.Lon, 64)
	if latErr != nil || lonErr != nil || !geo.ValidateCoordinates(lat, lon) {
		return domain.Location{}, false, nil
	}

	name := p.DisplayName
	if name == "" {
		name = town
	}
	return domain.Location{Name: name, Lat: lat, Long: lon}, true, nil
}
