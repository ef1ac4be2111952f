package geocoding

import (
	"context"
	"net/url"
	"strings"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/domain/geo"
	"github.com/commu-practical/helpmap/internal/usecase/location"
)

var _ location.Provider = (*OpenMeteo)(nil)

// OpenMeteo queries the Open-Meteo geocoding search endpoint.
type OpenMeteo struct {
	client
}

// NewOpenMeteo creates the secondary geocoding provider.
func NewOpenMeteo(cfg Config) *OpenMeteo {
	return &OpenMeteo{client: newClient("open-meteo", cfg)}
}

// Name returns the provider name.
func (o *OpenMeteo) Name() string { return o.name }

type openMeteoResponse struct {
	Results []struct {
		Name      string   `json:"name"`
		Country   string   `json:"country"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"results"`
}

// Lookup resolves town; the country code is sent upper-cased.
func (o *OpenMeteo) Lookup(ctx context.Context, town, countryCode string) (domain.Location, bool, error) {
	q := url.Values{}
	q.Set("name", town)
	q.Set("count", "1")
	q.Set("language", "en")
	q.Set("format", "json")
	if countryCode != "" {
		q.Set("countryCode", strings.ToUpper(countryCode))
	}

	var resp openMeteoResponse
	if err := o.getJSON(ctx, q, &resp); err != nil {
		return domain.Location{}, false, err
	}
	if len(resp.Results) == 0 {
		return domain.Location{}, false, nil
	}

	r := resp.Results[0]
	if r.Latitude == nil || r.Longitude == nil || !geo.ValidateCoordinates(*r.Latitude, *r.Longitude) {
		return domain.Location{}, false, nil
	}

	name := r.Name
	if name == "" {
		name = town
	}
	if r.Country != "" {
		name += ", " + r.Country
	}
	return domain.Location{Name: name, Lat: *r.Latitude, Long: *r.Longitude}, true, nil
}
