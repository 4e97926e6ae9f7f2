package geocoder

import (
	"encoding/json"
	"fmt"
	"strings"
)

// the OpenCage geocoding API (api.opencagedata.com)
type opencageProvider struct {
	BaseURI string // endpoint plus API key
}

func (p *opencageProvider) BuildQuery(address Address) string {
	var query strings.Builder
	query.WriteString(p.BaseURI)
	fmt.Fprintf(&query, "&query=%s", joinAddressParts(address.Town, address.County))
	if address.CountryCode != "" {
		fmt.Fprintf(&query, "&countrycode=%s", strings.ToLower(address.CountryCode))
	}
	return query.String()
}

func (p *opencageProvider) ParseResponse(body []byte, address Address) (Result, error) {
	var payload struct {
		Results []struct {
			Geometry struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"geometry"`
			Components struct {
				County string `json:"county"`
			} `json:"components"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{}, err
	}
	// prefer the result whose county matches the record's, since OpenCage
	// ranks populous places above small ones
	for _, result := range payload.Results {
		if address.County == "" ||
			strings.EqualFold(result.Components.County, address.County) {
			return Result{
				Center: Coordinates{
					Latitude:  result.Geometry.Lat,
					Longitude: result.Geometry.Lng,
				},
			}, nil
		}
	}
	return Result{}, &NoLocationError{Address: address}
}
