package geocoder

import (
	"encoding/json"
	"fmt"
	"strings"
)

// the Google geocoding API (maps.googleapis.com)
type googleProvider struct {
	BaseURI string // endpoint plus API key
}

func (p *googleProvider) BuildQuery(address Address) string {
	var query strings.Builder
	query.WriteString(p.BaseURI)
	if address.Postcode != "" {
		// a postcode pins the location more precisely than any name
		fmt.Fprintf(&query, "&components=postal_code:%s|country:%s",
			plusEscape(address.Postcode), address.CountryCode)
	} else {
		fmt.Fprintf(&query, "&address=%s", joinAddressParts(address.Town, address.County))
		if address.CountryCode != "" {
			fmt.Fprintf(&query, "&components=country:%s", address.CountryCode)
		}
	}
	return query.String()
}

func (p *googleProvider) ParseResponse(body []byte, address Address) (Result, error) {
	type latLng struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	var payload struct {
		Results []struct {
			Geometry struct {
				Location latLng `json:"location"`
				Viewport struct {
					NorthEast latLng `json:"northeast"`
					SouthWest latLng `json:"southwest"`
				} `json:"viewport"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{}, err
	}
	if len(payload.Results) == 0 {
		return Result{}, &NoLocationError{Address: address}
	}
	geometry := payload.Results[0].Geometry
	return Result{
		Center: Coordinates{
			Latitude:  geometry.Location.Lat,
			Longitude: geometry.Location.Lng,
		},
		NorthEast: &Coordinates{
			Latitude:  geometry.Viewport.NorthEast.Lat,
			Longitude: geometry.Viewport.NorthEast.Lng,
		},
		SouthWest: &Coordinates{
			Latitude:  geometry.Viewport.SouthWest.Lat,
			Longitude: geometry.Viewport.SouthWest.Lng,
		},
	}, nil
}
