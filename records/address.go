package records

import (
	"context"
	"strings"

	"pathsurv/countries"
	"pathsurv/geocoder"
)

// the raw address fields a sample row may carry
const (
	townKey     = "Town"
	countyKey   = "County"
	countryKey  = "Country"
	postcodeKey = "Postal code"
	gpsKey      = "GPS"
	addressKey  = "Address"
	locationKey = "location"
)

// resolveLocation turns a sample row's raw address fields into a schema.org
// location and PostalAddress. A GPS field holding a plain coordinate pair is
// used directly; otherwise the configured geocoder (if any) is asked. The
// raw address fields are consumed either way, and a failure to obtain
// coordinates leaves the record valid, just without location data.
func resolveLocation(ctx context.Context, values Document, geo *geocoder.Geocoder) error {
	town := stringField(values, townKey)
	county := stringField(values, countyKey)
	country := stringField(values, countryKey)
	postcode := strings.TrimSpace(stringField(values, postcodeKey))
	gps := stringField(values, gpsKey)

	countryCode := resolveCountryCode(country)

	var resolveErr error
	if coords, ok := geocoder.ParseInline(gps); ok {
		values[locationKey] = geoCoordinates(coords)
	} else if geo != nil {
		address := geocoder.Address{
			Town:        town,
			County:      county,
			CountryCode: countryCode,
			Postcode:    postcode,
		}
		result, err := geo.Resolve(ctx, address)
		if err != nil {
			resolveErr = err
		} else {
			location := Document{locationKey: geoCoordinates(result.Center)}
			if result.NorthEast != nil {
				location["north_east_bound"] = geoCoordinates(*result.NorthEast)
			}
			if result.SouthWest != nil {
				location["south_west_bound"] = geoCoordinates(*result.SouthWest)
			}
			values[locationKey] = location
		}
	}

	values[addressKey] = postalAddress(town, county, countryCode, postcode)

	delete(values, townKey)
	delete(values, countyKey)
	delete(values, countryKey)
	delete(values, postcodeKey)
	delete(values, gpsKey)

	return resolveErr
}

// maps a raw country field to a two-letter ISO 3166-1 code, accepting either
// a code or a country name ("" if it's neither)
func resolveCountryCode(country string) string {
	if country == "" {
		return ""
	}
	// the UK spreadsheets use "UK", which isn't the ISO code
	if country == "UK" {
		country = "GB"
	}
	if countries.IsValidCode(country) {
		return strings.ToUpper(country)
	}
	if code, found := countries.CodeFromName(country); found {
		return code
	}
	return ""
}
