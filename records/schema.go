package records

import (
	"pathsurv/geocoder"
)

// the JSON-LD context every sample document declares
const schemaOrgContext = "http://schema.org"

// builds a schema.org Date object wrapping an ISO 8601 date string
func dateObject(isoDate string) Document {
	return Document{
		"@type": "Date",
		"date":  isoDate,
	}
}

// builds a schema.org GeoCoordinates object
func geoCoordinates(coords geocoder.Coordinates) Document {
	return Document{
		"@type":     "GeoCoordinates",
		"latitude":  coords.Latitude,
		"longitude": coords.Longitude,
	}
}

// builds a schema.org Person object
func person(name string) Document {
	return Document{
		"@type": "Person",
		"name":  name,
	}
}

// builds a schema.org Organization object
func organization(name string) Document {
	return Document{
		"@type": "Organization",
		"name":  name,
	}
}

// builds a schema.org PostalAddress object from whichever address fields the
// record carries
func postalAddress(town, county, countryCode, postcode string) Document {
	address := Document{"@type": "PostalAddress"}
	if town != "" {
		address["addressLocality"] = town
	}
	if county != "" {
		address["addressRegion"] = county
	}
	if countryCode != "" {
		address["addressCountry"] = countryCode
	}
	if postcode != "" {
		address["postalCode"] = postcode
	}
	return address
}
