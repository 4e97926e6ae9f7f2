// This package resolves partial postal addresses to geographic coordinates
// using a configured third-party geocoding service.
package geocoder

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// a partial postal address assembled from a sample record's location fields
type Address struct {
	Town        string
	County      string
	CountryCode string // two-letter ISO 3166-1 code ("" if unresolved)
	Postcode    string
}

// a latitude/longitude pair (decimal degrees)
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// a resolved location: a center point plus, when the provider reports them,
// the bounds of the matched area
type Result struct {
	Center    Coordinates
	NorthEast *Coordinates
	SouthWest *Coordinates
}

// a geocoding backend: builds a provider-specific request URL for an address
// and extracts a result from the provider's response body
type Provider interface {
	BuildQuery(address Address) string
	ParseResponse(body []byte, address Address) (Result, error)
}

// Geocoder resolves addresses through a single configured provider.
type Geocoder struct {
	Provider Provider
	Client   http.Client
}

// New creates a geocoder for the named provider ("google" or "opencage"),
// whose base URI carries the endpoint and any API key.
func New(name, baseURI string) (*Geocoder, error) {
	var provider Provider
	switch name {
	case "google":
		provider = &googleProvider{BaseURI: baseURI}
	case "opencage":
		provider = &opencageProvider{BaseURI: baseURI}
	default:
		return nil, &UnknownProviderError{Name: name}
	}
	return &Geocoder{
		Provider: provider,
		Client:   secureHTTPClient(30 * time.Second),
	}, nil
}

// Resolve geocodes the given address. Failures here are reported to the
// caller but treated as non-fatal: a record without location data is still a
// record.
func (g *Geocoder) Resolve(ctx context.Context, address Address) (Result, error) {
	query := g.Provider.BuildQuery(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, query, http.NoBody)
	if err != nil {
		return Result{}, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, &RequestError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, err
	}
	return g.Provider.ParseResponse(body, address)
}

// ParseInline attempts to read a raw GPS field as a coordinate pair: exactly
// two real numbers separated by commas and/or spaces, with nothing trailing.
// Records carrying such a field need no provider round trip.
func ParseInline(gps string) (Coordinates, bool) {
	fields := strings.FieldsFunc(gps, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return Coordinates{}, false
	}
	lat, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Coordinates{}, false
	}
	return Coordinates{Latitude: lat, Longitude: lon}, true
}

// replaces spaces with '+' for use in provider query strings
func plusEscape(s string) string {
	return strings.ReplaceAll(s, " ", "+")
}

// joins the non-empty parts with ",%20", the separator both providers expect
// between locality and region
func joinAddressParts(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, plusEscape(part))
		}
	}
	return strings.Join(nonEmpty, ",%20")
}
