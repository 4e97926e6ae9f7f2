package geocoder

import "fmt"

// indicates a request for a geocoding provider we don't support
type UnknownProviderError struct {
	Name string
}

func (e UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown geocoding provider: %s", e.Name)
}

// indicates that a provider returned a non-OK HTTP status
type RequestError struct {
	StatusCode int
}

func (e RequestError) Error() string {
	return fmt.Sprintf("geocoding request failed with status %d", e.StatusCode)
}

// indicates that a provider returned no usable result for an address
type NoLocationError struct {
	Address Address
}

func (e NoLocationError) Error() string {
	return fmt.Sprintf("no location found for %s, %s (%s)",
		e.Address.Town, e.Address.County, e.Address.CountryCode)
}

// indicates an attempted redirect from HTTPS to HTTP, which we don't allow
type DowngradedRedirectError struct {
	Endpoint string
}

func (e DowngradedRedirectError) Error() string {
	return fmt.Sprintf("attempted redirect to insecure endpoint %s", e.Endpoint)
}
