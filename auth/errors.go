package auth

import "fmt"

// indicates a preview key that isn't a valid base64-encoded fernet key
type InvalidKeyError struct {
	Err error
}

func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid preview key: %s", e.Err)
}

// indicates a token was requested with no preview key configured
type NoKeyError struct{}

func (e NoKeyError) Error() string {
	return "no preview key is configured"
}
