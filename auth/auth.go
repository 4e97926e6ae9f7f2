// This package gates the preview privilege: seeing imported data before its
// "go live" date.
package auth

import (
	"time"

	"github.com/fernet/fernet-go"
)

// how long a preview token stays valid after it's minted
const tokenTTL = 24 * time.Hour

// PreviewAuthorizer decides whether a request may bypass staged disclosure.
// When the service is configured with a fernet key, the request must carry a
// token signed with it; with no key configured, asking is enough (the
// trusted-host deployment mode).
type PreviewAuthorizer struct {
	keys []*fernet.Key
}

// NewPreviewAuthorizer creates an authorizer from a base64-encoded fernet
// key ("" configures the trusted-host mode).
func NewPreviewAuthorizer(encodedKey string) (*PreviewAuthorizer, error) {
	if encodedKey == "" {
		return &PreviewAuthorizer{}, nil
	}
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, &InvalidKeyError{Err: err}
	}
	return &PreviewAuthorizer{keys: []*fernet.Key{key}}, nil
}

// Authorize reports whether a preview request carrying the given token (""
// for none) is allowed.
func (a *PreviewAuthorizer) Authorize(token string) bool {
	if len(a.keys) == 0 {
		return true
	}
	if token == "" {
		return false
	}
	return fernet.VerifyAndDecrypt([]byte(token), tokenTTL, a.keys) != nil
}

// NewToken mints a preview token, for handing to the curators who get to
// see embargoed data.
func (a *PreviewAuthorizer) NewToken() (string, error) {
	if len(a.keys) == 0 {
		return "", &NoKeyError{}
	}
	token, err := fernet.EncryptAndSign([]byte("preview"), a.keys[0])
	if err != nil {
		return "", err
	}
	return string(token), nil
}
