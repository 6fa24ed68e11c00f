// Package verify issues and checks the signed links printed on mandate
// documents, and projects a mandate into the public verification view.
package verify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

// Signer computes HMAC-SHA256 signatures over reference numbers.
type Signer struct {
	key     []byte
	baseURL string
}

// NewSigner requires a non-empty key. baseURL is the public verification
// endpoint the QR code points at.
func NewSigner(key, baseURL string) (*Signer, error) {
	if key == "" {
		return nil, errors.New("verification signing key is required")
	}
	return &Signer{key: []byte(key), baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Sign returns the unpadded base64url signature of reference.
func (s *Signer) Sign(reference string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(reference))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Valid compares in constant time.
func (s *Signer) Valid(reference, signature string) bool {
	got, err := base64.RawURLEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(reference))
	return hmac.Equal(got, mac.Sum(nil))
}

// URL is the link embedded in a document's QR code.
func (s *Signer) URL(reference string) string {
	return s.baseURL + "/" + url.PathEscape(reference) + "?sig=" + url.QueryEscape(s.Sign(reference))
}
