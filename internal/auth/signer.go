package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// ActivitySigner signs activity identifiers submitted with a job. The public
// key is registered with the execution service so it can verify that a
// workitem references an activity the owner vouches for.
type ActivitySigner struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// NewActivitySigner generates a fresh signing key pair for this run.
func NewActivitySigner() (*ActivitySigner, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}

	return &ActivitySigner{privateKey: priv, publicKey: pub}, nil
}

// NewActivitySignerFromKey builds a signer from a base64 encoded private key.
func NewActivitySignerFromKey(privateKeyBase64 string) (*ActivitySigner, error) {
	privateKeyBytes, err := base64.StdEncoding.DecodeString(privateKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	if len(privateKeyBytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key size: expected %d, got %d", ed25519.PrivateKeySize, len(privateKeyBytes))
	}

	priv := ed25519.PrivateKey(privateKeyBytes)
	return &ActivitySigner{
		privateKey: priv,
		publicKey:  priv.Public().(ed25519.PublicKey),
	}, nil
}

// Sign returns the base64 signature over the activity identifier.
func (s *ActivitySigner) Sign(activityID string) (string, error) {
	if activityID == "" {
		return "", fmt.Errorf("activity id is empty")
	}

	signature := ed25519.Sign(s.privateKey, []byte(activityID))
	return base64.StdEncoding.EncodeToString(signature), nil
}

// PublicKey returns the base64 encoded verification key.
func (s *ActivitySigner) PublicKey() string {
	return base64.StdEncoding.EncodeToString(s.publicKey)
}

// Verify checks a signature produced by Sign. Used by tests and local
// diagnostics; the authoritative verification happens remotely.
func (s *ActivitySigner) Verify(activityID, signatureBase64 string) bool {
	signature, err := base64.StdEncoding.DecodeString(signatureBase64)
	if err != nil {
		return false
	}
	return ed25519.Verify(s.publicKey, []byte(activityID), signature)
}
