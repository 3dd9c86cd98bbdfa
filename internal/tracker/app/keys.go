package app

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/tracklane/tracklane/pkg/idx"
	"github.com/tracklane/tracklane/pkg/jwtx"
)

// initSigningKeys generates an ephemeral Ed25519 keypair for this process.
// Tokens do not survive a restart; clients just log in again, which is
// acceptable at this scale and avoids key storage entirely.
func initSigningKeys() (*jwtx.Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	signer, err := jwtx.NewSigner(idx.New().String(), priv)
	if err != nil {
		return nil, fmt.Errorf("wrap signing key: %w", err)
	}

	return signer, nil
}
