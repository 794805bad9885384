package solana

import (
	"crypto/ed25519"

	"github.com/btcsuite/btcutil/base58"
)

// VerifySignature checks a detached Ed25519 signature over message against a
// base58-encoded wallet address (the public key). It never returns an error:
// any malformed input — bad base58, wrong key or signature length — is simply
// a failed verification, and callers must treat false as "reject" without
// distinguishing cause.
func VerifySignature(walletAddress, signature, message string) bool {
	publicKey := base58.Decode(walletAddress)
	if len(publicKey) != ed25519.PublicKeySize {
		return false
	}

	sig := base58.Decode(signature)
	if len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(publicKey), []byte(message), sig)
}
