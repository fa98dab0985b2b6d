// Package trust provides a reference ed25519 implementation of the
// adb.Signer/adb.Verifier/adb.KeyStore interfaces, for tests and the CLI.
// It is deliberately minimal: a real deployment's trust store (key
// distribution, revocation, pinning policy) is out of scope (spec §5
// Non-goals).
package trust

import (
	"crypto/ed25519"

	"github.com/cockroachdb/errors"
	"github.com/pkgadb/adbc"
)

// Key pairs an ed25519 key with the key_id that identifies it in a SIG
// block's signature record.
type Key struct {
	ID  []byte
	Pub ed25519.PublicKey
	Priv ed25519.PrivateKey // nil for a verify-only Key
}

// NewKey generates a fresh ed25519 key pair with the given id.
func NewKey(id []byte) (Key, error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return Key{}, errors.Wrap(err, "trust: generate key")
	}
	return Key{ID: id, Pub: pub, Priv: priv}, nil
}

// KeyID implements adb.Signer and adb.Verifier.
func (k Key) KeyID() []byte { return k.ID }

// Sign implements adb.Signer.
func (k Key) Sign(signInput []byte) ([]byte, error) {
	if k.Priv == nil {
		return nil, errors.New("trust: key has no private component")
	}
	return ed25519.Sign(k.Priv, signInput), nil
}

// Verify implements adb.Verifier.
func (k Key) Verify(signInput, sig []byte) bool {
	return ed25519.Verify(k.Pub, signInput, sig)
}

// Store is a fixed set of trusted Keys, implementing adb.KeyStore.
type Store struct {
	keys []Key
}

// NewStore returns a Store trusting the given keys.
func NewStore(keys ...Key) *Store { return &Store{keys: keys} }

// Verifiers implements adb.KeyStore.
func (s *Store) Verifiers() []adb.Verifier {
	out := make([]adb.Verifier, len(s.keys))
	for i, k := range s.keys {
		out[i] = k
	}
	return out
}
