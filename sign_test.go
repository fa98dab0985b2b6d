package adb_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	adb "github.com/pkgadb/adbc"
	"github.com/pkgadb/adbc/internal/testutils"
	"github.com/pkgadb/adbc/trust"
)

func buildPayloadForSign(t *testing.T) []byte {
	t.Helper()
	schema := &adb.ObjectSchema{
		Kind: adb.KindObject,
		Fields: []adb.Field{
			{Name: "n", Kind: adb.KindInt, Scalar: &adb.ScalarSchema{Kind: adb.KindInt}},
		},
	}
	db := adb.NewWritable(schema)
	defer db.Free()
	b := adb.NewBuilder(db, schema, 1)
	b.SetInt(1, 13)
	require.NoError(t, adb.WRoot(db, b.Commit()))
	out := make([]byte, db.Len())
	copy(out, db.Bytes())
	return out
}

// TestSignVerifyRoundTrip exercises spec S5: a signed container verifies
// against its signer's key. TestSignVerifyRejectsFlippedByte covers the
// tampered-signature case.
func TestSignVerifyRoundTrip(t *testing.T) {
	payload := buildPayloadForSign(t)
	header := []byte{}

	key, err := trust.NewKey([]byte{0x01})
	require.NoError(t, err)

	sigPayload, err := adb.SignWith(header, payload, adb.HashSHA512, key)
	require.NoError(t, err)

	store := trust.NewStore(key)
	vc := adb.NewVerifyContext(header, payload)
	ok, err := adb.VerifySig(vc, sigPayload, store)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSignVerifyRejectsFlippedByte(t *testing.T) {
	payload := buildPayloadForSign(t)
	header := []byte{}

	key, err := trust.NewKey([]byte{0x02})
	require.NoError(t, err)

	sigPayload, err := adb.SignWith(header, payload, adb.HashSHA512, key)
	require.NoError(t, err)

	flipped := append([]byte(nil), sigPayload...)
	flipped[len(flipped)-1] ^= 0xff

	store := trust.NewStore(key)
	vc := adb.NewVerifyContext(header, payload)
	ok, err := adb.VerifySig(vc, flipped, store)
	require.NoError(t, err)
	require.False(t, ok, "a tampered signature must not verify")
}

func TestVerifierSkipsNonMatchingKeyID(t *testing.T) {
	payload := buildPayloadForSign(t)
	header := []byte{}

	signingKey := testutils.CheckErr(trust.NewKey([]byte{0x03}))
	otherKey := testutils.CheckErr(trust.NewKey([]byte{0x04}))

	sigPayload, err := adb.SignWith(header, payload, adb.HashSHA512, signingKey)
	require.NoError(t, err)

	store := trust.NewStore(otherKey) // does not hold the signing key
	vc := adb.NewVerifyContext(header, payload)
	ok, err := adb.VerifySig(vc, sigPayload, store)
	require.NoError(t, err)
	require.False(t, ok)
}
