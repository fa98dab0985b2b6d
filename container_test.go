package adb

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkgadb/adbc/vfs"
)

func encodeBlocks(types []BlockType, payloads [][]byte) []byte {
	var buf []byte
	for i, typ := range types {
		p := payloads[i]
		bh := BlockHeader{Type: typ, Size: uint32(blockHeaderSize + len(p))}
		raw := bh.encode()
		buf = append(buf, byte(raw), byte(raw>>8), byte(raw>>16), byte(raw>>24))
		buf = append(buf, p...)
		buf = append(buf, make([]byte, bh.Padding())...)
	}
	return buf
}

func encodeContainer(schema uint32, types []BlockType, payloads [][]byte) []byte {
	hdrBytes := make([]byte, headerSize)
	Header{Magic: Magic, Schema: schema}.encode(hdrBytes)
	return append(hdrBytes, encodeBlocks(types, payloads)...)
}

// buildPayload writes {field1: n, field2: text} under twoFieldSchema and
// returns the finished arena, ready to frame as an ADB block's payload.
func buildPayload(t *testing.T, n uint32, text string) []byte {
	t.Helper()
	db := NewWritable(twoFieldSchema())
	defer db.Free()
	b := NewBuilder(db, twoFieldSchema(), 2)
	b.SetInt(1, n)
	b.SetBlob(2, []byte(text))
	root := b.Commit()
	require.NoError(t, WRoot(db, root))
	out := make([]byte, len(db.Bytes()))
	copy(out, db.Bytes())
	return out
}

func TestBlobRoundTrip(t *testing.T) {
	payload := buildPayload(t, 5, "x")
	data := encodeBlocks([]BlockType{BlockADB}, [][]byte{payload})

	db, err := OpenBlob(data, twoFieldSchema(), nil)
	require.NoError(t, err)
	defer db.Free()

	view := Obj(db, Root(db), twoFieldSchema())
	require.EqualValues(t, 5, view.RoInt(1))
	require.Equal(t, []byte("x"), view.RoBlob(2))
}

func TestBlobRejectsSecondAdbBlock(t *testing.T) {
	payload := buildPayload(t, 1, "a")
	data := encodeBlocks([]BlockType{BlockADB, BlockADB}, [][]byte{payload, payload})

	_, err := OpenBlob(data, twoFieldSchema(), nil)
	require.Error(t, err)
	require.True(t, IsKind(err, ErrMalformed))
}

func TestMapRoundTripAndSchemaMismatch(t *testing.T) {
	payload := buildPayload(t, 42, "hello")
	data := encodeContainer(7, []BlockType{BlockADB}, [][]byte{payload})

	dir := t.TempDir()
	path := filepath.Join(dir, "pkg.adb")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	db, err := Map(vfs.Default, path, twoFieldSchema(), 7, nil, nil)
	require.NoError(t, err)
	view := Obj(db, Root(db), twoFieldSchema())
	require.EqualValues(t, 42, view.RoInt(1))
	require.Equal(t, []byte("hello"), view.RoBlob(2))
	require.NoError(t, db.Free())

	_, err = Map(vfs.Default, path, twoFieldSchema(), 9, nil, nil)
	require.True(t, IsKind(err, ErrSchemaMismatch))
}

// fakeVerifier and fakeKeyStore let container/sig tests exercise the
// verification path without pulling in a real asymmetric primitive.
type fakeVerifier struct {
	id []byte
	ok bool
}

func (f fakeVerifier) KeyID() []byte                        { return f.id }
func (f fakeVerifier) Verify(signInput, sig []byte) bool    { return f.ok }

type fakeKeyStore struct{ verifiers []Verifier }

func (s fakeKeyStore) Verifiers() []Verifier { return s.verifiers }

func sigBlockPayload(keyID, sig []byte) []byte {
	return encodeSigRecord(sigRecord{Version: SignV0, Alg: HashSHA512, KeyID: keyID, Sig: sig})
}

func TestBlobSignatureVerifiedAndRejected(t *testing.T) {
	payload := buildPayload(t, 1, "ok")
	keyID := []byte{0x01}

	t.Run("verified", func(t *testing.T) {
		data := encodeBlocks(
			[]BlockType{BlockADB, BlockSIG},
			[][]byte{payload, sigBlockPayload(keyID, []byte("sig"))},
		)
		ks := fakeKeyStore{verifiers: []Verifier{fakeVerifier{id: keyID, ok: true}}}
		db, err := OpenBlob(data, twoFieldSchema(), ks)
		require.NoError(t, err)
		require.NoError(t, db.Free())
	})

	t.Run("rejected", func(t *testing.T) {
		data := encodeBlocks(
			[]BlockType{BlockADB, BlockSIG},
			[][]byte{payload, sigBlockPayload(keyID, []byte("sig"))},
		)
		ks := fakeKeyStore{verifiers: []Verifier{fakeVerifier{id: keyID, ok: false}}}
		_, err := OpenBlob(data, twoFieldSchema(), ks)
		require.True(t, IsKind(err, ErrKeyRejected))
	})

	t.Run("no signature present", func(t *testing.T) {
		data := encodeBlocks([]BlockType{BlockADB}, [][]byte{payload})
		ks := fakeKeyStore{verifiers: []Verifier{fakeVerifier{id: keyID, ok: true}}}
		_, err := OpenBlob(data, twoFieldSchema(), ks)
		require.True(t, IsKind(err, ErrKeyRejected))
	})
}

func TestStreamDataRequiresVerifiedSignature(t *testing.T) {
	payload := buildPayload(t, 1, "ok")
	keyID := []byte{0x01}
	dataPayload := []byte("streamed-bytes")

	data := encodeBlocks(
		[]BlockType{BlockADB, BlockDATA},
		[][]byte{payload, dataPayload},
	)
	full := append(encodeHeaderOnly(3), data...)

	ks := fakeKeyStore{verifiers: []Verifier{fakeVerifier{id: keyID, ok: true}}}
	_, err := Stream(bytes.NewReader(full), twoFieldSchema(), ks, nil, StreamOptions{})
	require.True(t, IsKind(err, ErrNoKey), "DATA before any verified signature must fail")
}

func TestStreamSignedDataCallback(t *testing.T) {
	payload := buildPayload(t, 9, "nine")
	keyID := []byte{0x02}
	dataPayload := []byte("streamed-bytes")

	data := encodeBlocks(
		[]BlockType{BlockADB, BlockSIG, BlockDATA},
		[][]byte{payload, sigBlockPayload(keyID, []byte("sig")), dataPayload},
	)
	full := append(encodeHeaderOnly(3), data...)

	ks := fakeKeyStore{verifiers: []Verifier{fakeVerifier{id: keyID, ok: true}}}
	var got []byte
	db, err := Stream(bytes.NewReader(full), twoFieldSchema(), ks, func(db *DB, length uint32, r io.Reader) error {
		buf, err := io.ReadAll(r)
		got = buf
		return err
	}, StreamOptions{})
	require.NoError(t, err)
	require.Equal(t, dataPayload, got)

	view := Obj(db, Root(db), twoFieldSchema())
	require.EqualValues(t, 9, view.RoInt(1))
}

func encodeHeaderOnly(schema uint32) []byte {
	hdrBytes := make([]byte, headerSize)
	Header{Magic: Magic, Schema: schema}.encode(hdrBytes)
	return hdrBytes
}

// fakeSigner lets Create tests exercise the signing path without a real
// asymmetric primitive.
type fakeSigner struct {
	id  []byte
	sig []byte
}

func (s fakeSigner) KeyID() []byte                          { return s.id }
func (s fakeSigner) Sign(signInput []byte) ([]byte, error)  { return s.sig, nil }

func TestCreateRoundTripSigned(t *testing.T) {
	db := NewWritable(twoFieldSchema())
	defer db.Free()
	b := NewBuilder(db, twoFieldSchema(), 2)
	b.SetInt(1, 9)
	b.SetBlob(2, []byte("created"))
	require.NoError(t, WRoot(db, b.Commit()))

	signer := fakeSigner{id: []byte{0x07}, sig: []byte("detached-sig")}
	var buf bytes.Buffer
	require.NoError(t, Create(&buf, db, 11, HashSHA512, signer))

	dir := t.TempDir()
	path := filepath.Join(dir, "created.adb")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	ks := fakeKeyStore{verifiers: []Verifier{fakeVerifier{id: signer.id, ok: true}}}
	out, err := Map(vfs.Default, path, twoFieldSchema(), 11, ks, nil)
	require.NoError(t, err)
	defer out.Free()

	view := Obj(out, Root(out), twoFieldSchema())
	require.EqualValues(t, 9, view.RoInt(1))
	require.Equal(t, []byte("created"), view.RoBlob(2))
}

func TestCreateRejectsUnverifiedSignature(t *testing.T) {
	db := NewWritable(twoFieldSchema())
	defer db.Free()
	b := NewBuilder(db, twoFieldSchema(), 2)
	b.SetInt(1, 1)
	b.SetBlob(2, []byte("x"))
	require.NoError(t, WRoot(db, b.Commit()))

	signer := fakeSigner{id: []byte{0x07}, sig: []byte("detached-sig")}
	var buf bytes.Buffer
	require.NoError(t, Create(&buf, db, 11, HashSHA512, signer))

	dir := t.TempDir()
	path := filepath.Join(dir, "created.adb")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	ks := fakeKeyStore{verifiers: []Verifier{fakeVerifier{id: signer.id, ok: false}}}
	_, err := Map(vfs.Default, path, twoFieldSchema(), 11, ks, nil)
	require.True(t, IsKind(err, ErrKeyRejected))
}

func TestCreateRefusesPoisonedDB(t *testing.T) {
	db := NewStatic(make([]byte, 8), twoFieldSchema())
	defer db.Free()
	WBlob(db, []byte("far too large for an eight byte static arena"))
	require.Error(t, db.Poisoned())

	var buf bytes.Buffer
	err := Create(&buf, db, 1, HashSHA512)
	require.True(t, IsKind(err, ErrPoisoned))
	require.Zero(t, buf.Len(), "a poisoned db must write no bytes")
}
