package adb

import (
	"crypto/sha512"
	"hash"
)

// HashAlg identifies a digest algorithm usable in a SIG block's record.
// v0 supports only SHA-512 (spec §4.5).
type HashAlg uint8

const (
	HashSHA512 HashAlg = 1
)

func (a HashAlg) new() (hash.Hash, bool) {
	switch a {
	case HashSHA512:
		return sha512.New(), true
	default:
		return nil, false
	}
}

// SignVersion identifies the layout of a signature record. v0 defines
// exactly one.
type SignVersion uint8

const (
	SignV0 SignVersion = 0
)

// sigRecord is the on-disk payload of one SIG block: {sign_ver, hash_alg,
// key_id, sig_bytes} (spec §4.5).
type sigRecord struct {
	Version SignVersion
	Alg     HashAlg
	KeyID   []byte
	Sig     []byte
}

const sigRecordHeaderLen = 1 + 1 + 1 // version, alg, key_id length prefix

func decodeSigRecord(payload []byte) (sigRecord, error) {
	if len(payload) < sigRecordHeaderLen {
		return sigRecord{}, markf(ErrMalformed, "adb: truncated SIG record")
	}
	r := sigRecord{
		Version: SignVersion(payload[0]),
		Alg:     HashAlg(payload[1]),
	}
	keyIDLen := int(payload[2])
	pos := sigRecordHeaderLen
	if len(payload) < pos+keyIDLen {
		return sigRecord{}, markf(ErrMalformed, "adb: truncated SIG key id")
	}
	r.KeyID = payload[pos : pos+keyIDLen]
	pos += keyIDLen
	r.Sig = payload[pos:]
	return r, nil
}

func encodeSigRecord(r sigRecord) []byte {
	buf := make([]byte, sigRecordHeaderLen+len(r.KeyID)+len(r.Sig))
	buf[0] = byte(r.Version)
	buf[1] = byte(r.Alg)
	buf[2] = byte(len(r.KeyID))
	pos := sigRecordHeaderLen
	copy(buf[pos:], r.KeyID)
	pos += len(r.KeyID)
	copy(buf[pos:], r.Sig)
	return buf
}

// Signer produces a detached signature over signInput for the key
// identified by KeyID. Implementations wrap whatever asymmetric
// primitive a deployment uses (spec's trust infrastructure is out of
// scope; this is the minimal seam a caller implements against).
type Signer interface {
	KeyID() []byte
	Sign(signInput []byte) ([]byte, error)
}

// Verifier checks a detached signature against signInput for a single
// trusted key.
type Verifier interface {
	KeyID() []byte
	Verify(signInput, sig []byte) bool
}

// KeyStore supplies the set of Verifiers trusted for verification.
// Verification iterates these, skipping any whose KeyID does not match
// the signature record's key_id (spec §4.5).
type KeyStore interface {
	Verifiers() []Verifier
}

// VerifyContext caches the ADB block's payload digest by algorithm
// across multiple signature checks, so N signatures over the same
// algorithm only hash the payload once (spec §4.5 "verify context").
type VerifyContext struct {
	payload []byte
	header  []byte
	digests map[HashAlg][]byte
}

// NewVerifyContext returns a VerifyContext for the given container
// header bytes and ADB block payload.
func NewVerifyContext(header, payload []byte) *VerifyContext {
	return &VerifyContext{header: header, payload: payload, digests: make(map[HashAlg][]byte)}
}

func (vc *VerifyContext) digest(alg HashAlg) ([]byte, error) {
	if d, ok := vc.digests[alg]; ok {
		return d, nil
	}
	h, ok := alg.new()
	if !ok {
		return nil, markf(ErrNotSupported, "adb: unsupported hash algorithm %d", alg)
	}
	h.Write(vc.payload)
	d := h.Sum(nil)
	vc.digests[alg] = d
	return d, nil
}

// signInput builds the exact byte sequence fed to the asymmetric
// primitive: header bytes, then the signature record prefix
// (sign_ver, hash_alg, key_id), then the raw digest (spec §4.5
// "signature input").
func signInput(header []byte, version SignVersion, alg HashAlg, keyID []byte, digest []byte) []byte {
	buf := make([]byte, 0, len(header)+sigRecordHeaderLen+len(keyID)+len(digest))
	buf = append(buf, header...)
	buf = append(buf, byte(version), byte(alg), byte(len(keyID)))
	buf = append(buf, keyID...)
	buf = append(buf, digest...)
	return buf
}

// VerifySig verifies one SIG block's payload against ks, using vc to
// avoid rehashing the ADB payload. It returns whether any trusted key
// matched both key_id and the signature.
func VerifySig(vc *VerifyContext, payload []byte, ks KeyStore) (bool, error) {
	rec, err := decodeSigRecord(payload)
	if err != nil {
		return false, err
	}
	if rec.Version != SignV0 {
		return false, markf(ErrNotSupported, "adb: unsupported signature version %d", rec.Version)
	}
	digest, err := vc.digest(rec.Alg)
	if err != nil {
		return false, err
	}
	input := signInput(vc.header, rec.Version, rec.Alg, rec.KeyID, digest)
	for _, v := range ks.Verifiers() {
		if !bytesEqual(v.KeyID(), rec.KeyID) {
			continue
		}
		if v.Verify(input, rec.Sig) {
			return true, nil
		}
	}
	return false, nil
}

// SignWith produces the payload of one SIG block for signer over the
// ADB block described by header/payload (spec §4.5: "one SIG block is
// written per loaded private key").
func SignWith(header, payload []byte, alg HashAlg, signer Signer) ([]byte, error) {
	vc := NewVerifyContext(header, payload)
	digest, err := vc.digest(alg)
	if err != nil {
		return nil, err
	}
	keyID := signer.KeyID()
	input := signInput(header, SignV0, alg, keyID, digest)
	sig, err := signer.Sign(input)
	if err != nil {
		return nil, wrapMark(err, ErrIO)
	}
	return encodeSigRecord(sigRecord{Version: SignV0, Alg: alg, KeyID: keyID, Sig: sig}), nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
