package adb

import (
	"io"
	"time"

	"github.com/pkgadb/adbc/internal/rate"
	"github.com/pkgadb/adbc/vfs"
)

// Map opens path read-only via fs, mmaps its contents, validates the
// container header and first ADB block, and verifies any trailing SIG
// blocks against ks (spec §4.4 "Map"). The returned DB's arena is the
// ADB block's payload; Free releases the mapping.
//
// wantSchema, if non-zero, must match the container header's schema
// field or Map fails with ErrSchemaMismatch.
func Map(fs vfs.FS, path string, schema *ObjectSchema, wantSchema uint32, ks KeyStore, m *Metrics) (*DB, error) {
	start := time.Now()
	f, err := fs.Open(path)
	if err != nil {
		return nil, wrapMark(err, ErrIO)
	}
	mapping, err := vfs.Mmap(f)
	if err != nil {
		f.Close()
		return nil, wrapMark(err, ErrIO)
	}
	// The file handle is no longer needed once mapped; closing it does
	// not invalidate the mapping on POSIX systems.
	f.Close()

	db, err := parseMapped(mapping.Bytes(), schema, wantSchema, ks, mapping, m)
	if err != nil {
		mapping.Unmap()
		return nil, err
	}
	db.metrics = m
	m.recordMapLatency(time.Since(start))
	return db, nil
}

// OpenBlob parses a caller-supplied, already block-framed byte range
// starting with an ADB block: no mmap, no container header (spec §4.4
// "Blob").
func OpenBlob(data []byte, schema *ObjectSchema, ks KeyStore) (*DB, error) {
	return parseBlocks(data, nil, schema, ks, nil, nil)
}

// Create frames db's committed arena as a container and writes it to w:
// an 8-byte header tagged with schema, one ADB block wrapping the arena,
// then one SIG block per signer (spec §4.3 "container emission"). A
// poisoned db (Poisoned() != nil) refuses outright and writes nothing.
func Create(w io.Writer, db *DB, schema uint32, alg HashAlg, signers ...Signer) error {
	if err := db.Poisoned(); err != nil {
		return wrapMark(err, ErrPoisoned)
	}

	header := make([]byte, headerSize)
	Header{Magic: Magic, Schema: schema}.encode(header)
	if _, err := w.Write(header); err != nil {
		return wrapMark(err, ErrIO)
	}

	payload := db.Bytes()
	if _, err := w.Write(encodeFramedBlock(BlockADB, payload)); err != nil {
		return wrapMark(err, ErrIO)
	}

	for _, signer := range signers {
		sigPayload, err := SignWith(header, payload, alg, signer)
		if err != nil {
			return err
		}
		if _, err := w.Write(encodeFramedBlock(BlockSIG, sigPayload)); err != nil {
			return wrapMark(err, ErrIO)
		}
	}
	return nil
}

// encodeFramedBlock frames payload as one block of type t, padded to
// BlockAlignment (spec §6.1).
func encodeFramedBlock(t BlockType, payload []byte) []byte {
	bh := BlockHeader{Type: t, Size: uint32(blockHeaderSize + len(payload))}
	raw := bh.encode()
	buf := make([]byte, blockHeaderSize, blockHeaderSize+len(payload)+int(bh.Padding()))
	putU32(buf, raw)
	buf = append(buf, payload...)
	buf = append(buf, make([]byte, bh.Padding())...)
	return buf
}

func parseMapped(data []byte, schema *ObjectSchema, wantSchema uint32, ks KeyStore, mapping unmapper, m *Metrics) (*DB, error) {
	if len(data) < headerSize {
		return nil, markf(ErrMalformed, "adb: truncated container header")
	}
	hdr, err := decodeHeader(data[:headerSize])
	if err != nil {
		return nil, err
	}
	if wantSchema != 0 && hdr.Schema != wantSchema {
		return nil, markf(ErrSchemaMismatch, "adb: container schema %d does not match expected %d", hdr.Schema, wantSchema)
	}
	return parseBlocks(data[headerSize:], data[:headerSize], schema, ks, mapping, m)
}

// parseBlocks walks the block stream in body, requiring the first block
// to be ADB, verifying any SIG blocks against ks, and ignoring any other
// block types (tolerated in Map/Blob mode per spec §4.4). header is the
// container header bytes fed into the signature input, or nil for a
// headerless Blob parse.
func parseBlocks(body []byte, header []byte, schema *ObjectSchema, ks KeyStore, mapping unmapper, m *Metrics) (*DB, error) {
	hdr, err := blockFirst(body)
	if err != nil {
		return nil, err
	}
	if hdr.Type != BlockADB {
		return nil, markf(ErrMalformed, "adb: first block is type %d, want ADB", hdr.Type)
	}
	payload := blockPayload(body, 0, hdr)

	var vc *VerifyContext
	if ks != nil {
		vc = NewVerifyContext(header, payload)
	}
	trusted := ks == nil

	pos := uint32(0)
	cur := hdr
	for {
		next, nextPos, ok, err := blockNext(body, pos, cur)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch next.Type {
		case BlockSIG:
			m.recordBlockRead()
			if ks != nil && !trusted {
				sigPayload := blockPayload(body, nextPos, next)
				verified, err := VerifySig(vc, sigPayload, ks)
				if err != nil {
					return nil, err
				}
				m.recordSigResult(verified)
				if verified {
					trusted = true
				}
			}
		case BlockADB:
			return nil, markf(ErrMalformed, "adb: unexpected second ADB block")
		default:
			// DATA and reserved blocks are tolerated but ignored in
			// Map/Blob mode (spec §4.4 "Map").
		}
		pos, cur = nextPos, next
	}

	if ks != nil && !trusted {
		return nil, markf(ErrKeyRejected, "adb: no signature verified")
	}
	return NewMapped(payload, schema, mapping), nil
}

// DataCallback is invoked once per DATA block encountered while
// streaming. length is the block's payload length; r exposes exactly
// that many bytes. The callback may read fewer than length bytes; the
// framer discards the remainder (spec §4.4 "Stream").
type DataCallback func(db *DB, length uint32, r io.Reader) error

// StreamOptions configures Stream beyond the mandatory parse/verify
// behavior spec §4.4 requires.
type StreamOptions struct {
	// Limiter, if set, paces DATA block consumption (spec has no
	// opinion on stream throttling; this lets a caller avoid starving
	// other work while pulling a large container over a slow link).
	Limiter *rate.Limiter
	Metrics *Metrics
}

// Stream reads a container incrementally from r: header, then one block
// at a time. The first block must be ADB. SIG blocks are verified in
// order until one succeeds; later SIG blocks are read and skipped. Every
// DATA block requires that at least one signature has already
// verified, failing with ErrNoKey otherwise. DATA payloads are forwarded
// to datacb (spec §4.4 "Stream").
//
// Stream fully buffers the ADB block (needed to build the reader's
// arena and, if ks is set, to compute its digest) but reads SIG and DATA
// blocks incrementally, so large DATA payloads are never held in memory
// at once.
func Stream(r io.Reader, schema *ObjectSchema, ks KeyStore, datacb DataCallback, opts StreamOptions) (*DB, error) {
	m := opts.Metrics
	headerBuf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return nil, markf(ErrMalformed, "adb: truncated container header: %v", err)
	}
	hdr, err := decodeHeader(headerBuf)
	if err != nil {
		return nil, err
	}
	_ = hdr

	bhdr, err := readBlockHeader(r)
	if err != nil {
		return nil, err
	}
	if bhdr.Type != BlockADB {
		return nil, markf(ErrMalformed, "adb: first block is type %d, want ADB", bhdr.Type)
	}
	payload, err := readPadded(r, bhdr)
	if err != nil {
		return nil, err
	}

	var vc *VerifyContext
	if ks != nil {
		vc = NewVerifyContext(headerBuf, payload)
	}
	trusted := ks == nil
	db := NewMapped(payload, schema, nil)
	db.metrics = m

	for {
		bhdr, err := readBlockHeader(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch bhdr.Type {
		case BlockADB:
			return nil, markf(ErrMalformed, "adb: unexpected second ADB block")
		case BlockSIG:
			sigPayload, err := readPadded(r, bhdr)
			if err != nil {
				return nil, err
			}
			m.recordBlockRead()
			if ks != nil && !trusted {
				verified, err := VerifySig(vc, sigPayload, ks)
				if err != nil {
					return nil, err
				}
				m.recordSigResult(verified)
				if verified {
					trusted = true
				}
			}
		case BlockDATA:
			if !trusted {
				return nil, markf(ErrNoKey, "adb: DATA block before any signature verified")
			}
			if opts.Limiter != nil {
				opts.Limiter.Wait(float64(bhdr.PayloadLen()))
			}
			lr := io.LimitReader(r, int64(bhdr.PayloadLen()))
			cr := &countingReader{r: lr}
			if datacb != nil {
				if err := datacb(db, bhdr.PayloadLen(), cr); err != nil {
					return nil, err
				}
			}
			if err := discard(cr, int64(bhdr.PayloadLen())-cr.n); err != nil {
				return nil, err
			}
			if err := discard(r, int64(bhdr.Padding())); err != nil {
				return nil, err
			}
		default:
			if err := discard(r, int64(bhdr.PayloadLen())+int64(bhdr.Padding())); err != nil {
				return nil, err
			}
		}
	}

	return db, nil
}

func readBlockHeader(r io.Reader) (BlockHeader, error) {
	buf := make([]byte, blockHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			return BlockHeader{}, io.EOF
		}
		return BlockHeader{}, markf(ErrMalformed, "adb: truncated block header: %v", err)
	}
	hdr := decodeBlockHeader(getU32(buf))
	if hdr.Size < blockHeaderSize {
		return BlockHeader{}, markf(ErrMalformed, "adb: block declares size %d smaller than header", hdr.Size)
	}
	return hdr, nil
}

func readPadded(r io.Reader, hdr BlockHeader) ([]byte, error) {
	payload := make([]byte, hdr.PayloadLen())
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, markf(ErrMalformed, "adb: truncated block payload: %v", err)
	}
	if err := discard(r, int64(hdr.Padding())); err != nil {
		return nil, err
	}
	return payload, nil
}

func discard(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, r, n)
	if err != nil {
		return markf(ErrMalformed, "adb: truncated block padding: %v", err)
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
