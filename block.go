package adb

// Container wire format (spec §6.1, bit-exact):
//
//	Header (8 bytes)       : magic (LE u32), schema (LE u32)
//	Block header (4 bytes) : raw (LE u32) = (type << 30) | size
//	  type: 0=ADB, 1=SIG, 2=DATA, 3=reserved
//	  size: bytes of (block header + payload); payload is then padded with
//	        zero bytes up to a multiple of BlockAlignment.
//
// Exactly one ADB block, which must be first. Zero or more SIG blocks
// follow it. Zero or more DATA blocks follow those.

// Magic is the container header's magic number, the ASCII bytes "ADB." read
// as a little-endian u32.
const Magic uint32 = 0x2e424441

// BlockAlignment is the padding granularity for block payloads.
const BlockAlignment = 32

// BlockType is the 2-bit block type discriminator packed into the top of a
// block header word.
type BlockType uint32

const (
	BlockADB BlockType = iota
	BlockSIG
	BlockDATA
	blockReserved
)

const (
	headerSize      = 8
	blockHeaderSize = 4
	blockTypeShift  = 30
	blockSizeMask   = (1 << blockTypeShift) - 1
)

// Header is the 8-byte container header.
type Header struct {
	Magic  uint32
	Schema uint32
}

func decodeHeader(b []byte) (Header, error) {
	if len(b) < headerSize {
		return Header{}, markf(ErrMalformed, "adb: truncated container header (%d bytes)", len(b))
	}
	h := Header{Magic: getU32(b[0:4]), Schema: getU32(b[4:8])}
	if h.Magic != Magic {
		return Header{}, markf(ErrMalformed, "adb: bad magic %#x", h.Magic)
	}
	return h, nil
}

func (h Header) encode(b []byte) {
	putU32(b[0:4], h.Magic)
	putU32(b[4:8], h.Schema)
}

// BlockHeader is one block's framing header: its type and the size (header
// + payload, excluding padding) in bytes.
type BlockHeader struct {
	Type BlockType
	Size uint32 // header + payload, not including padding
}

func decodeBlockHeader(raw uint32) BlockHeader {
	return BlockHeader{
		Type: BlockType(raw >> blockTypeShift),
		Size: raw & blockSizeMask,
	}
}

func (bh BlockHeader) encode() uint32 {
	return (uint32(bh.Type) << blockTypeShift) | (bh.Size & blockSizeMask)
}

// PayloadLen is the number of payload bytes in this block (Size minus the
// 4-byte block header).
func (bh BlockHeader) PayloadLen() uint32 { return bh.Size - blockHeaderSize }

// Padding is the number of zero padding bytes following this block's
// payload so that the next block starts BlockAlignment-aligned relative to
// the start of the block stream.
func (bh BlockHeader) Padding() uint32 {
	return padLen(bh.Size, BlockAlignment)
}

func padLen(n, align uint32) uint32 {
	r := n % align
	if r == 0 {
		return 0
	}
	return align - r
}

// blockFirst validates and returns the first block header within b, or an
// error if b is too short to hold one or the declared size is inconsistent
// (spec §4.1).
func blockFirst(b []byte) (BlockHeader, error) {
	return blockValidate(b, 0)
}

// blockNext validates and returns the block header immediately following
// the block at pos (i.e. at pos+prev.Size+prev.Padding()), or (zero,
// io.EOF-shaped nil-error sentinel) at the end of the range. Callers
// distinguish "no more blocks" from "malformed" by checking the returned
// ok flag alongside err.
func blockNext(b []byte, pos uint32, prev BlockHeader) (hdr BlockHeader, next uint32, ok bool, err error) {
	next = pos + prev.Size + prev.Padding()
	if next == uint32(len(b)) {
		return BlockHeader{}, next, false, nil
	}
	hdr, err = blockValidate(b, next)
	return hdr, next, err == nil, err
}

func blockValidate(b []byte, pos uint32) (BlockHeader, error) {
	remaining := uint32(len(b)) - pos
	if remaining < blockHeaderSize {
		return BlockHeader{}, markf(ErrMalformed, "adb: block header overruns range at %d", pos)
	}
	raw := getU32(b[pos : pos+4])
	hdr := decodeBlockHeader(raw)
	if hdr.Size < blockHeaderSize {
		return BlockHeader{}, markf(ErrMalformed, "adb: block at %d declares size %d smaller than header", pos, hdr.Size)
	}
	padded := hdr.Size + hdr.Padding()
	if padded > remaining {
		return BlockHeader{}, markf(ErrMalformed, "adb: block at %d declares padded size %d exceeding remaining %d", pos, padded, remaining)
	}
	return hdr, nil
}

// blockPayload returns the payload bytes of the block with header hdr
// starting at pos within b (pos is the offset of the block header itself).
func blockPayload(b []byte, pos uint32, hdr BlockHeader) []byte {
	start := pos + blockHeaderSize
	return b[start : start+hdr.PayloadLen()]
}
