package adb

import "io"

// XfrmCallback is invoked once per block during Xfrm. It receives the
// block's type and a reader over exactly its payload bytes (not
// including padding), and writes whatever it wants to out. It returns
// the number of payload bytes it consumed from r (used only to decide
// the bulk-copy fast path) and any error.
//
// A callback that writes nothing and reports zero bytes consumed
// signals "pass this block through unchanged"; Xfrm then performs a
// verbatim bulk copy of header+payload+padding instead of re-encoding
// anything (spec §4.4 "Transform").
type XfrmCallback func(blockType BlockType, r io.Reader, out io.Writer) (consumed int64, err error)

// Xfrm reads a container from in and writes a transformed one to out,
// invoking cb once per block. On any callback error, Xfrm returns that
// error without writing further output (spec §4.4 "Transform": "the
// driver cancels the output stream on any callback error").
func Xfrm(in io.Reader, out io.Writer, cb XfrmCallback) error {
	headerBuf := make([]byte, headerSize)
	if _, err := io.ReadFull(in, headerBuf); err != nil {
		return markf(ErrMalformed, "adb: truncated container header: %v", err)
	}
	if _, err := decodeHeader(headerBuf); err != nil {
		return err
	}
	if _, err := out.Write(headerBuf); err != nil {
		return wrapMark(err, ErrIO)
	}

	for {
		hdr, err := readBlockHeader(in)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := xfrmBlock(in, out, hdr, cb); err != nil {
			return err
		}
	}
}

func xfrmBlock(in io.Reader, out io.Writer, hdr BlockHeader, cb XfrmCallback) error {
	payloadLen := int64(hdr.PayloadLen())
	padLen := int64(hdr.Padding())

	// Buffer the payload so we can both feed it to cb and, on the
	// verbatim-copy fast path, re-emit it without having consumed it
	// from in twice.
	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(in, payload); err != nil {
		return markf(ErrMalformed, "adb: truncated block payload: %v", err)
	}
	if err := discard(in, padLen); err != nil {
		return err
	}

	var buf writeCounter
	consumed, err := cb(hdr.Type, &limitedReader{b: payload}, &buf)
	if err != nil {
		return err
	}

	if consumed == 0 && buf.n == 0 {
		// Verbatim bulk copy: header + payload + padding, unchanged
		// (spec §4.4 "the framer performs a bulk copy ... verbatim").
		rawHdr := [4]byte{}
		putU32(rawHdr[:], hdr.encode())
		if _, err := out.Write(rawHdr[:]); err != nil {
			return wrapMark(err, ErrIO)
		}
		if _, err := out.Write(payload); err != nil {
			return wrapMark(err, ErrIO)
		}
		return writeZeros(out, padLen)
	}

	newHdr := BlockHeader{Type: hdr.Type, Size: blockHeaderSize + uint32(buf.n)}
	rawHdr := [4]byte{}
	putU32(rawHdr[:], newHdr.encode())
	if _, err := out.Write(rawHdr[:]); err != nil {
		return wrapMark(err, ErrIO)
	}
	if _, err := out.Write(buf.data); err != nil {
		return wrapMark(err, ErrIO)
	}
	return writeZeros(out, int64(newHdr.Padding()))
}

func writeZeros(w io.Writer, n int64) error {
	if n <= 0 {
		return nil
	}
	zeros := make([]byte, n)
	_, err := w.Write(zeros)
	return wrapMark(err, ErrIO)
}

// limitedReader exposes exactly the bytes of b, tracking how much of it
// the callback actually consumed.
type limitedReader struct {
	b   []byte
	pos int
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.pos >= len(l.b) {
		return 0, io.EOF
	}
	n := copy(p, l.b[l.pos:])
	l.pos += n
	return n, nil
}

// writeCounter accumulates bytes written by a callback, so Xfrm can
// learn the new block's size before framing it.
type writeCounter struct {
	data []byte
	n    int64
}

func (w *writeCounter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	w.n += int64(len(p))
	return len(p), nil
}
