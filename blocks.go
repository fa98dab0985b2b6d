package adb

import "os"

// BlockInfo describes one block in a container's block stream, for
// introspection tools (the CLI's `blocks` subcommand).
type BlockInfo struct {
	Type    BlockType
	Offset  uint32 // offset of the block header, relative to the start of the block stream (after the container header)
	Size    uint32 // header + payload, excluding padding
	Padding uint32
}

// ListBlocks reads a container file's header and walks its block
// stream, returning one BlockInfo per block. It performs full framer
// validation (spec §4.1) but does not verify signatures or decode the
// ADB payload.
func ListBlocks(path string) (Header, []BlockInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Header{}, nil, wrapMark(err, ErrIO)
	}
	return ListBlocksBytes(data)
}

// ListBlocksBytes is ListBlocks over an in-memory container image.
func ListBlocksBytes(data []byte) (Header, []BlockInfo, error) {
	if len(data) < headerSize {
		return Header{}, nil, markf(ErrMalformed, "adb: truncated container header")
	}
	hdr, err := decodeHeader(data[:headerSize])
	if err != nil {
		return Header{}, nil, err
	}
	body := data[headerSize:]
	var out []BlockInfo
	cur, err := blockFirst(body)
	if err != nil {
		return Header{}, nil, err
	}
	out = append(out, BlockInfo{Type: cur.Type, Offset: 0, Size: cur.Size, Padding: cur.Padding()})
	pos := uint32(0)
	for {
		next, nextPos, ok, err := blockNext(body, pos, cur)
		if err != nil {
			return Header{}, nil, err
		}
		if !ok {
			break
		}
		out = append(out, BlockInfo{Type: next.Type, Offset: nextPos, Size: next.Size, Padding: next.Padding()})
		pos, cur = nextPos, next
	}
	return hdr, out, nil
}
