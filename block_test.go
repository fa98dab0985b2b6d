package adb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockHeaderRoundTrip(t *testing.T) {
	hdr := BlockHeader{Type: BlockSIG, Size: 100}
	require.Equal(t, hdr, decodeBlockHeader(hdr.encode()))
}

func TestPadLen(t *testing.T) {
	require.EqualValues(t, 0, padLen(32, 32))
	require.EqualValues(t, 0, padLen(64, 32))
	require.EqualValues(t, 1, padLen(31, 32))
	require.EqualValues(t, 31, padLen(33, 32))
}

func buildBlockStream(t *testing.T, blocks []BlockHeader, payloads [][]byte) []byte {
	t.Helper()
	var buf []byte
	for i, hdr := range blocks {
		raw := hdr.encode()
		buf = append(buf, byte(raw), byte(raw>>8), byte(raw>>16), byte(raw>>24))
		buf = append(buf, payloads[i]...)
		buf = append(buf, make([]byte, hdr.Padding())...)
	}
	return buf
}

func TestBlockFirstAndNext(t *testing.T) {
	adbPayload := []byte("hello")
	sigPayload := []byte("sig-bytes")
	blocks := []BlockHeader{
		{Type: BlockADB, Size: uint32(4 + len(adbPayload))},
		{Type: BlockSIG, Size: uint32(4 + len(sigPayload))},
	}
	buf := buildBlockStream(t, blocks, [][]byte{adbPayload, sigPayload})

	first, err := blockFirst(buf)
	require.NoError(t, err)
	require.Equal(t, BlockADB, first.Type)
	require.Equal(t, adbPayload, blockPayload(buf, 0, first))

	firstSize := first.Size + first.Padding()
	second, pos, ok, err := blockNext(buf, 0, first)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, firstSize, pos)
	require.Equal(t, BlockSIG, second.Type)
	require.Equal(t, sigPayload, blockPayload(buf, pos, second))

	_, _, ok, err = blockNext(buf, pos, second)
	require.NoError(t, err)
	require.False(t, ok, "expected end of block stream")
}

func TestBlockValidateRejectsOversizedBlock(t *testing.T) {
	hdr := BlockHeader{Type: BlockADB, Size: 1000}
	raw := hdr.encode()
	buf := []byte{byte(raw), byte(raw >> 8), byte(raw >> 16), byte(raw >> 24)}
	_, err := blockFirst(buf)
	require.Error(t, err)
	require.True(t, IsKind(err, ErrMalformed))
}

func TestBlockValidateRejectsTruncatedHeader(t *testing.T) {
	_, err := blockFirst([]byte{0, 1})
	require.Error(t, err)
	require.True(t, IsKind(err, ErrMalformed))
}
