package phicomp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	headerSize   = 14
	majorVersion = 0x01
	minorVersion = 0x01
)

var magic = [4]byte{'P', 'H', 'I', 'C'}

// writeHeader appends the fixed 14-byte header for a payload of
// originalSize bytes to body.
func writeHeader(body []byte, originalSize uint64) []byte {
	header := make([]byte, headerSize)
	copy(header[0:4], magic[:])
	header[4] = majorVersion
	header[5] = minorVersion
	binary.LittleEndian.PutUint64(header[6:14], originalSize)
	return append(header, body...)
}

// parseHeader validates data's header and returns the declared original
// size and the coded body that follows it.
func parseHeader(data []byte) (originalSize uint64, body []byte, err error) {
	if len(data) < headerSize {
		return 0, nil, errors.Wrap(ErrInvalidContainer, "container shorter than header")
	}
	if data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] || data[3] != magic[3] {
		return 0, nil, errors.Wrap(ErrInvalidContainer, "bad magic")
	}
	originalSize = binary.LittleEndian.Uint64(data[6:14])
	return originalSize, data[headerSize:], nil
}
