package protocol

import "fmt"

// FragmentHeaderSize is the wire size of FragmentHeader in bytes.
const FragmentHeaderSize = 2

// FragmentHeader identifies one fragment within a larger logical packet.
type FragmentHeader struct {
	ID           uint8
	NumFragments uint8
}

// NewFragmentHeader builds a fragment header. id is 0-indexed.
func NewFragmentHeader(id, numFragments uint8) FragmentHeader {
	return FragmentHeader{ID: id, NumFragments: numFragments}
}

// Write appends the encoded header to buf and returns the extended slice.
func (h FragmentHeader) Write(buf []byte) []byte {
	return append(buf, h.ID, h.NumFragments)
}

// ReadFragmentHeader decodes a FragmentHeader from the front of data,
// returning the header and the remaining bytes after it.
func ReadFragmentHeader(data []byte) (FragmentHeader, []byte, error) {
	if len(data) < FragmentHeaderSize {
		return FragmentHeader{}, nil, fmt.Errorf("%w: need %d bytes for fragment header, got %d", ErrReceivedDataTooShort, FragmentHeaderSize, len(data))
	}
	h := FragmentHeader{ID: data[0], NumFragments: data[1]}
	return h, data[FragmentHeaderSize:], nil
}
