package vm

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Tape images: CBOR snapshots of final run state
// ---------------------------------------------------------------------------

// cborEncMode uses canonical options so that identical state always encodes
// to identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// ImageFormatVersion is the current tape image format version.
const ImageFormatVersion = 1

// TapeImage captures tape contents and pointer position at the end of a run.
// Cells is stored with trailing zeros trimmed; TapeLength records the full
// fixed tape size. CyclesUsed is informational and does not carry into the
// budget of a resumed run.
type TapeImage struct {
	Version    int    `cbor:"version"`
	TapeLength int    `cbor:"tapeLength"`
	Pointer    int    `cbor:"pointer"`
	Cells      []byte `cbor:"cells"`
	CyclesUsed uint64 `cbor:"cyclesUsed"`
}

// Snapshot captures the context's current tape, pointer and cycle count.
func (c *Context) Snapshot() *TapeImage {
	end := len(c.tape)
	for end > 0 && c.tape[end-1] == 0 {
		end--
	}
	cells := make([]byte, end)
	copy(cells, c.tape[:end])

	return &TapeImage{
		Version:    ImageFormatVersion,
		TapeLength: len(c.tape),
		Pointer:    c.ptr,
		Cells:      cells,
		CyclesUsed: c.CyclesUsed(),
	}
}

// MarshalImage serializes a TapeImage to CBOR bytes.
func MarshalImage(img *TapeImage) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// UnmarshalImage deserializes and validates a TapeImage from CBOR bytes.
func UnmarshalImage(data []byte) (*TapeImage, error) {
	var img TapeImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("vm: unmarshal tape image: %w", err)
	}
	if img.Version != ImageFormatVersion {
		return nil, fmt.Errorf("vm: unsupported tape image version %d", img.Version)
	}
	if img.TapeLength <= 0 {
		return nil, fmt.Errorf("vm: tape image has invalid tape length %d", img.TapeLength)
	}
	if img.Pointer < 0 || img.Pointer >= img.TapeLength {
		return nil, fmt.Errorf("vm: tape image pointer %d out of range [0, %d)", img.Pointer, img.TapeLength)
	}
	if len(img.Cells) > img.TapeLength {
		return nil, fmt.Errorf("vm: tape image has %d cells for a tape of length %d", len(img.Cells), img.TapeLength)
	}
	return &img, nil
}

// WriteImageFile writes an encoded image to path.
func WriteImageFile(path string, img *TapeImage) error {
	data, err := MarshalImage(img)
	if err != nil {
		return fmt.Errorf("vm: marshal tape image: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("vm: write tape image: %w", err)
	}
	return nil
}

// ReadImageFile reads and decodes an image from path.
func ReadImageFile(path string) (*TapeImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vm: read tape image: %w", err)
	}
	return UnmarshalImage(data)
}
