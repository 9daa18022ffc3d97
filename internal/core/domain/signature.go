package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// IndexSignature identifies the pipeline that built a chunk set.
// Chunks built under a different signature are not comparable with
// query vectors from the current embedder.
type IndexSignature struct {
	Model      string
	Dimensions int
	ChunkSize  int
	Overlap    int
}

// String encodes the signature. The model name goes last because it may
// contain any separator.
func (s IndexSignature) String() string {
	return fmt.Sprintf("%d:%d:%d:%s", s.Dimensions, s.ChunkSize, s.Overlap, s.Model)
}

// ParseIndexSignature decodes a value produced by IndexSignature.String.
func ParseIndexSignature(v string) (IndexSignature, error) {
	parts := strings.SplitN(v, ":", 4)
	if len(parts) != 4 {
		return IndexSignature{}, fmt.Errorf("%w: index signature %q", ErrInvalidInput, v)
	}
	var nums [3]int
	for i := range nums {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return IndexSignature{}, fmt.Errorf("%w: index signature %q", ErrInvalidInput, v)
		}
		nums[i] = n
	}
	return IndexSignature{
		Dimensions: nums[0],
		ChunkSize:  nums[1],
		Overlap:    nums[2],
		Model:      parts[3],
	}, nil
}

// fingerprintSep separates the file fingerprint from the signature.
const fingerprintSep = "@"

// StampFingerprint combines a file fingerprint with the signature of the
// pipeline that indexed it. The result is what Document.Fingerprint stores.
func StampFingerprint(file string, sig IndexSignature) string {
	return file + fingerprintSep + sig.String()
}

// SplitFingerprint reverses StampFingerprint. ok is false when the stored
// value carries no readable signature.
func SplitFingerprint(stored string) (file string, sig IndexSignature, ok bool) {
	file, rest, found := strings.Cut(stored, fingerprintSep)
	if !found {
		return stored, IndexSignature{}, false
	}
	sig, err := ParseIndexSignature(rest)
	if err != nil {
		return file, IndexSignature{}, false
	}
	return file, sig, true
}
