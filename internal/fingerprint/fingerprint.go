// Package fingerprint detects document changes and binary content.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// SampleSize is the number of leading bytes inspected by IsBinary.
const SampleSize = 8000

// maxNonPrintableRatio is the share of non-printable bytes above which a
// sample is treated as binary.
const maxNonPrintableRatio = 0.30

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// IsBinary reports whether data looks like binary content: a NUL byte in the
// leading sample, or more than 30% non-printable bytes in it.
func IsBinary(data []byte) bool {
	sample := data
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
	}
	if len(sample) == 0 {
		return false
	}
	nonPrintable := 0
	for _, b := range sample {
		if b == 0 {
			return true
		}
		if !printable(b) {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(sample)) > maxNonPrintableRatio
}

// printable treats tab, newline, carriage return, form feed, printable ASCII
// and any byte of a multi-byte UTF-8 sequence as text.
func printable(b byte) bool {
	switch {
	case b == '\t', b == '\n', b == '\r', b == '\f':
		return true
	case b >= 0x20 && b < 0x7f:
		return true
	case b >= 0x80:
		return true
	}
	return false
}
