package transform

import (
	"hash/fnv"
	"math/bits"
	"strings"
	"unicode"
)

// shingleSize is the word-shingle width used for fingerprinting. Three-word
// shingles keep enough local order to tell apart pages that share vocabulary
// but differ in content.
const shingleSize = 3

// duplicateThreshold is the maximum Hamming distance at which two page
// fingerprints are considered the same content.
const duplicateThreshold = 3

// Fingerprint computes a 64-bit similarity hash of the given text. Tokens
// are lowercased words with punctuation stripped, combined into overlapping
// word shingles hashed with FNV-64a into a bit accumulation vector.
func Fingerprint(text string) uint64 {
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var vector [64]int

	emit := func(shingle string) {
		h := fnv.New64a()
		h.Write([]byte(shingle))
		hash := h.Sum64()
		for i := 0; i < 64; i++ {
			if hash&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	if len(words) < shingleSize {
		emit(strings.Join(words, " "))
	} else {
		for i := 0; i+shingleSize <= len(words); i++ {
			emit(strings.Join(words[i:i+shingleSize], " "))
		}
	}

	var fingerprint uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fingerprint |= 1 << uint(i)
		}
	}
	return fingerprint
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// SameContent reports whether two fingerprints are close enough to treat
// their pages as duplicates. Zero fingerprints (empty pages) never match.
func SameContent(a, b uint64) bool {
	if a == 0 || b == 0 {
		return false
	}
	return Distance(a, b) <= duplicateThreshold
}

// tokenize lowercases the text and splits it into words, dropping
// punctuation so cosmetic markup differences do not change the fingerprint.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
