// Package dictionary provides the sorted word index used to prune the grid
// search. Every lookup narrows a Candidates slice that shares the index's
// backing array, so narrowing never copies words.
package dictionary

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"
)

// Candidates is a contiguous, sorted run of dictionary words.
type Candidates []string

// Dictionary is an immutable, byte-wise sorted word list. Duplicates are kept.
type Dictionary struct {
	words       Candidates
	fingerprint string
	minLen      int
	maxLen      int
}

// New copies and sorts words once.
func New(words []string) *Dictionary {
	sorted := slices.Clone(words)
	slices.Sort(sorted)

	d := &Dictionary{words: sorted}
	for i, w := range sorted {
		n := utf8.RuneCountInString(w)
		if i == 0 || n < d.minLen {
			d.minLen = n
		}
		if n > d.maxLen {
			d.maxLen = n
		}
	}
	d.fingerprint = fingerprint(sorted)
	return d
}

// Words returns the full candidate set.
func (d *Dictionary) Words() Candidates { return d.words }

func (d *Dictionary) Len() int { return len(d.words) }

// MinLen and MaxLen are word lengths in runes; both are 0 for an empty
// dictionary.
func (d *Dictionary) MinLen() int { return d.minLen }
func (d *Dictionary) MaxLen() int { return d.maxLen }

// Fingerprint identifies the word list contents. Two dictionaries built from
// the same words in any order share a fingerprint.
func (d *Dictionary) Fingerprint() string { return d.fingerprint }

// Contains reports whether word is in the dictionary.
func (d *Dictionary) Contains(word string) bool {
	_, found := slices.BinarySearch(d.words, word)
	return found
}

// WithPrefix is PrefixRange over the whole dictionary.
func (d *Dictionary) WithPrefix(prefix string) Candidates {
	return PrefixRange(prefix, d.words)
}

// PrefixRange returns the maximal sub-slice of within whose entries start with
// prefix, or an empty slice. within must be sorted.
//
// Relative to a prefix, a sorted list splits into three contiguous blocks:
// entries ordered before it, entries that have it as a prefix, and entries
// ordered after it. Two lower-bound searches find the middle block.
func PrefixRange(prefix string, within Candidates) Candidates {
	lo := sort.Search(len(within), func(i int) bool {
		return comparePrefix(within[i], prefix) >= 0
	})
	if lo == len(within) || !strings.HasPrefix(within[lo], prefix) {
		return within[lo:lo]
	}
	hi := lo + sort.Search(len(within)-lo, func(i int) bool {
		return comparePrefix(within[lo+i], prefix) > 0
	})
	return within[lo:hi]
}

// comparePrefix orders word against prefix, treating "word has prefix" as
// equal.
func comparePrefix(word, prefix string) int {
	if strings.HasPrefix(word, prefix) {
		return 0
	}
	return strings.Compare(word, prefix)
}

func fingerprint(sorted []string) string {
	h := sha256.New()
	for _, w := range sorted {
		h.Write([]byte(w))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}
