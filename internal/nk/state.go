package nk

import (
	"fmt"
	"strconv"
	"strings"
)

// State is a global assignment of one value per position. Values are
// generic integers; the default generators only produce the binary
// alphabet {0, 1}.
type State []int

// BinaryAlphabet returns the default {0, 1} value set.
func BinaryAlphabet() []int {
	return []int{0, 1}
}

func (s State) Clone() State {
	if s == nil {
		return nil
	}
	return append(State(nil), s...)
}

func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the state compactly: "0110" for single-digit values,
// comma separated otherwise.
func (s State) String() string {
	compact := true
	for _, v := range s {
		if v < 0 || v > 9 {
			compact = false
			break
		}
	}
	var b strings.Builder
	for i, v := range s {
		if !compact && i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// key is the structural identity of a substate tuple, used for score-table
// lookups.
func (s State) key() string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// wrapIndex resolves an input index against a state of the given length
// using a true modulo, so -1 maps to length-1.
func wrapIndex(index, length int) int {
	m := index % length
	if m < 0 {
		m += length
	}
	return m
}

// Hamming counts positions where two equal-length states differ.
func Hamming(a, b State) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(a), len(b))
	}
	distance := 0
	for i := range a {
		if a[i] != b[i] {
			distance++
		}
	}
	return distance, nil
}

// MaxEnumeratedStates bounds EnumerateStates; it admits every binary state
// of up to 16 positions.
const MaxEnumeratedStates = 1 << 16

// StateCount returns len(alphabet)^n, or ErrLandscapeTooLarge when that
// exceeds MaxEnumeratedStates.
func StateCount(n, alphabetSize int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: negative length %d", ErrInvalidState, n)
	}
	if alphabetSize <= 0 {
		return 0, fmt.Errorf("%w: empty alphabet", ErrInvalidAlphabet)
	}
	total := 1
	for i := 0; i < n; i++ {
		if total > MaxEnumeratedStates/alphabetSize {
			return 0, fmt.Errorf("%w: %d^%d states exceeds %d", ErrLandscapeTooLarge, alphabetSize, n, MaxEnumeratedStates)
		}
		total *= alphabetSize
	}
	return total, nil
}

// EnumerateStates lists every state of length n over alphabet in
// lexicographic order of alphabet positions.
func EnumerateStates(n int, alphabet []int) ([]State, error) {
	total, err := StateCount(n, len(alphabet))
	if err != nil {
		return nil, err
	}
	out := make([]State, 0, total)
	digits := make([]int, n)
	for {
		state := make(State, n)
		for i, d := range digits {
			state[i] = alphabet[d]
		}
		out = append(out, state)

		pos := n - 1
		for pos >= 0 {
			digits[pos]++
			if digits[pos] < len(alphabet) {
				break
			}
			digits[pos] = 0
			pos--
		}
		if pos < 0 {
			return out, nil
		}
	}
}

func validateAlphabet(alphabet []int) error {
	seen := make(map[int]struct{}, len(alphabet))
	for _, v := range alphabet {
		seen[v] = struct{}{}
	}
	if len(seen) < 2 {
		return fmt.Errorf("%w: need at least 2 distinct values, got %v", ErrInvalidAlphabet, alphabet)
	}
	return nil
}
