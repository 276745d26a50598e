package internal

import (
	"fmt"
	"iter"
)

// IterSeq2Concat concatenates multiple dual-return iterators into a single iterator sequence.
func IterSeq2Concat[T1 any, T2 any](seqs ...iter.Seq2[T1, T2]) iter.Seq2[T1, T2] {
	return func(yield func(T1, T2) bool) {
		for _, seq := range seqs {
			for val1, val2 := range seq {
				if !yield(val1, val2) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}

// HexDefines converts a table of numeric symbols into assembler equates.
func HexDefines[T ~uint32](table map[string]T) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for key, value := range table {
			if !yield(key, fmt.Sprintf("0x%x", uint32(value))) {
				return
			}
		}
	}
}
