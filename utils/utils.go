package utils

import (
	"unicode/utf8"
)

func ReadableBool(b bool, trueValue string, falseValue string) string {
	if b {
		return trueValue
	} else {
		return falseValue
	}
}

type MapCallback[T any, R any] func(v T) R

func Map[T any, R any](arr []T, callback MapCallback[T, R]) []R {
	out := make([]R, len(arr))

	for i, v := range arr {
		out[i] = callback(v)
	}

	return out
}

func Filter[T any](arr []T, keep func(v T) bool) []T {
	out := make([]T, 0, len(arr))

	for _, v := range arr {
		if keep(v) {
			out = append(out, v)
		}
	}

	return out
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	r := []rune(s)

	return string(r[:n])
}
