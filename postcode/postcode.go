// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

// Package postcode canonicalises UK postcodes and matches their outward
// code against a configured allow-list of prefixes.
package postcode

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// inwardLen is the length of the inward part of a UK postcode ("1AA").
const inwardLen = 3

// ukPostcode matches the UK shape: 1-2 letters, 1 digit, an optional letter
// or digit, optional whitespace, 1 digit and 2 letters.
var ukPostcode = regexp.MustCompile(`(?i)^[A-Z]{1,2}\d[A-Z\d]?\s*\d[A-Z]{2}$`)

// Normalize uppercases raw and removes every whitespace character.
// Compatibility forms (full-width letters, non-breaking spaces) are folded
// first so pasted input normalizes the same way as typed input.
func Normalize(raw string) string {
	s, _, err := transform.String(
		transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(unicode.White_Space)),
		),
		raw,
	)
	if err != nil {
		s = strings.Join(strings.Fields(raw), "")
	}

	return strings.ToUpper(s)
}

// ExtractOutward returns the outward code of raw: the normalized postcode
// without its trailing inward part. Inputs shorter than five characters
// carry no inward part and are returned normalized but otherwise unchanged.
// Lengths count characters, not bytes.
func ExtractOutward(raw string) string {
	pc := []rune(Normalize(raw))
	if len(pc) < inwardLen+2 {
		return string(pc)
	}

	return string(pc[:len(pc)-inwardLen])
}

// ParsePrefixes splits a comma separated allow-list into uppercase,
// whitespace-free prefixes, dropping empty entries.
func ParsePrefixes(csv string) []string {
	parts := strings.Split(Normalize(csv), ",")

	prefixes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}

	return prefixes
}

// IsAllowedByPrefix reports whether the outward code of raw starts with any
// prefix listed in csv. An empty postcode or an empty list never matches.
func IsAllowedByPrefix(raw, csv string) bool {
	outward := ExtractOutward(raw)
	if outward == "" {
		return false
	}

	for _, prefix := range ParsePrefixes(csv) {
		if strings.HasPrefix(outward, prefix) {
			return true
		}
	}

	return false
}

// IsUKPostcode reports whether q, once trimmed, has the shape of a UK
// postcode. Letter case and the separating space are not significant.
func IsUKPostcode(q string) bool {
	return ukPostcode.MatchString(strings.TrimSpace(q))
}
