package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const defaultPetNameMaxRunes = 32

// NamePolicy cleans user-typed pet names.
type NamePolicy struct {
	MaxRunes int
	Locale   language.Tag
}

// Normalize returns the stored form of raw: NFC, single-spaced, first letter
// of each word upper-cased (the rest kept as typed). Empty names, names with
// control characters or invalid UTF-8, and names over MaxRunes fail with ErrInvalidPetName.
func (p NamePolicy) Normalize(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", ErrInvalidPetName
	}
	s := norm.NFC.String(raw)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", ErrInvalidPetName
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", ErrInvalidPetName
		}
	}
	max := p.MaxRunes
	if max <= 0 {
		max = defaultPetNameMaxRunes
	}
	if utf8.RuneCountInString(s) > max {
		return "", ErrInvalidPetName
	}
	return cases.Title(p.Locale, cases.NoLower).String(s), nil
}
