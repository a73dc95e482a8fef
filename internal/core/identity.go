package core

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultIdentityLength is the number of preview runes that go into a conversation identity
const DefaultIdentityLength = 20

// UnknownSender stands in for a card whose sender could not be read
const UnknownSender = "Unknown"

// Identity derives the stable conversation key from scraped text only.
// Two conversations with the same sender and the same leading preview collide;
// callers treat that as an accepted approximation.
func Identity(sender, preview string, length int) string {
	if length <= 0 {
		length = DefaultIdentityLength
	}
	p := []rune(normalizeText(preview))
	if len(p) > length {
		p = p[:length]
	}
	name := normalizeText(sender)
	if name == "" {
		name = UnknownSender
	}
	return name + "-" + string(p)
}

// normalizeText trims, collapses internal whitespace and applies NFC so that
// re-scrapes of the same card produce byte-identical keys
func normalizeText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
