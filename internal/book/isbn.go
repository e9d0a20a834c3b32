package book

import (
	"regexp"
	"strings"
)

type ISBN string
type ISBN10 ISBN
type ISBN13 ISBN

var badIsbns = map[string]struct{}{
	"0123456789": {},
	"0000000000": {},
	"1111111111": {},
	"2222222222": {},
	"3333333333": {},
	"4444444444": {},
	"5555555555": {},
	"6666666666": {},
	"7777777777": {},
	"8888888888": {},
	"9999999999": {},
}

var isbnSeparators = regexp.MustCompile(`[\s\-]+`)

func IsIsbnCandidate(s string) bool {
	l := len(s)
	if l != 10 && l != 13 {
		return false
	}

	for i, c := range strings.ToUpper(s) {
		if c == 'X' {
			// X is only permitted as the ISBN-10 check digit
			if l != 10 || i != l-1 {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}

	_, isBad := badIsbns[s]
	return !isBad
}

func (isbn ISBN10) IsValid() bool {
	sisbn := strings.ToUpper(string(isbn))
	if len(sisbn) != 10 {
		return false
	}

	sum := 0
	for i, c := range sisbn {
		multiplier := 10 - i

		switch {
		case '0' <= c && c <= '9':
			sum += multiplier * int(c-'0')
		case c == 'X' && i == len(sisbn)-1:
			sum += 10
		default:
			return false
		}
	}

	return sum%11 == 0
}

func (isbn ISBN13) IsValid() bool {
	sisbn := string(isbn)
	if len(sisbn) != 13 {
		return false
	}

	var multiplier uint = 1
	var sum uint = 0

	for _, c := range sisbn {
		if c < '0' || c > '9' {
			return false
		}
		sum += multiplier * uint(c-'0')
		multiplier ^= 1 ^ 3
	}

	return sum%10 == 0
}

// ParseIsbn reports whether the whole query is a single valid ISBN-10 or
// ISBN-13, ignoring hyphens and whitespace, and returns its compact form.
func ParseIsbn(query string) (ISBN, bool) {
	clean := strings.ToUpper(isbnSeparators.ReplaceAllString(strings.TrimSpace(query), ""))
	if !IsIsbnCandidate(clean) {
		return "", false
	}

	switch len(clean) {
	case 10:
		if ISBN10(clean).IsValid() {
			return ISBN(clean), true
		}
	case 13:
		if ISBN13(clean).IsValid() {
			return ISBN(clean), true
		}
	}
	return "", false
}
