// Package matcher extracts patterns and amounts from chat text. It does no I/O.
package matcher

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Trigger words recognized in messages that mention the bot.
const (
	RegisterTrigger  = "かぞえて"
	OverwriteTrigger = "うわがき"
	DeleteTrigger    = "けして"
)

// DefaultAmount is added when a counted message carries no leading number.
const DefaultAmount int32 = 1

// ErrFormat is returned when a digit run does not fit a 32-bit signed integer.
var ErrFormat = errors.New("malformed amount")

// space also covers ideographic space (U+3000), common in Japanese input.
const space = `[\s\p{Zs}]`

var registerRe = regexp.MustCompile(RegisterTrigger + space + `+(.*)$`)

// ExtractRegistration returns the text following the registration trigger and
// at least one whitespace character. Whitespace inside the pattern is kept.
func ExtractRegistration(text string) (string, bool) {
	m := registerRe.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// ExtractIncrement returns the number written directly before pattern, or
// DefaultAmount when there is none.
func ExtractIncrement(pattern, text string) (int32, error) {
	re, err := regexp.Compile(`(\d+)` + space + `*` + regexp.QuoteMeta(pattern))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return DefaultAmount, nil
	}
	return parseAmount(m[1])
}

// ExtractOverwrite returns the number written after pattern and whitespace.
// ok is false when no such number exists; there is no default.
func ExtractOverwrite(pattern, text string) (amount int32, ok bool, err error) {
	re, err := regexp.Compile(regexp.QuoteMeta(pattern) + space + `+(\d+)`)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false, nil
	}
	amount, err = parseAmount(m[1])
	if err != nil {
		return 0, false, err
	}
	return amount, true, nil
}

func parseAmount(digits string) (int32, error) {
	n, err := strconv.ParseInt(digits, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrFormat, digits, err)
	}
	return int32(n), nil
}
