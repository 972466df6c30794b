// Package validation holds the input rules shared by the API and the
// publishing pipeline.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

const (
	MinWordLength = 2
	MaxWordLength = 20
)

// Reason identifies which rule rejected a word.
type Reason string

const (
	ReasonEmptyInput          Reason = "empty_input"
	ReasonMultiWordInput      Reason = "multi_word_input"
	ReasonNonLetterCharacters Reason = "non_letter_characters"
	ReasonTooShort            Reason = "too_short"
	ReasonTooLong             Reason = "too_long"
)

var (
	ErrEmptyInput          = &Error{Reason: ReasonEmptyInput}
	ErrMultiWordInput      = &Error{Reason: ReasonMultiWordInput}
	ErrNonLetterCharacters = &Error{Reason: ReasonNonLetterCharacters}
	ErrTooShort            = &Error{Reason: ReasonTooShort}
	ErrTooLong             = &Error{Reason: ReasonTooLong}
)

var messages = map[Reason]string{
	ReasonEmptyInput:          "Please enter a word",
	ReasonMultiWordInput:      "Please enter only one word",
	ReasonNonLetterCharacters: "Please use only letters (no numbers or special characters)",
	ReasonTooShort:            "Word must be at least 2 characters long",
	ReasonTooLong:             "Word must be 20 characters or less",
}

var lettersOnly = regexp.MustCompile(`^[A-Za-z]+$`)

// Error is a rejected word. Error() is the message shown to the user.
type Error struct {
	Reason Reason
}

func (e *Error) Error() string {
	return messages[e.Reason]
}

// Is matches any *Error with the same Reason, so callers can write
// errors.Is(err, validation.ErrTooShort).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Reason == e.Reason
}

// ValidateWord applies the word rules in order and stops at the first
// failure. On success it returns the trimmed word with its casing intact.
func ValidateWord(raw string) (string, error) {
	word := strings.TrimSpace(raw)
	if word == "" {
		return "", &Error{Reason: ReasonEmptyInput}
	}
	if strings.IndexFunc(word, unicode.IsSpace) >= 0 {
		return "", &Error{Reason: ReasonMultiWordInput}
	}
	if !lettersOnly.MatchString(word) {
		return "", &Error{Reason: ReasonNonLetterCharacters}
	}
	// ASCII letters only from here, so byte length is character length.
	if len(word) < MinWordLength {
		return "", &Error{Reason: ReasonTooShort}
	}
	if len(word) > MaxWordLength {
		return "", &Error{Reason: ReasonTooLong}
	}
	return word, nil
}
