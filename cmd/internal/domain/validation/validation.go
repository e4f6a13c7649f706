// Package validation holds the field rules shared by the comment and note
// verticals. Everything here is a pure function of its input.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gosimple/slug"

	"newsnotes/cmd/internal/domain/entity"
)

type Kind string

const (
	KindBannedContent Kind = "BANNED_CONTENT"
	KindSlugDuplicate Kind = "SLUG_DUPLICATE"
	KindMissingField  Kind = "MISSING_FIELD"
)

const (
	BannedContentMessage = "Don't use profanity!"
	slugDuplicateFormat  = "%s - this slug already exists, pick a unique value!"
)

// BannedWords are matched case-sensitively as substrings of comment text.
var BannedWords = []string{
	"редиска",
	"негодяй",
}

// ValidationError is the failure branch of every rule in this package.
type ValidationError struct {
	Kind    Kind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateCommentText rejects text containing any banned word.
func ValidateCommentText(text string) *ValidationError {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Kind: KindMissingField, Field: "text", Message: "This field is required"}
	}

	if ContainsBannedWord(text) {
		return &ValidationError{Kind: KindBannedContent, Field: "text", Message: BannedContentMessage}
	}
	return nil
}

func ContainsBannedWord(text string) bool {
	for _, word := range BannedWords {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// Slugify transliterates the title into a lowercase URL-safe slug, cut to the
// slug column size.
func Slugify(title string) string {
	s := slug.Make(title)
	if utf8.RuneCountInString(s) <= entity.NoteSlugMaxLength {
		return s
	}
	return strings.TrimRight(string([]rune(s)[:entity.NoteSlugMaxLength]), "-")
}

// SlugExists reports whether a slug is already taken store-wide.
type SlugExists func(slug string) (bool, error)

// DeriveOrValidateSlug returns the supplied slug, or one derived from the title
// when none was supplied, failing when it is already taken.
//
// A non-nil error that is not a *ValidationError comes from 'exists' itself.
func DeriveOrValidateSlug(title, supplied string, exists SlugExists) (string, error) {
	candidate := strings.TrimSpace(supplied)
	if candidate == "" {
		candidate = Slugify(title)
	}

	if candidate == "" {
		return "", &ValidationError{
			Kind:    KindMissingField,
			Field:   "slug",
			Message: "Could not derive a slug from the title, please provide one",
		}
	}

	taken, err := exists(candidate)
	if err != nil {
		return "", err
	}

	if taken {
		return "", NewSlugDuplicateError(candidate)
	}
	return candidate, nil
}

func NewSlugDuplicateError(slug string) *ValidationError {
	return &ValidationError{
		Kind:    KindSlugDuplicate,
		Field:   "slug",
		Message: fmt.Sprintf(slugDuplicateFormat, slug),
	}
}
