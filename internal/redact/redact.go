// Package redact turns source file bodies into TODO stubs for skeleton-mode
// template extraction. Each language family has its own strategy; dispatch
// is a closed switch over the family enum so new languages are added by
// adding a strategy, never by branching deeper.
package redact

import (
	"errors"
	"fmt"

	"github.com/templar-dev/templar/internal/language"
)

// ErrUnsupportedLanguage is returned by ForLanguageStrict when a language
// has no grammar-backed strategy. The default dispatch falls back to generic
// text handling instead, so only strict callers ever see it.
var ErrUnsupportedLanguage = errors.New("no redaction strategy for language")

// Options tune how much of the original structure survives redaction.
type Options struct {
	// KeepComments keeps standalone comment lines outside redacted bodies.
	KeepComments bool
	// IncludeTypes keeps interface and type-alias declarations.
	IncludeTypes bool
}

// DefaultOptions keep everything that is not an implementation body.
func DefaultOptions() Options {
	return Options{KeepComments: true, IncludeTypes: true}
}

// Result is the outcome of redacting one file.
type Result struct {
	Content           string
	RedactedFunctions int
	Notes             []string
}

// Redactor strips implementation bodies from one file's content.
type Redactor interface {
	Redact(path string, src []byte) (*Result, error)
}

// ForLanguage returns the redaction strategy for a detected language.
// Unknown families get the generic text strategy rather than an error:
// an unrecognized language degrades gracefully, it never aborts a run.
func ForLanguage(info language.Info, opts Options) Redactor {
	switch info.Family {
	case language.FamilyConfig:
		// Data-only formats carry no logic to redact.
		return identityRedactor{}
	case language.FamilyDoc, language.FamilyUnknown:
		return docRedactor{opts: opts}
	case language.FamilyIndent:
		return newIndentRedactor(opts)
	case language.FamilyCurly:
		if spec, ok := grammarSpecs[info.Language]; ok {
			return newGrammarRedactor(spec, opts)
		}
		return newBraceRedactor(info.Language, opts, true)
	case language.FamilyGenericBrace:
		return newBraceRedactor(info.Language, opts, false)
	default:
		return docRedactor{opts: opts}
	}
}

// ForLanguageStrict is the fail-closed variant: instead of degrading to
// line-based heuristics it returns ErrUnsupportedLanguage for any language
// that lacks a real grammar, so callers can drop the file rather than ship
// a best-effort stub.
func ForLanguageStrict(info language.Info, opts Options) (Redactor, error) {
	switch info.Family {
	case language.FamilyCurly:
		if _, ok := grammarSpecs[info.Language]; !ok {
			return nil, fmt.Errorf("%s: %w", info.Language, ErrUnsupportedLanguage)
		}
	case language.FamilyGenericBrace, language.FamilyUnknown:
		return nil, fmt.Errorf("%s: %w", orUnknown(info.Language), ErrUnsupportedLanguage)
	}
	return ForLanguage(info, opts), nil
}

func orUnknown(lang string) string {
	if lang == "" {
		return "unknown"
	}
	return lang
}

// identityRedactor passes content through untouched.
type identityRedactor struct{}

func (identityRedactor) Redact(_ string, src []byte) (*Result, error) {
	return &Result{Content: string(src)}, nil
}
