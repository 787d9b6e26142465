// Package keywords classifies comments into two mutually exclusive keyword categories.
package keywords

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"commentsent/internal/models"

	"gopkg.in/yaml.v3"
)

// Keyword errors.
var (
	ErrMissingKeywords = errors.New("missing keyword list")
	ErrInvalidPattern  = errors.New("invalid keyword pattern")
)

const (
	// Any Unicode letter, digit or underscore counts as part of a word, so
	// "pap" does not match inside "papé" or "ñpap".
	leadingBoundary  = `(?:^|[^\p{L}\p{N}_])`
	trailingBoundary = `(?:$|[^\p{L}\p{N}_])`

	asciiBoundary = `\b`

	fieldCategoryA = "papKeywords"
	fieldCategoryB = "oppoKeywords"
)

// Sets holds the raw keyword lists read from the keywords file.
type Sets struct {
	A []string `yaml:"papKeywords"`
	B []string `yaml:"oppoKeywords"`
}

// LoadKeywords reads both keyword lists from a YAML file. Either list being
// absent or empty is a configuration error.
func LoadKeywords(path string) (*Sets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords file: %w", err)
	}

	return ParseKeywords(data)
}

// ParseKeywords decodes keyword lists from YAML.
func ParseKeywords(data []byte) (*Sets, error) {
	var sets Sets
	if err := yaml.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("failed to parse keywords: %w", err)
	}

	if err := checkList(fieldCategoryA, sets.A); err != nil {
		return nil, err
	}

	if err := checkList(fieldCategoryB, sets.B); err != nil {
		return nil, err
	}

	return &sets, nil
}

func checkList(field string, list []string) error {
	if len(list) == 0 {
		return fmt.Errorf("%w: %s", ErrMissingKeywords, field)
	}

	for i, keyword := range list {
		if strings.TrimSpace(keyword) == "" {
			return fmt.Errorf("%w: %s[%d] is blank", ErrMissingKeywords, field, i)
		}
	}

	return nil
}

// Anchor wraps keyword in word-boundary markers. Already anchored keywords are
// returned unchanged; a keyword written as \bkw\b is re-anchored.
func Anchor(keyword string) string {
	if strings.HasPrefix(keyword, leadingBoundary) && strings.HasSuffix(keyword, trailingBoundary) &&
		len(keyword) > len(leadingBoundary)+len(trailingBoundary) {
		return keyword
	}

	if strings.HasPrefix(keyword, asciiBoundary) && strings.HasSuffix(keyword, asciiBoundary) &&
		len(keyword) > 2*len(asciiBoundary) {
		keyword = keyword[len(asciiBoundary) : len(keyword)-len(asciiBoundary)]
	}

	return leadingBoundary + keyword + trailingBoundary
}

// PatternSet is a compiled, read-only keyword set.
type PatternSet struct {
	patterns []*regexp.Regexp
}

// Compile anchors and compiles every keyword.
func Compile(keywords []string) (*PatternSet, error) {
	ps := &PatternSet{patterns: make([]*regexp.Regexp, 0, len(keywords))}

	for _, keyword := range keywords {
		if strings.TrimSpace(keyword) == "" {
			return nil, fmt.Errorf("%w: blank keyword", ErrInvalidPattern)
		}

		re, err := regexp.Compile(Anchor(keyword))
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, keyword, err)
		}

		ps.patterns = append(ps.patterns, re)
	}

	return ps, nil
}

// Patterns returns the anchored pattern strings in keyword order.
func (ps *PatternSet) Patterns() []string {
	out := make([]string, len(ps.patterns))
	for i, re := range ps.patterns {
		out[i] = re.String()
	}

	return out
}

// Len returns the number of patterns.
func (ps *PatternSet) Len() int {
	return len(ps.patterns)
}

// Matches reports whether any pattern matches the lowercased text.
func (ps *PatternSet) Matches(text string) bool {
	lowered := strings.ToLower(text)

	for _, re := range ps.patterns {
		if re.MatchString(lowered) {
			return true
		}
	}

	return false
}

// Classify reports whether c matches forSet and does not match againstSet.
func Classify(c models.Comment, forSet, againstSet *PatternSet) bool {
	return forSet.Matches(c.Body) && !againstSet.Matches(c.Body)
}

// Filter keeps the comments that Classify accepts, preserving order.
func Filter(comments []models.Comment, forSet, againstSet *PatternSet) []models.Comment {
	filtered := make([]models.Comment, 0)

	for _, c := range comments {
		if Classify(c, forSet, againstSet) {
			filtered = append(filtered, c)
		}
	}

	return filtered
}
