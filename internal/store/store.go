// Package store persists comment collections as flat JSON files keyed by month.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"commentsent/internal/logger"
	"commentsent/internal/models"

	"github.com/dustin/go-humanize"
)

// ErrMissingData indicates that no file, or an incomplete set of part files, exists for a period.
var ErrMissingData = errors.New("missing comment data")

const filePrefix = "comments-"

var partSuffix = regexp.MustCompile(`^-(\d+)\.json$`)

// Save writes comments to path as a single JSON array.
func Save(comments []models.Comment, path string) error {
	return WriteJSON(nonNil(comments), path, false)
}

// Load reads a JSON array of comments from path.
func Load(path string) ([]models.Comment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var comments []models.Comment
	if err := json.Unmarshal(data, &comments); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if comments == nil {
		comments = []models.Comment{}
	}

	return comments, nil
}

// WriteJSON marshals v to path, creating parent directories. The whole file is
// rewritten on every call.
func WriteJSON(v any, path string, pretty bool) error {
	var (
		data []byte
		err  error
	)

	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Store resolves periods to files inside one directory.
type Store struct {
	log        *logger.Logger
	dir        string
	maxPerFile int
	pretty     bool
}

// Option customizes a Store.
type Option func(*Store)

// WithMaxPerFile splits months larger than n comments into numbered part files.
func WithMaxPerFile(n int) Option {
	return func(s *Store) {
		s.maxPerFile = n
	}
}

// WithPrettyPrint indents written files.
func WithPrettyPrint(pretty bool) Option {
	return func(s *Store) {
		s.pretty = pretty
	}
}

// New creates a store rooted at dir.
func New(dir string, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		log: log,
		dir: dir,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

func periodFragment(p models.Period) string {
	return fmt.Sprintf("%s%d-%02d", filePrefix, p.Year, p.Month)
}

// PeriodPath returns the whole-month file path, e.g. comments-2020-07.json.
func (s *Store) PeriodPath(p models.Period) string {
	return filepath.Join(s.dir, periodFragment(p)+".json")
}

// PartPath returns the path of a 1-based part file, e.g. comments-2020-07-2.json.
func (s *Store) PartPath(p models.Period, part int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%d.json", periodFragment(p), part))
}

// HasPeriod reports whether a whole-month file or at least one part exists.
func (s *Store) HasPeriod(p models.Period) (bool, error) {
	if fileExists(s.PeriodPath(p)) {
		return true, nil
	}

	names, err := s.matchingNames(p)
	if errors.Is(err, ErrMissingData) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return len(names) > 0, nil
}

// LoadPeriod loads a month. The whole-month file wins when present; otherwise
// every directory entry naming the month counts as one part, and parts
// 1..count are loaded in order. A missing part within that range is an error.
func (s *Store) LoadPeriod(p models.Period) ([]models.Comment, error) {
	wholePath := s.PeriodPath(p)
	if fileExists(wholePath) {
		comments, err := Load(wholePath)
		if err != nil {
			return nil, err
		}

		s.log.Info("Loaded "+wholePath, "count", len(comments))

		return comments, nil
	}

	names, err := s.matchingNames(p)
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no files for %s in %s", ErrMissingData, p, s.dir)
	}

	var comments []models.Comment

	for part := 1; part <= len(names); part++ {
		partPath := s.PartPath(p, part)
		if !fileExists(partPath) {
			return nil, fmt.Errorf("%w: part %d of %s not found (%s)", ErrMissingData, part, p, partPath)
		}

		partComments, err := Load(partPath)
		if err != nil {
			return nil, err
		}

		s.log.Info("Loaded "+partPath, "count", len(partComments))

		comments = append(comments, partComments...)
	}

	return comments, nil
}

// LoadPeriods loads and concatenates several months in the order given.
func (s *Store) LoadPeriods(periods []models.Period) ([]models.Comment, error) {
	var all []models.Comment

	for _, p := range periods {
		comments, err := s.LoadPeriod(p)
		if err != nil {
			return nil, err
		}

		all = append(all, comments...)
	}

	s.log.Info(fmt.Sprintf("Loaded %s comments", humanize.Comma(int64(len(all)))), "periods", len(periods))

	return all, nil
}

// SavePeriod writes a month and returns the files written. Existing files for
// the month are replaced.
func (s *Store) SavePeriod(p models.Period, comments []models.Comment) ([]string, error) {
	if err := s.removePeriodFiles(p); err != nil {
		return nil, err
	}

	if s.maxPerFile <= 0 || len(comments) <= s.maxPerFile {
		path := s.PeriodPath(p)
		if err := WriteJSON(nonNil(comments), path, s.pretty); err != nil {
			return nil, err
		}

		return []string{path}, nil
	}

	var paths []string

	for part, start := 1, 0; start < len(comments); part, start = part+1, start+s.maxPerFile {
		end := min(start+s.maxPerFile, len(comments))

		path := s.PartPath(p, part)
		if err := WriteJSON(comments[start:end], path, s.pretty); err != nil {
			return paths, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// matchingNames lists regular files whose name contains the month fragment.
func (s *Store) matchingNames(p models.Period) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: data directory %s does not exist", ErrMissingData, s.dir)
		}

		return nil, fmt.Errorf("failed to scan %s: %w", s.dir, err)
	}

	fragment := periodFragment(p)

	var names []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if strings.Contains(entry.Name(), fragment) {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}

func (s *Store) removePeriodFiles(p models.Period) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to scan %s: %w", s.dir, err)
	}

	fragment := periodFragment(p)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, fragment) {
			continue
		}

		rest := strings.TrimPrefix(name, fragment)
		if rest != ".json" && !partSuffix.MatchString(rest) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return fmt.Errorf("failed to remove stale %s: %w", name, err)
		}
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

func nonNil(comments []models.Comment) []models.Comment {
	if comments == nil {
		return []models.Comment{}
	}

	return comments
}
