// Package persistence writes finished itineraries.
package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Saver stores a document under a name and returns where it went. Saving
// the same name twice overwrites.
type Saver interface {
	Save(ctx context.Context, document, name string) (string, error)
}

// FileSaver writes <dir>/<name>.md.
type FileSaver struct {
	Dir string
}

var _ Saver = FileSaver{}

func (s FileSaver) Save(ctx context.Context, document, name string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name = strings.TrimSuffix(filepath.Base(name), ".md")
	path := filepath.Join(s.Dir, name+".md")
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		return "", fmt.Errorf("write itinerary: %w", err)
	}
	return path, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// SuggestName builds itinerary_<destination>_<YYYYMMDD_HHMMSS>.
func SuggestName(destination string, at time.Time) string {
	safe := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(destination), "_"), "_")
	if safe == "" {
		safe = "trip"
	}
	return fmt.Sprintf("itinerary_%s_%s", safe, at.Format("20060102_150405"))
}
