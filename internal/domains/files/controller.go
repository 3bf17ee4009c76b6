package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/auroradesk/aurora/pkg/Logger"
)

const (
	maxResults          = 50
	maxContentScanBytes = 1 << 20
	recentCap           = 100
	defaultRecentLimit  = 20
)

// Match is one file returned by a search, scored by relevance.
type Match struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Modified  time.Time `json:"modified"`
	Type      string    `json:"type"` // extension, with dot
	Category  string    `json:"category"`
	Relevance float64   `json:"relevance"`
}

// OrganizeResult reports what an organize pass moved where.
type OrganizeResult struct {
	Strategy       string              `json:"strategy"`
	Directory      string              `json:"directory"`
	FilesOrganized int                 `json:"filesOrganized"`
	Categories     map[string][]string `json:"categories"`
}

// RecentFile is one entry in the controller's accessed-file history.
type RecentFile struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	AccessedAt time.Time `json:"accessedAt"`
}

// SearchOptions narrows a search. An empty Directory means the user's
// home directory.
type SearchOptions struct {
	Directory     string
	FileTypes     []string // extensions without dot
	ContentSearch bool
}

// Controller performs filesystem search and organization for the file
// routes. Recent tracking covers files the gateway itself touched.
type Controller struct {
	logger *Logger.Logger

	mu     sync.Mutex
	recent []RecentFile
}

func New(logger *Logger.Logger) *Controller {
	return &Controller{logger: logger}
}

// Search walks the directory tree matching filenames against the query,
// or file contents when ContentSearch is set. Results come back sorted
// by relevance, capped at 50. Unreadable entries are skipped.
func (c *Controller) Search(ctx context.Context, query string, opts SearchOptions) ([]Match, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	dir := opts.Directory
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("no search directory: %w", err)
		}
		dir = home
	}

	queryLower := strings.ToLower(query)
	var matches []Match

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if !matchesType(d.Name(), opts.FileTypes) {
			return nil
		}

		relevance := nameRelevance(d.Name(), queryLower)
		if opts.ContentSearch {
			if contentContains(path, queryLower) {
				// Content hits outrank most filename matches.
				if relevance < 0.8 {
					relevance = 0.8
				}
			} else if relevance == 0 {
				return nil
			}
		} else {
			if pr := pathRelevance(path, queryLower); pr > relevance {
				relevance = pr
			}
			if relevance == 0 {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		matches = append(matches, Match{
			Path:      path,
			Name:      d.Name(),
			Size:      info.Size(),
			Modified:  info.ModTime(),
			Type:      filepath.Ext(path),
			Category:  categoryFor(path),
			Relevance: relevance,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", dir, err)
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Relevance > matches[j].Relevance })
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	for _, m := range matches {
		c.touch(m.Path, m.Size)
	}
	return matches, nil
}

// Organize moves every regular file directly under the directory into a
// category subdirectory chosen by the strategy: "type" buckets by
// extension, "date" by modification month, "size" by small/medium/large.
func (c *Controller) Organize(ctx context.Context, directory, strategy string) (*OrganizeResult, error) {
	if strategy == "" {
		strategy = "type"
	}
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("organize %s: %w", directory, err)
	}

	result := &OrganizeResult{
		Strategy:   strategy,
		Directory:  directory,
		Categories: make(map[string][]string),
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		category := categorize(filepath.Join(directory, entry.Name()), info, strategy)
		categoryDir := filepath.Join(directory, category)
		if err := os.MkdirAll(categoryDir, 0o755); err != nil {
			return nil, fmt.Errorf("create category dir %s: %w", categoryDir, err)
		}

		newPath := filepath.Join(categoryDir, entry.Name())
		if err := os.Rename(filepath.Join(directory, entry.Name()), newPath); err != nil {
			c.logger.Warnf("could not move %s: %v", entry.Name(), err)
			continue
		}
		result.Categories[category] = append(result.Categories[category], newPath)
		result.FilesOrganized++
		c.touch(newPath, info.Size())
	}

	c.logger.Infof("Organized %d file(s) in %s by %s", result.FilesOrganized, directory, strategy)
	return result, nil
}

// Recent returns files the gateway touched, newest first, optionally
// filtered by extension.
func (c *Controller) Recent(limit int, fileType string) []RecentFile {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]RecentFile, 0, limit)
	for _, rf := range c.recent {
		if fileType != "" && !strings.EqualFold(strings.TrimPrefix(rf.Type, "."), strings.TrimPrefix(fileType, ".")) {
			continue
		}
		out = append(out, rf)
		if len(out) == limit {
			break
		}
	}
	return out
}

// touch records a file access at the head of the recent list, deduping
// by path and dropping the tail past the cap.
func (c *Controller) touch(path string, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := RecentFile{
		Path:       path,
		Name:       filepath.Base(path),
		Type:       filepath.Ext(path),
		Size:       size,
		AccessedAt: time.Now(),
	}
	kept := make([]RecentFile, 0, len(c.recent)+1)
	kept = append(kept, entry)
	for _, rf := range c.recent {
		if rf.Path == path {
			continue
		}
		kept = append(kept, rf)
		if len(kept) == recentCap {
			break
		}
	}
	c.recent = kept
}

func matchesType(name string, fileTypes []string) bool {
	if len(fileTypes) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, ft := range fileTypes {
		if ext == strings.TrimPrefix(strings.ToLower(ft), ".") {
			return true
		}
	}
	return false
}

// nameRelevance scores a filename against the query: exact match, then
// prefix, then substring, then per-word partial overlap.
func nameRelevance(name, queryLower string) float64 {
	nameLower := strings.ToLower(name)
	base := strings.TrimSuffix(nameLower, strings.ToLower(filepath.Ext(name)))

	switch {
	case nameLower == queryLower || base == queryLower:
		return 1.0
	case strings.HasPrefix(nameLower, queryLower):
		return 0.8
	case strings.Contains(nameLower, queryLower):
		return 0.6
	}

	nameWords := strings.FieldsFunc(nameLower, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	var matched int
	for _, qw := range strings.Fields(queryLower) {
		for _, nw := range nameWords {
			if strings.HasPrefix(nw, qw) {
				matched++
				break
			}
		}
	}
	score := float64(matched) * 0.2
	if score > 1 {
		score = 1
	}
	return score
}

// pathRelevance gives a boost when the query names a directory on the
// file's path rather than the file itself.
func pathRelevance(path, queryLower string) float64 {
	pathLower := strings.ToLower(path)
	if !strings.Contains(pathLower, queryLower) {
		return 0
	}
	parts := strings.Split(pathLower, string(os.PathSeparator))
	for _, part := range parts[:len(parts)-1] {
		if strings.Contains(part, queryLower) {
			return 0.7
		}
	}
	return 0.4
}

// contentContains reports whether the first megabyte of the file
// contains the query, case-insensitively.
func contentContains(path, queryLower string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf, err := io.ReadAll(io.LimitReader(f, maxContentScanBytes))
	if err != nil {
		return false
	}
	return bytes.Contains(bytes.ToLower(buf), []byte(queryLower))
}

func categorize(path string, info fs.FileInfo, strategy string) string {
	switch strategy {
	case "type":
		return categoryFor(path)
	case "date":
		return info.ModTime().Format("2006-01")
	case "size":
		sizeMB := float64(info.Size()) / (1 << 20)
		switch {
		case sizeMB < 1:
			return "small"
		case sizeMB < 10:
			return "medium"
		default:
			return "large"
		}
	default:
		return "other"
	}
}

var extensionCategories = map[string]string{
	".pdf": "documents", ".doc": "documents", ".docx": "documents",
	".txt": "documents", ".rtf": "documents",
	".jpg": "images", ".jpeg": "images", ".png": "images",
	".gif": "images", ".bmp": "images", ".svg": "images",
	".mp4": "videos", ".avi": "videos", ".mov": "videos",
	".mkv": "videos", ".mpg": "videos",
	".mp3": "audio", ".wav": "audio", ".flac": "audio",
	".aac": "audio", ".ogg": "audio",
	".zip": "archives", ".rar": "archives", ".7z": "archives",
	".tar": "archives", ".gz": "archives",
	".exe": "executables", ".msi": "executables",
	".py": "code", ".js": "code", ".go": "code", ".html": "code",
	".css": "code", ".json": "code", ".xml": "code",
}

func categoryFor(path string) string {
	if cat, ok := extensionCategories[strings.ToLower(filepath.Ext(path))]; ok {
		return cat
	}
	return "other"
}
