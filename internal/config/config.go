// Package config locates a paper library and reads its configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/matsen/papernote/internal/paper"
	"github.com/matsen/papernote/internal/pdf"
)

// Config is the per-library configuration in .papernote/config.json.
type Config struct {
	PDFReader    string  `json:"pdf_reader"`    // system, skim, zathura, ... or a command
	DefaultScore float64 `json:"default_score"` // Offered at the score prompt
	RawGlob      string  `json:"raw_glob"`      // Selects inbox PDFs
}

const (
	LibraryDir = ".papernote"
	ConfigFile = "config.json"
	CacheDir   = "cache"
	DBFile     = "papers.db"
	RawDir     = "raw_pdf"
	NotesDir   = "notes"
	IndexDir   = "index"
)

// ErrNotLibrary is returned when no library can be found.
var ErrNotLibrary = errors.New("not in a papernote library (no .papernote directory found)")

// Default returns the configuration written by `pn init`.
func Default() *Config {
	return &Config{
		PDFReader:    "system",
		DefaultScore: paper.DefaultScore,
		RawGlob:      pdf.DefaultGlob,
	}
}

// LibraryPath returns the .papernote directory of root.
func LibraryPath(root string) string {
	return filepath.Join(root, LibraryDir)
}

// ConfigPath returns the config.json path of root.
func ConfigPath(root string) string {
	return filepath.Join(root, LibraryDir, ConfigFile)
}

// CachePath returns the cache directory of root.
func CachePath(root string) string {
	return filepath.Join(root, LibraryDir, CacheDir)
}

// DBPath returns the SQLite cache path of root.
func DBPath(root string) string {
	return filepath.Join(root, LibraryDir, CacheDir, DBFile)
}

// RawPath returns the PDF inbox of root.
func RawPath(root string) string {
	return filepath.Join(root, RawDir)
}

// NotesPath returns the notes directory of root.
func NotesPath(root string) string {
	return filepath.Join(root, NotesDir)
}

// IndexPath returns the index directory of root.
func IndexPath(root string) string {
	return filepath.Join(root, IndexDir)
}

// IsLibrary reports whether root contains a .papernote directory.
func IsLibrary(root string) bool {
	info, err := os.Stat(LibraryPath(root))
	return err == nil && info.IsDir()
}

// FindLibrary walks up from start to the nearest library root.
func FindLibrary(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsLibrary(abs) {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotLibrary
		}
		abs = parent
	}
}

// ResolveLibrary picks the library to operate on: $PN_LIBRARY when set,
// else the nearest library above start, else the global library_path.
func ResolveLibrary(start string) (string, error) {
	if env := os.Getenv(EnvLibrary); env != "" {
		root := ExpandPath(env)
		if !IsLibrary(root) {
			return "", fmt.Errorf("%s=%s: %w", EnvLibrary, root, ErrNotLibrary)
		}
		return root, nil
	}

	root, err := FindLibrary(start)
	if err == nil {
		return root, nil
	}

	global, gerr := LoadGlobalConfig()
	if gerr != nil {
		return "", gerr
	}
	if global.LibraryPath != "" && IsLibrary(global.LibraryPath) {
		return global.LibraryPath, nil
	}
	return "", err
}

// Load reads the configuration of the library at root. Fields missing
// from the file keep their defaults.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration into the library at root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(root), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Keys lists the settings `pn config` can read and write.
var Keys = []string{"pdf-reader", "default-score", "raw-glob"}

// Get returns the value of a setting as text.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "pdf-reader":
		return c.PDFReader, nil
	case "default-score":
		return paper.FormatScore(c.DefaultScore), nil
	case "raw-glob":
		return c.RawGlob, nil
	}
	return "", unknownKey(key)
}

// Set validates and stores a setting.
func (c *Config) Set(key, value string) error {
	switch key {
	case "pdf-reader":
		if value == "" {
			value = "system"
		}
		c.PDFReader = value
	case "default-score":
		score, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid default-score %q: not a number", value)
		}
		if err := paper.ValidateScore(score); err != nil {
			return err
		}
		c.DefaultScore = score
	case "raw-glob":
		if err := pdf.ValidateGlob(value); err != nil {
			return err
		}
		c.RawGlob = value
	default:
		return unknownKey(key)
	}
	return nil
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key %q (valid: %v)", key, Keys)
}

// IsKey reports whether key names a setting.
func IsKey(key string) bool {
	return slices.Contains(Keys, key)
}

// ExpandPath expands a leading ~ to the home directory.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
