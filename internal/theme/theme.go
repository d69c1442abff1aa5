package theme

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// importRegex matches @import "file.css"; or @import 'file.css'; or @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// EmbeddedThemes contains all bundled stylesheets.
//
//go:embed themes/*.css
var EmbeddedThemes embed.FS

// DefaultThemeName is the name of the built-in default stylesheet.
const DefaultThemeName = "default"

// Stylesheet is a loaded CSS theme.
type Stylesheet struct {
	Name      string    // Theme name (without .css extension)
	Path      string    // Full path to the CSS file (empty when bundled)
	CSS       string    // The CSS content with imports inlined
	ModTime   time.Time // Last modification time
	IsBundled bool
}

// GetEmbeddedTheme retrieves a bundled stylesheet or partial by name.
func GetEmbeddedTheme(name string) (string, bool) {
	if !strings.HasSuffix(name, ".css") {
		name += ".css"
	}
	data, err := EmbeddedThemes.ReadFile("themes/" + name)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// ListEmbeddedThemes returns names of all bundled stylesheets.
// Partials (files starting with _) are excluded.
func ListEmbeddedThemes() []string {
	var names []string
	entries, err := fs.ReadDir(EmbeddedThemes, "themes")
	if err != nil {
		return []string{DefaultThemeName}
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || filepath.Ext(name) != ".css" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".css"))
	}
	return names
}

// ProcessImports resolves and inlines @import statements in CSS.
// Imports are resolved relative to baseDir, then against bundled files.
// The seen map prevents circular imports.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}

	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		submatch := importRegex.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		importPath := submatch[1]

		fullPath := importPath
		if !filepath.IsAbs(importPath) && baseDir != "" {
			fullPath = filepath.Join(baseDir, importPath)
		}

		if seen[fullPath] {
			return "/* circular import prevented: " + importPath + " */"
		}
		seen[fullPath] = true

		var (
			content string
			nextDir string
		)
		if baseDir != "" {
			if data, err := os.ReadFile(fullPath); err == nil {
				content = string(data)
				nextDir = filepath.Dir(fullPath)
			}
		}
		if content == "" {
			embedded, found := GetEmbeddedTheme(filepath.Base(importPath))
			if !found {
				return "/* import failed: " + importPath + " */"
			}
			content = embedded
		}

		return "/* imported: " + importPath + " */\n" + ProcessImports(content, nextDir, seen)
	})
}

// LoadStylesheet resolves a stylesheet by name.
// Resolution order:
//  1. User themes directory (dir/<name>.css)
//  2. Bundled stylesheets
//  3. The bundled default
func LoadStylesheet(name, dir string, logger *slog.Logger) *Stylesheet {
	if logger == nil {
		logger = slog.Default()
	}
	if name == "" {
		name = DefaultThemeName
	}

	if dir != "" {
		path := filepath.Join(dir, name+".css")
		if info, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err == nil {
				logger.Debug("loaded user stylesheet", "name", name, "path", path)
				return &Stylesheet{
					Name:    name,
					Path:    path,
					CSS:     ProcessImports(string(data), dir, nil),
					ModTime: info.ModTime(),
				}
			}
			logger.Warn("failed to read user stylesheet, trying bundled", "name", name, "error", err)
		}
	}

	if css, found := GetEmbeddedTheme(name); found && !strings.HasPrefix(name, "_") {
		return &Stylesheet{Name: name, CSS: ProcessImports(css, "", nil), IsBundled: true}
	}

	logger.Warn("stylesheet not found, using default", "name", name)
	css, _ := GetEmbeddedTheme(DefaultThemeName)
	return &Stylesheet{Name: DefaultThemeName, CSS: ProcessImports(css, "", nil), IsBundled: true}
}

// Loader holds the active stylesheet and swaps it on reload.
type Loader struct {
	mu     sync.RWMutex
	dir    string
	logger *slog.Logger
	sheet  *Stylesheet
}

// NewLoader creates a loader searching dir for user stylesheets and loads name.
func NewLoader(name, dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		dir:    dir,
		logger: logger,
		sheet:  LoadStylesheet(name, dir, logger),
	}
}

// CSS returns the active stylesheet content.
func (l *Loader) CSS() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sheet.CSS
}

// Current returns the active stylesheet.
func (l *Loader) Current() *Stylesheet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sheet
}

// Load switches to the named stylesheet.
func (l *Loader) Load(name string) {
	sheet := LoadStylesheet(name, l.dir, l.logger)
	l.mu.Lock()
	l.sheet = sheet
	l.mu.Unlock()
	l.logger.Info("loaded stylesheet", "name", sheet.Name, "bundled", sheet.IsBundled)
}

// Reload re-reads the active stylesheet from disk.
func (l *Loader) Reload() {
	l.Load(l.Current().Name)
}

// List returns bundled and user stylesheet names, without duplicates.
func (l *Loader) List() []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range ListEmbeddedThemes() {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	if l.dir == "" {
		return names
	}
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		l.logger.Debug("failed to read themes directory", "error", err)
		return names
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || filepath.Ext(name) != ".css" {
			continue
		}
		name = strings.TrimSuffix(name, ".css")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
