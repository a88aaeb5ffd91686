// Package workspace reads and writes per-folder configuration in the
// VS Code workspace file format. Settings live under a vendor
// namespace ("vmark.*") inside .vmark/vmark.code-workspace so other
// editors can open the same file without choking on it. Earlier
// releases stored a bare JSON file named .vmark at the folder root;
// Read migrates that layout in place.
package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	// DirName is the per-folder configuration directory.
	DirName = ".vmark"
	// FileName is the workspace file inside DirName.
	FileName = "vmark.code-workspace"

	backupName = ".vmark.backup"
)

// Config is the public workspace configuration.
type Config struct {
	Version         int      `json:"version"`
	ExcludeFolders  []string `json:"excludeFolders"`
	ShowHiddenFiles bool     `json:"showHiddenFiles"`
	LastOpenTabs    []string `json:"lastOpenTabs"`
}

// DefaultConfig returns the configuration written for a folder that
// never had one.
func DefaultConfig() Config {
	return Config{
		Version:        1,
		ExcludeFolders: []string{".git", "node_modules", DirName},
	}
}

// File is the on-disk workspace document. Folders and the settings
// envelope follow the VS Code schema; our keys are namespaced inside
// settings.
type File struct {
	Folders  []Folder     `json:"folders"`
	Settings FileSettings `json:"settings"`
}

// Folder is a workspace folder entry. The editor roots a workspace at
// one folder, stored as ".".
type Folder struct {
	Path string `json:"path"`
}

// FileSettings is the settings block of the workspace file.
type FileSettings struct {
	ExcludeFolders  []string `json:"vmark.excludeFolders"`
	ShowHiddenFiles bool     `json:"vmark.showHiddenFiles"`
	LastOpenTabs    []string `json:"vmark.lastOpenTabs"`
}

func (c Config) file() File {
	return File{
		Folders: []Folder{{Path: "."}},
		Settings: FileSettings{
			ExcludeFolders:  c.ExcludeFolders,
			ShowHiddenFiles: c.ShowHiddenFiles,
			LastOpenTabs:    c.LastOpenTabs,
		},
	}
}

func (f File) config() Config {
	return Config{
		Version:         1,
		ExcludeFolders:  f.Settings.ExcludeFolders,
		ShowHiddenFiles: f.Settings.ShowHiddenFiles,
		LastOpenTabs:    f.Settings.LastOpenTabs,
	}
}

// legacyConfig is the root-level .vmark file shape, kept only so it
// can be migrated.
type legacyConfig struct {
	Version        int      `json:"version"`
	ExcludeFolders []string `json:"excludeFolders"`
	LastOpenTabs   []string `json:"lastOpenTabs"`
}

func (l legacyConfig) config() Config {
	return Config{
		Version:        l.Version,
		ExcludeFolders: l.ExcludeFolders,
		LastOpenTabs:   l.LastOpenTabs,
	}
}

// Store reads and writes workspace files under any folder root.
type Store struct {
	fsys   afero.Fs
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a workspace store on the given filesystem.
func NewStore(fsys afero.Fs, opts ...Option) *Store {
	s := &Store{fsys: fsys, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) filePath(root string) string {
	return filepath.Join(root, DirName, FileName)
}

func (s *Store) legacyPath(root string) string {
	return filepath.Join(root, DirName)
}

func (s *Store) exists(path string) bool {
	_, err := s.fsys.Stat(path)
	return err == nil
}

// isLegacy reports whether .vmark under root is the old single-file
// layout rather than the configuration directory.
func (s *Store) isLegacy(root string) bool {
	info, err := s.fsys.Stat(s.legacyPath(root))
	return err == nil && !info.IsDir()
}

// Has reports whether root carries workspace configuration in either
// layout.
func (s *Store) Has(root string) bool {
	return s.exists(s.filePath(root)) || s.isLegacy(root)
}

// Read loads the workspace configuration for root, migrating a legacy
// file first when one is present. The second return is false when the
// folder has no configuration at all.
func (s *Store) Read(root string) (Config, bool, error) {
	if migrated, err := s.migrateLegacy(root); err != nil {
		s.logger.Warn("legacy workspace migration failed",
			zap.String("root", root), zap.Error(err))
	} else if migrated {
		s.logger.Info("migrated legacy workspace file", zap.String("root", root))
	}

	path := s.filePath(root)
	if !s.exists(path) {
		// Migration can fail and leave the legacy file behind; still
		// honor it rather than pretending the folder is unconfigured.
		legacy, ok, err := s.readLegacy(root)
		if err != nil {
			return Config{}, false, err
		}
		if ok {
			return legacy.config(), true, nil
		}
		return Config{}, false, nil
	}

	data, err := afero.ReadFile(s.fsys, path)
	if err != nil {
		return Config{}, false, errors.Wrapf(err, "read workspace file %s", path)
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return Config{}, false, errors.Wrapf(err, "parse workspace file %s", path)
	}
	return file.config(), true, nil
}

// Write stores the configuration under root, creating the .vmark
// directory when needed.
func (s *Store) Write(root string, cfg Config) error {
	dir := filepath.Join(root, DirName)
	if err := s.fsys.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create workspace directory %s", dir)
	}

	data, err := json.MarshalIndent(cfg.file(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode workspace file")
	}
	path := s.filePath(root)
	if err := afero.WriteFile(s.fsys, path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write workspace file %s", path)
	}
	return nil
}

// RememberTabs records the open-tab paths for session restore,
// creating a default configuration for folders that have none.
func (s *Store) RememberTabs(root string, tabs []string) error {
	cfg, ok, err := s.Read(root)
	if err != nil {
		return err
	}
	if !ok {
		cfg = DefaultConfig()
	}
	cfg.LastOpenTabs = tabs
	return s.Write(root, cfg)
}

// migrateLegacy rewrites a root-level .vmark file into the directory
// layout. The legacy file is parked as .vmark.backup while the
// directory takes its name, then removed once the new file is written.
func (s *Store) migrateLegacy(root string) (bool, error) {
	if !s.isLegacy(root) {
		return false, nil
	}
	legacy, ok, err := s.readLegacy(root)
	if err != nil || !ok {
		return false, err
	}

	backup := filepath.Join(root, backupName)
	if err := s.fsys.Rename(s.legacyPath(root), backup); err != nil {
		return false, errors.Wrap(err, "back up legacy workspace file")
	}
	if err := s.Write(root, legacy.config()); err != nil {
		return false, err
	}
	if err := s.fsys.Remove(backup); err != nil {
		s.logger.Warn("could not remove migration backup",
			zap.String("path", backup), zap.Error(err))
	}
	return true, nil
}

func (s *Store) readLegacy(root string) (legacyConfig, bool, error) {
	if !s.isLegacy(root) {
		return legacyConfig{}, false, nil
	}
	path := s.legacyPath(root)
	data, err := afero.ReadFile(s.fsys, path)
	if err != nil {
		return legacyConfig{}, false, errors.Wrapf(err, "read legacy workspace file %s", path)
	}
	var legacy legacyConfig
	if err := json.Unmarshal(data, &legacy); err != nil {
		return legacyConfig{}, false, errors.Wrapf(err, "parse legacy workspace file %s", path)
	}
	return legacy, true, nil
}

// Walk lists the markdown files under root as sorted slash-separated
// paths relative to root. Directories matching an exclude pattern are
// pruned whole; hidden entries are skipped unless the configuration
// shows them.
func (s *Store) Walk(root string, cfg Config) ([]string, error) {
	excludes := s.compileExcludes(cfg.ExcludeFolders)

	var files []string
	err := afero.Walk(s.fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		name := info.Name()
		hidden := strings.HasPrefix(name, ".") && !cfg.ShowHiddenFiles
		if info.IsDir() {
			if hidden || matchAny(excludes, name) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !isMarkdown(name) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk workspace %s", root)
	}
	sort.Strings(files)
	return files, nil
}

// compileExcludes turns patterns into matchers, dropping ones that do
// not compile. Workspace files are hand-edited; one bad pattern must
// not blank the whole file tree.
func (s *Store) compileExcludes(patterns []string) []glob.Glob {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			s.logger.Warn("skipping unparsable exclude pattern",
				zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		globs = append(globs, g)
	}
	return globs
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
