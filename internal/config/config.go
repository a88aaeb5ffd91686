package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Settings is the uniform configuration for the editor core. It should
// unify all past, current, and future config file versions.
type Settings struct {
	Version string

	// Editor fields controlling content normalization on save.
	LineEnding string // preserve, lf, or crlf
	HardBreak  string // preserve, backslash, or two-spaces

	// Auto-save fields.
	AutoSaveEnabled    bool
	AutoSaveIntervalMS int
	AutoSaveDebounceMS int

	// History snapshot fields.
	HistoryEnabled bool
	HistoryDir     string
	KeepManual     int
	KeepAuto       int

	// Drop-lock policy.
	DropLockTimeoutMS int

	// Log related fields.
	LogEnabled bool
	LogPath    string
	LogVerbose bool
}

// Line-ending preference values.
const (
	LineEndingPreserve = "preserve"
	LineEndingLF       = "lf"
	LineEndingCRLF     = "crlf"
)

// Hard-break preference values.
const (
	HardBreakPreserve  = "preserve"
	HardBreakBackslash = "backslash"
	HardBreakTwoSpaces = "two-spaces"
)

// AutoSaveInterval returns the scheduler tick interval.
func (s *Settings) AutoSaveInterval() time.Duration {
	return time.Duration(s.AutoSaveIntervalMS) * time.Millisecond
}

// AutoSaveDebounce returns the minimum gap between successful auto-saves.
func (s *Settings) AutoSaveDebounce() time.Duration {
	return time.Duration(s.AutoSaveDebounceMS) * time.Millisecond
}

// DropLockTimeout returns how long a drop-lock stamp stays live.
func (s *Settings) DropLockTimeout() time.Duration {
	return time.Duration(s.DropLockTimeoutMS) * time.Millisecond
}

// ParseYAML parses a versioned settings file.
func ParseYAML(data []byte) (*Settings, error) {
	version, err := parseVersionFromYAML(data)
	if err != nil {
		return nil, err
	}
	switch version {
	case "v1":
		raw, err := parseYAMLv1(data)
		if err != nil {
			return nil, err
		}

		settings := settingsV1ToSettings(raw)

		if err := validateSettings(settings); err != nil {
			return nil, errors.Wrap(err, "failed to validate v1 settings")
		}

		return settings, nil
	default:
		return nil, errors.Errorf("unknown version: %s", version)
	}
}

type versionOnly struct {
	Version string `yaml:"version"`
}

func parseVersionFromYAML(data []byte) (string, error) {
	var result versionOnly

	if err := yaml.Unmarshal(data, &result); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal version")
	}

	return result.Version, nil
}

type settingsV1 struct {
	Version string `yaml:"version"`

	Editor struct {
		LineEnding string `yaml:"line-ending"`
		HardBreak  string `yaml:"hard-break"`
	} `yaml:"editor"`

	AutoSave struct {
		Enabled    *bool `yaml:"enabled"`
		IntervalMS int   `yaml:"interval-ms"`
		DebounceMS int   `yaml:"debounce-ms"`
	} `yaml:"autosave"`

	History struct {
		Enabled    *bool  `yaml:"enabled"`
		Dir        string `yaml:"dir"`
		KeepManual int    `yaml:"keep-manual"`
		KeepAuto   int    `yaml:"keep-auto"`
	} `yaml:"history"`

	DropLock struct {
		TimeoutMS int `yaml:"timeout-ms"`
	} `yaml:"droplock"`

	Log struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
		Verbose bool   `yaml:"verbose"`
	} `yaml:"log"`
}

func parseYAMLv1(data []byte) (*settingsV1, error) {
	var raw settingsV1
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal yaml")
	}
	return &raw, nil
}

func settingsV1ToSettings(raw *settingsV1) *Settings {
	s := &Settings{
		Version:            raw.Version,
		LineEnding:         raw.Editor.LineEnding,
		HardBreak:          raw.Editor.HardBreak,
		AutoSaveEnabled:    true,
		AutoSaveIntervalMS: raw.AutoSave.IntervalMS,
		AutoSaveDebounceMS: raw.AutoSave.DebounceMS,
		HistoryEnabled:     true,
		HistoryDir:         raw.History.Dir,
		KeepManual:         raw.History.KeepManual,
		KeepAuto:           raw.History.KeepAuto,
		DropLockTimeoutMS:  raw.DropLock.TimeoutMS,
		LogEnabled:         raw.Log.Enabled,
		LogPath:            raw.Log.Path,
		LogVerbose:         raw.Log.Verbose,
	}

	if raw.AutoSave.Enabled != nil {
		s.AutoSaveEnabled = *raw.AutoSave.Enabled
	}
	if raw.History.Enabled != nil {
		s.HistoryEnabled = *raw.History.Enabled
	}

	if s.LineEnding == "" {
		s.LineEnding = LineEndingPreserve
	}
	if s.HardBreak == "" {
		s.HardBreak = HardBreakPreserve
	}
	if s.AutoSaveIntervalMS == 0 {
		s.AutoSaveIntervalMS = 2000
	}
	if s.AutoSaveDebounceMS == 0 {
		s.AutoSaveDebounceMS = 5000
	}
	if s.KeepManual == 0 {
		s.KeepManual = 50
	}
	if s.KeepAuto == 0 {
		s.KeepAuto = 20
	}
	if s.DropLockTimeoutMS == 0 {
		s.DropLockTimeoutMS = 500
	}

	return s
}

func validateSettings(s *Settings) error {
	switch s.LineEnding {
	case LineEndingPreserve, LineEndingLF, LineEndingCRLF:
	default:
		return errors.Errorf("invalid line-ending: %q", s.LineEnding)
	}

	switch s.HardBreak {
	case HardBreakPreserve, HardBreakBackslash, HardBreakTwoSpaces:
	default:
		return errors.Errorf("invalid hard-break: %q", s.HardBreak)
	}

	if s.AutoSaveIntervalMS < 0 || s.AutoSaveDebounceMS < 0 {
		return errors.New("autosave timings must not be negative")
	}
	if s.DropLockTimeoutMS < 0 {
		return errors.New("droplock timeout must not be negative")
	}
	if s.KeepManual < 0 || s.KeepAuto < 0 {
		return errors.New("history retention must not be negative")
	}

	return nil
}

// StateDir returns the directory for process-wide state such as the
// recent-files list and the cross-window drop lock. VMARK_STATE_DIR
// overrides the platform default.
func StateDir() (string, error) {
	if dir := os.Getenv("VMARK_STATE_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve user config dir")
	}
	return filepath.Join(base, "vmark"), nil
}
