// Package autoconfig assembles the editor core from configuration.
// Collaborators are requested by type:
//
//	autoconfig.NewBuilder().Invoke(func(p *save.Pipeline) error {
//	    ...
//	})
//
// Treat it as a dependency injection mechanism. Configuration is read
// through [viper.Viper], which does not support per-folder hierarchy;
// folder-level settings live in the workspace store instead.
package autoconfig

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/vmarkdev/vmark/internal/command"
	"github.com/vmarkdev/vmark/internal/config"
	"github.com/vmarkdev/vmark/internal/document"
	"github.com/vmarkdev/vmark/internal/editor"
	"github.com/vmarkdev/vmark/internal/editor/caretsync"
	"github.com/vmarkdev/vmark/internal/guard"
	"github.com/vmarkdev/vmark/internal/history"
	"github.com/vmarkdev/vmark/internal/menu"
	"github.com/vmarkdev/vmark/internal/recent"
	"github.com/vmarkdev/vmark/internal/save"
	"github.com/vmarkdev/vmark/internal/session"
	"github.com/vmarkdev/vmark/internal/watcher"
	"github.com/vmarkdev/vmark/internal/workspace"
)

// StateDir is the directory for process-wide state files.
type StateDir string

// Builder wires the object graph. Tests replace providers with
// Decorate, most commonly the [afero.Fs] and the [viper.Viper].
type Builder struct {
	container *dig.Container
}

// NewBuilder returns a builder with every provider registered.
func NewBuilder() *Builder {
	b := &Builder{container: dig.New()}
	providers := []interface{}{
		getViper,
		getSettings,
		getLogger,
		getFs,
		getStateDir,
		getDocumentStore,
		getSessionManager,
		getGuard,
		getDropLock,
		getBus,
		getRegistry,
		getTranslator,
		getHistory,
		getRecents,
		getWorkspaceStore,
		getPipeline,
		getAutoSaver,
		getRouter,
		getRestorer,
		getBinder,
	}
	for _, provider := range providers {
		mustProvide(b.container.Provide(provider))
	}
	return b
}

// Decorate overrides providers, typically in tests.
func (b *Builder) Decorate(decorators ...interface{}) error {
	for _, decorator := range decorators {
		if err := b.container.Decorate(decorator); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// Invoke calls function with its dependencies resolved.
func (b *Builder) Invoke(function interface{}, opts ...dig.InvokeOption) error {
	err := b.container.Invoke(function, opts...)
	return dig.RootCause(err)
}

func mustProvide(err error) {
	if err != nil {
		panic("failed to provide: " + err.Error())
	}
}

func getViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("vmark")
	v.SetConfigType("yaml")

	if dir, err := config.StateDir(); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath("$HOME/.vmark/")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VMARK")
	v.AutomaticEnv()

	return v
}

func getSettings(v *viper.Viper) (*config.Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return config.Default(), nil
		}
		return nil, errors.WithStack(err)
	}

	// As viper does not offer writing config to a writer,
	// the workaround is to create an in-memory file system,
	// set it in viper, and write the config to it.
	// Finally, a deferred cleanup function is called
	// which brings back the OS file system.
	// Source: https://github.com/spf13/viper/issues/856
	memFS := afero.NewMemMapFs()

	v.SetFs(memFS)
	defer v.SetFs(afero.NewOsFs())

	if err := v.WriteConfigAs("/config.yaml"); err != nil {
		return nil, errors.WithStack(err)
	}

	content, err := afero.ReadFile(memFS, "/config.yaml")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return config.ParseYAML(content)
}

func getLogger(s *config.Settings) (*zap.Logger, error) {
	if s == nil || !s.LogEnabled {
		return zap.NewNop(), nil
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zap.InfoLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	if s.LogVerbose {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		zapConfig.Development = true
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	if s.LogPath != "" {
		zapConfig.OutputPaths = []string{s.LogPath}
		zapConfig.ErrorOutputPaths = []string{s.LogPath}
	}

	l, err := zapConfig.Build()
	return l, errors.WithStack(err)
}

func getFs() afero.Fs { return afero.NewOsFs() }

func getStateDir() (StateDir, error) {
	dir, err := config.StateDir()
	if err != nil {
		return "", err
	}
	return StateDir(dir), nil
}

func getDocumentStore() *document.Store { return document.NewStore() }

func getSessionManager() *session.Manager { return session.NewManager() }

func getGuard() *guard.Guard { return guard.New() }

func getDropLock(s *config.Settings, dir StateDir) *guard.DropLock {
	store := guard.NewFileTokenStore(filepath.Join(string(dir), "droplock"))
	return guard.NewDropLock(store, s.DropLockTimeout())
}

func getBus() *menu.Bus { return menu.NewBus() }

func getRegistry() *editor.Registry { return editor.NewRegistry() }

func getTranslator(store *document.Store, logger *zap.Logger) *caretsync.Translator {
	return caretsync.NewTranslator(store, caretsync.WithLogger(logger))
}

func getHistory(fsys afero.Fs, s *config.Settings, dir StateDir, logger *zap.Logger) *history.Store {
	histDir := s.HistoryDir
	if histDir == "" {
		histDir = filepath.Join(string(dir), "history")
	}
	return history.NewStore(fsys, histDir,
		history.WithLogger(logger),
		history.WithRetention(history.TriggerManual, s.KeepManual),
		history.WithRetention(history.TriggerAuto, s.KeepAuto),
	)
}

func getRecents(fsys afero.Fs, dir StateDir, logger *zap.Logger) *recent.Store {
	return recent.NewStore(fsys, filepath.Join(string(dir), "recent.json"),
		recent.WithLogger(logger))
}

func getWorkspaceStore(fsys afero.Fs, logger *zap.Logger) *workspace.Store {
	return workspace.NewStore(fsys, workspace.WithLogger(logger))
}

func getPipeline(
	fsys afero.Fs,
	store *document.Store,
	sessions *session.Manager,
	s *config.Settings,
	hist *history.Store,
	recents *recent.Store,
	logger *zap.Logger,
) *save.Pipeline {
	opts := []save.PipelineOption{
		save.WithLogger(logger),
		save.WithRecents(recents),
		save.WithLineEndingPreference(s.LineEnding),
		save.WithHardBreakPreference(s.HardBreak),
	}
	if s.HistoryEnabled {
		opts = append(opts, save.WithSnapshots(hist))
	}
	return save.NewPipeline(fsys, store, sessions, opts...)
}

// getAutoSaver returns nil when auto-save is disabled; callers must
// treat a nil saver as "no scheduler".
func getAutoSaver(
	pipeline *save.Pipeline,
	store *document.Store,
	sessions *session.Manager,
	g *guard.Guard,
	s *config.Settings,
	logger *zap.Logger,
) *save.AutoSaver {
	if !s.AutoSaveEnabled {
		return nil
	}
	return save.NewAutoSaver(pipeline, store, sessions, g,
		save.WithInterval(s.AutoSaveInterval()),
		save.WithDebounce(s.AutoSaveDebounce()),
		save.WithAutoSaveLogger(logger),
	)
}

func getRouter(fsys afero.Fs, store *document.Store, logger *zap.Logger) *watcher.Router {
	return watcher.NewRouter(fsys, store, watcher.WithRouterLogger(logger))
}

// getRestorer builds the session restorer. The stale-entry prompt is a
// shell dialog, attached later through [session.Restorer.SetStalePrompter].
func getRestorer(
	fsys afero.Fs,
	store *document.Store,
	sessions *session.Manager,
	recents *recent.Store,
	logger *zap.Logger,
) *session.Restorer {
	return session.NewRestorer(fsys, store, sessions,
		session.WithRecents(recents),
		session.WithRestorerLogger(logger),
	)
}

// getBinder returns the factory the shell calls once per window to
// attach menu handling. The active document resolves through the tab
// strip at dispatch time, so the set never holds a stale document.
func getBinder(
	bus *menu.Bus,
	registry *editor.Registry,
	g *guard.Guard,
	store *document.Store,
	sessions *session.Manager,
	pipeline *save.Pipeline,
	translator *caretsync.Translator,
	logger *zap.Logger,
) command.Binder {
	return func(w command.Window, hooks command.Hooks) *command.Set {
		deps := command.Deps{
			Window:        w.Label,
			Bus:           bus,
			Registry:      registry,
			Guard:         g,
			ActiveSurface: w.ActiveSurface,
			ActiveDocument: func() (document.Document, bool) {
				tab, ok := sessions.ActiveTab(w.Label)
				if !ok {
					return document.Document{}, false
				}
				return store.Get(tab.DocumentID)
			},
			Excluded: w.Excluded,
			Logger:   logger,
		}
		return command.NewSet(deps, pipeline, sessions, translator, hooks)
	}
}
