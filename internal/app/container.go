// Package app provides the dependency injection container for the application.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/runoshun/planr/internal/domain"
	"github.com/runoshun/planr/internal/engine"
	"github.com/runoshun/planr/internal/infra/config"
	"github.com/runoshun/planr/internal/infra/crypto"
	"github.com/runoshun/planr/internal/infra/gitstore"
	"github.com/runoshun/planr/internal/infra/jsonstore"
	"github.com/runoshun/planr/internal/infra/logging"
	"github.com/runoshun/planr/internal/infra/render"
	"github.com/runoshun/planr/internal/usecase"
)

// Config holds the application paths.
type Config struct {
	ProjectRoot string // Directory holding .planr
	DataDir     string // Path to .planr
	StorePath   string // Path to tasks.json
}

// newConfig derives the paths for a project root.
func newConfig(root string) Config {
	dataDir := domain.RepoDataDir(root)
	return Config{
		ProjectRoot: root,
		DataDir:     dataDir,
		StorePath:   domain.TasksStorePath(dataDir),
	}
}

// FindProjectRoot returns the nearest ancestor of dir (inclusive) that
// contains a .planr directory. Failing that, it returns the root of the
// enclosing git work tree, and finally dir itself.
func FindProjectRoot(dir string) string {
	for d := dir; ; {
		if info, err := os.Stat(domain.RepoDataDir(d)); err == nil && info.IsDir() {
			return d
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err == nil {
		if wt, err := repo.Worktree(); err == nil {
			return wt.Filesystem.Root()
		}
	}
	return dir
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
// Fields are ordered to minimize memory padding.
type Container struct {
	// Ports (interfaces bound to implementations)
	Store         domain.Store
	Clock         domain.Clock
	Logger        domain.Logger
	Renderer      domain.GraphRenderer
	ConfigLoader  domain.ConfigLoader
	ConfigManager domain.ConfigManager

	// Pointer fields
	Engine    *engine.Engine
	AppConfig *domain.Config
	fileLog   *logging.Logger

	// Configuration
	Config Config
}

// New creates a new Container for the project that contains dir.
func New(dir string) (*Container, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve directory: %w", err)
	}
	cfg := newConfig(FindProjectRoot(abs))

	configLoader := config.NewLoader(cfg.DataDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var store domain.Store
	switch appConfig.Tasks.Store {
	case domain.StoreGit:
		sealer, err := newSealer(appConfig.Tasks)
		if err != nil {
			return nil, err
		}
		gs, err := gitstore.New(cfg.ProjectRoot, appConfig.Tasks.Namespace, sealer)
		if err != nil {
			return nil, fmt.Errorf("open git store: %w", err)
		}
		store = gs
	default:
		store = jsonstore.New(cfg.StorePath)
	}

	logger := logging.New(cfg.DataDir, logging.ParseLevel(appConfig.Log.Level))
	c := NewWithDeps(cfg, store, domain.RealClock{}, logger)
	c.fileLog = logger
	c.AppConfig = appConfig
	c.ConfigLoader = configLoader
	c.ConfigManager = config.NewManager(cfg.DataDir)
	c.Renderer = render.New(render.Options{Detailed: true, TimeFormat: appConfig.Board.TimeFormat})
	return c, nil
}

// newSealer returns the blob sealer for an encrypted git store, or nil
// when encryption is off.
func newSealer(tc domain.TasksConfig) (*crypto.Sealer, error) {
	if !tc.Encrypt {
		return nil, nil
	}
	key := os.Getenv(domain.StoreKeyEnv)
	if key == "" {
		return nil, domain.ErrStoreKeyMissing
	}
	sealer, err := crypto.NewSealer(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", domain.StoreKeyEnv, err)
	}
	return sealer, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, store domain.Store, clock domain.Clock, logger domain.Logger) *Container {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Container{
		Store:     store,
		Clock:     clock,
		Logger:    logger,
		Engine:    engine.New(store, clock, logger),
		Renderer:  render.New(render.Options{}),
		AppConfig: domain.NewDefaultConfig(),
		Config:    cfg,
	}
}

// EnableConsole mirrors log entries to w. Verbose also shows debug and info.
func (c *Container) EnableConsole(w io.Writer, verbose bool) {
	if c.fileLog != nil {
		c.fileLog.SetConsole(logging.NewConsole(w, verbose))
	}
}

// Close releases open log files.
func (c *Container) Close() error {
	if c.fileLog != nil {
		return c.fileLog.Close()
	}
	return nil
}

// UseCase factory methods

// InitRepoUseCase returns a new InitRepo use case.
func (c *Container) InitRepoUseCase() *usecase.InitRepo {
	return usecase.NewInitRepo(c.Store)
}

// NewTaskUseCase returns a new NewTask use case.
func (c *Container) NewTaskUseCase() *usecase.NewTask {
	return usecase.NewNewTask(c.Store, c.Engine, c.Logger)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Engine)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Store, c.Engine)
}

// EditTaskUseCase returns a new EditTask use case.
func (c *Container) EditTaskUseCase() *usecase.EditTask {
	return usecase.NewEditTask(c.Engine, c.Logger)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Store, c.Engine, c.Logger)
}

// AddDependencyUseCase returns a new AddDependency use case.
func (c *Container) AddDependencyUseCase() *usecase.AddDependency {
	return usecase.NewAddDependency(c.Store, c.Engine)
}

// RemoveDependencyUseCase returns a new RemoveDependency use case.
func (c *Container) RemoveDependencyUseCase() *usecase.RemoveDependency {
	return usecase.NewRemoveDependency(c.Store, c.Engine)
}

// ListDependenciesUseCase returns a new ListDependencies use case.
func (c *Container) ListDependenciesUseCase() *usecase.ListDependencies {
	return usecase.NewListDependencies(c.Engine)
}

// CriticalPathUseCase returns a new CriticalPath use case.
func (c *Container) CriticalPathUseCase() *usecase.CriticalPath {
	return usecase.NewCriticalPath(c.Engine)
}

// RecomputeUseCase returns a new Recompute use case.
func (c *Container) RecomputeUseCase() *usecase.Recompute {
	return usecase.NewRecompute(c.Engine)
}

// ImportTasksUseCase returns a new ImportTasks use case.
func (c *Container) ImportTasksUseCase() *usecase.ImportTasks {
	return usecase.NewImportTasks(c.Engine, c.Logger)
}

// RenderGraphUseCase returns a new RenderGraph use case.
func (c *Container) RenderGraphUseCase() *usecase.RenderGraph {
	return usecase.NewRenderGraph(c.Engine, c.Renderer)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}
