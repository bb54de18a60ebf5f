package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/bldr/pkg/buildinfo"
	"github.com/matzehuels/bldr/pkg/cache"
	"github.com/matzehuels/bldr/pkg/integrations/maven"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "bldr"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	settings   *viper.Viper
	configFile string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:   newLogger(w, level),
		settings: newSettings(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "bldr builds multi-module Java projects",
		Long:         `bldr resolves Maven dependencies, compiles and archives the modules of a project, and drives its native cmake and header-extraction steps.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadSettings(); err != nil {
				return err
			}
			if lvl, err := log.ParseLevel(c.settings.GetString(keyLogLevel)); err == nil && lvl < c.Logger.GetLevel() {
				c.SetLogLevel(lvl)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "settings file (default bldr.yaml in . or $HOME/.config/bldr)")
	root.PersistentFlags().String("root", ".", "project root directory")
	root.PersistentFlags().Bool("no-cache", false, "disable the search response cache")
	_ = c.settings.BindPFlag(keyRoot, root.PersistentFlags().Lookup("root"))
	_ = c.settings.BindPFlag(keyNoCache, root.PersistentFlags().Lookup("no-cache"))

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.existsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Client Factories
// =============================================================================

// newMavenClient creates a repository client backed by the response cache.
// The caller closes the returned cache.
func (c *CLI) newMavenClient(ctx context.Context) (*maven.Client, cache.Cache, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	client, err := maven.NewClient(
		maven.WithRepoURL(c.settings.GetString(keyRepoURL)),
		maven.WithSearchURL(c.settings.GetString(keySearchURL)),
		maven.WithCache(store, c.settings.GetDuration(keyCacheTTL)),
	)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return client, store, nil
}

// newCache picks the response cache: none with no_cache, Redis when
// redis_addr is set, else files under the user cache directory.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.settings.GetBool(keyNoCache) {
		return cache.NewNullCache(), nil
	}
	if addr := c.settings.GetString(keyRedisAddr); addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     addr,
			Password: c.settings.GetString(keyRedisPassword),
			DB:       c.settings.GetInt(keyRedisDB),
		})
		if err != nil {
			c.Logger.Warn("redis unavailable, using file cache", "addr", addr, "err", err)
		} else {
			return rc, nil
		}
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/bldr/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
