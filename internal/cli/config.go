package cli

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/bldr/pkg/errors"
	"github.com/matzehuels/bldr/pkg/integrations/maven"
)

// envPrefix namespaces settings read from the environment (BLDR_REPO_URL, ...).
const envPrefix = "BLDR"

// Setting keys. Each can come from a flag, a BLDR_* variable, or bldr.yaml.
const (
	keyRoot          = "root"
	keyRepoURL       = "repo_url"
	keySearchURL     = "search_url"
	keyWorkers       = "workers"
	keyCacheTTL      = "cache_ttl"
	keyNoCache       = "no_cache"
	keyRedisAddr     = "redis_addr"
	keyRedisPassword = "redis_password"
	keyRedisDB       = "redis_db"
	keyJavac         = "javac"
	keyCMake         = "cmake"
	keyReproducible  = "reproducible"
	keyLogLevel      = "log_level"
)

func newSettings() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyRoot, ".")
	v.SetDefault(keyRepoURL, maven.DefaultRepoURL)
	v.SetDefault(keySearchURL, maven.DefaultSearchURL)
	v.SetDefault(keyWorkers, 0)
	v.SetDefault(keyCacheTTL, maven.DefaultCacheTTL)
	v.SetDefault(keyNoCache, false)
	v.SetDefault(keyRedisAddr, "")
	v.SetDefault(keyRedisPassword, "")
	v.SetDefault(keyRedisDB, 0)
	v.SetDefault(keyJavac, "")
	v.SetDefault(keyCMake, "cmake")
	v.SetDefault(keyReproducible, false)
	v.SetDefault(keyLogLevel, "info")
	return v
}

// loadSettings reads .env, the environment and the settings file. A missing
// default settings file is not an error; a missing explicit one is.
func (c *CLI) loadSettings() error {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "load .env")
	}

	v := c.settings
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if c.configFile != "" {
		v.SetConfigFile(c.configFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "read settings %s", c.configFile)
		}
		return nil
	}

	v.SetConfigName(appName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/" + appName)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "read settings")
		}
	}
	return nil
}

// configCommand prints the effective settings.
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f := c.settings.ConfigFileUsed(); f != "" {
				printKeyValue("file", f)
			} else {
				printKeyValue("file", StyleDim.Render("none"))
			}
			keys := c.settings.AllKeys()
			slices.Sort(keys)
			for _, k := range keys {
				if k == keyRedisPassword && c.settings.GetString(k) != "" {
					printKeyValue(k, "********")
					continue
				}
				printKeyValue(k, fmt.Sprint(c.settings.Get(k)))
			}
			return nil
		},
	}
}
