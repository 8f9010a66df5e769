package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// CLI is the configuration of the mentora command.
type CLI struct {
	ArtifactsDir string     `mapstructure:"artifacts_dir"`
	History      HistoryCfg `mapstructure:"history"`
	Log          LogConfig  `mapstructure:"log"`
}

type HistoryCfg struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadCLI reads mentora.yaml from the given directories (optional) and
// MENTORA_* environment overrides, e.g. MENTORA_HISTORY_PATH.
func LoadCLI(dirs ...string) (*CLI, error) {
	v := viper.New()

	v.SetConfigName("mentora")
	v.SetConfigType("yaml")
	for _, d := range dirs {
		v.AddConfigPath(d)
	}

	v.SetEnvPrefix("MENTORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("artifacts_dir", "artifacts")
	v.SetDefault("history.path", "mentora_history.db")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg CLI
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// DefaultCLIDirs are the config search paths: the working directory, then
// $HOME/.mentora when a home directory is known.
func DefaultCLIDirs(home string) []string {
	dirs := []string{"."}
	if home != "" {
		dirs = append(dirs, filepath.Join(home, ".mentora"))
	}
	return dirs
}

// InitLogger installs the global zap logger for the CLI.
func InitLogger(cfg LogConfig) error {
	logger, err := NewLogger(cfg.Level, cfg.Format)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}
