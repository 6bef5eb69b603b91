package configuration

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/willibrandon/proclog"
	"github.com/willibrandon/proclog/core"
)

// ConfigName is the base name searched by LoadForEnvironment.
const ConfigName = "proclog"

// NewLoggerFromFile loads a configuration file, builds its sinks and
// returns a logger for ctx together with the setup, so the caller can
// create more loggers sharing the registry and close it on shutdown.
func NewLoggerFromFile(path string, ctx core.Context) (*proclog.Logger, *Setup, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, nil, err
	}

	setup, err := NewBuilder().Build(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "build configuration")
	}
	return setup.NewLogger(ctx), setup, nil
}

// LoadForEnvironment reads proclog.{json,yaml,toml} from dir and overlays
// proclog.<environment>.{json,yaml,toml} when it exists. Missing files
// are not an error; the defaults apply.
func LoadForEnvironment(fs afero.Fs, dir, environment string) (*Config, error) {
	v := NewViper()
	v.SetFs(fs)
	v.AddConfigPath(dir)

	v.SetConfigName(ConfigName)
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, errors.Wrap(err, "read base config")
	}

	if environment != "" {
		v.SetConfigName(ConfigName + "." + environment)
		if err := v.MergeInConfig(); err != nil && !isNotFound(err) {
			return nil, errors.Wrapf(err, "read %s config", environment)
		}
	}

	return FromViper(v)
}

func isNotFound(err error) bool {
	var e viper.ConfigFileNotFoundError
	return errors.As(err, &e)
}
