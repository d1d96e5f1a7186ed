package config

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/mucharafal/py4j/liberr"
	"github.com/mucharafal/py4j/logger"
)

// DefaultFileName is the configuration file viper looks for, sans extension.
const DefaultFileName = "py4jgateway"

// defaultDir resolves to ~/.py4jgateway, used when the caller doesn't
// specify an explicit config directory.
func defaultDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", liberr.Wrap(liberr.UnknownError, err)
	}
	return filepath.Join(home, ".py4jgateway"), nil
}

// Source owns a viper instance bound to a config file, env layer, and an
// fsnotify watch that reloads the whole Config when the file changes.
type Source struct {
	v   *viper.Viper
	cur atomic.Value // Config

	mu        sync.Mutex
	onReload  []func(Config)
	log       logger.Logger
}

// Load reads configuration from dir (or the default ~/.py4jgateway when
// empty), applying environment overrides prefixed PY4J_, and validates the
// result.
func Load(dir string, log logger.Logger) (*Source, error) {
	if log == nil {
		log = logger.Discard()
	}
	if dir == "" {
		d, err := defaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	v := viper.New()
	v.SetConfigName(DefaultFileName)
	v.AddConfigPath(dir)
	v.SetEnvPrefix("PY4J")
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("listen.address", def.Listen.Address)
	v.SetDefault("listen.port", def.Listen.Port)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("pool.max_size", def.Pool.MaxSize)
	v.SetDefault("pool.idle_timeout_secs", def.Pool.IdleTimeoutSecs)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, liberr.Wrap(liberr.ProtocolError, err)
		}
		log.Warn("no gateway config file found, using defaults and environment")
	}

	s := &Source{v: v, log: log}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Source) reload() error {
	var c Config
	hook := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			viewImportDecodeHook,
		)
	})
	if err := s.v.Unmarshal(&c, hook); err != nil {
		return liberr.Wrap(liberr.ProtocolError, err)
	}
	if verr := c.Validate(); verr != nil {
		return verr
	}
	s.cur.Store(c)

	s.mu.Lock()
	hooks := append([]func(Config){}, s.onReload...)
	s.mu.Unlock()
	for _, h := range hooks {
		h(c)
	}
	return nil
}

// Current returns the most recently loaded, validated Config.
func (s *Source) Current() Config {
	return s.cur.Load().(Config)
}

// OnReload registers fn to run every time the watched file changes and
// reloads successfully. Registration order is call order.
func (s *Source) OnReload(fn func(Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Watch starts an fsnotify watch on the config file; changes trigger a
// reload (invalid reloads are logged and the previous Config is kept).
func (s *Source) Watch() error {
	s.v.OnConfigChange(func(fsnotify.Event) {
		if err := s.reload(); err != nil {
			s.log.Error("gateway config reload failed, keeping previous configuration", err)
		} else {
			s.log.Info("gateway configuration reloaded")
		}
	})
	s.v.WatchConfig()
	return nil
}
