package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// StorefrontConfig carries runtime tunables that can change without a restart.
type StorefrontConfig struct {
	Logs       LogsConfig       `mapstructure:"logs"`
	Sizes      SizesConfig      `mapstructure:"sizes"`
	Media      MediaConfig      `mapstructure:"media"`
	RateLimits RateLimitsConfig `mapstructure:"ratelimits"`
}

type LogsConfig struct {
	PageSize    int `mapstructure:"pagesize"`
	MaxPageSize int `mapstructure:"maxpagesize"`
}

type SizesConfig struct {
	MaxLabelLength int `mapstructure:"maxlabellength"`
}

type MediaConfig struct {
	MaxUploadBytes      int64    `mapstructure:"maxuploadbytes"`
	AllowedContentTypes []string `mapstructure:"allowedcontenttypes"`
	PathPrefix          string   `mapstructure:"pathprefix"`
}

type RateLimitsConfig struct {
	Newsletter RateLimitRule `mapstructure:"newsletter"`
	Media      RateLimitRule `mapstructure:"media"`
}

type RateLimitRule struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

func DefaultStorefrontConfig() StorefrontConfig {
	return StorefrontConfig{
		Logs: LogsConfig{
			PageSize:    50,
			MaxPageSize: 250,
		},
		Sizes: SizesConfig{
			MaxLabelLength: 10,
		},
		Media: MediaConfig{
			MaxUploadBytes:      10 << 20,
			AllowedContentTypes: []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/svg+xml"},
			PathPrefix:          "products",
		},
		RateLimits: RateLimitsConfig{
			Newsletter: RateLimitRule{Rate: 0.2, Burst: 3},
			Media:      RateLimitRule{Rate: 2, Burst: 10},
		},
	}
}

type StorefrontConfigHolder struct {
	current atomic.Value // holds StorefrontConfig
}

// NewStaticStorefrontConfigHolder returns a holder pinned to cfg, without file watching.
func NewStaticStorefrontConfigHolder(cfg StorefrontConfig) *StorefrontConfigHolder {
	holder := &StorefrontConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewStorefrontConfigHolder() (*StorefrontConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("storefront")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/pistache")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PISTACHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setStorefrontDefaults(v, DefaultStorefrontConfig())

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	cfg, err := decodeStorefront(v)
	if err != nil {
		return nil, err
	}
	if err := validateStorefrontConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticStorefrontConfigHolder(cfg)

	if fileLoaded {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeStorefront(v)
			if err != nil {
				log.Printf("[storefront-config] reload failed: %v", err)
				return
			}
			if err := validateStorefrontConfig(updated); err != nil {
				log.Printf("[storefront-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[storefront-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

// Get returns the active configuration; a zero holder yields the defaults.
func (h *StorefrontConfigHolder) Get() StorefrontConfig {
	if h == nil {
		return DefaultStorefrontConfig()
	}
	cfg, ok := h.current.Load().(StorefrontConfig)
	if !ok {
		return DefaultStorefrontConfig()
	}
	return cfg
}

// decodeStorefront goes through AllSettings so defaults fill keys the file omits.
func decodeStorefront(v *viper.Viper) (StorefrontConfig, error) {
	var wrapper struct {
		Storefront StorefrontConfig `mapstructure:"storefront"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return StorefrontConfig{}, err
	}
	return wrapper.Storefront, nil
}

func setStorefrontDefaults(v *viper.Viper, defaults StorefrontConfig) {
	v.SetDefault("storefront.logs.pageSize", defaults.Logs.PageSize)
	v.SetDefault("storefront.logs.maxPageSize", defaults.Logs.MaxPageSize)
	v.SetDefault("storefront.sizes.maxLabelLength", defaults.Sizes.MaxLabelLength)
	v.SetDefault("storefront.media.maxUploadBytes", defaults.Media.MaxUploadBytes)
	v.SetDefault("storefront.media.allowedContentTypes", defaults.Media.AllowedContentTypes)
	v.SetDefault("storefront.media.pathPrefix", defaults.Media.PathPrefix)
	v.SetDefault("storefront.rateLimits.newsletter.rate", defaults.RateLimits.Newsletter.Rate)
	v.SetDefault("storefront.rateLimits.newsletter.burst", defaults.RateLimits.Newsletter.Burst)
	v.SetDefault("storefront.rateLimits.media.rate", defaults.RateLimits.Media.Rate)
	v.SetDefault("storefront.rateLimits.media.burst", defaults.RateLimits.Media.Burst)
}

func validateStorefrontConfig(cfg StorefrontConfig) error {
	if cfg.Logs.PageSize <= 0 {
		return errors.New("storefront.logs.pageSize must be positive")
	}
	if cfg.Logs.MaxPageSize < cfg.Logs.PageSize {
		return errors.New("storefront.logs.maxPageSize must be >= pageSize")
	}
	if cfg.Sizes.MaxLabelLength <= 0 {
		return errors.New("storefront.sizes.maxLabelLength must be positive")
	}
	if cfg.Media.MaxUploadBytes <= 0 {
		return errors.New("storefront.media.maxUploadBytes must be positive")
	}
	return nil
}
