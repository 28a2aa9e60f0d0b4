package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type StatsRateConfig struct {
	Limit    int           `mapstructure:"limit"`
	Interval time.Duration `mapstructure:"interval"`
}

type ReaperConfig struct {
	IdleAfter time.Duration `mapstructure:"idle_after"`
	Interval  time.Duration `mapstructure:"interval"`
}

type AIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Config struct {
	Mode       string          `mapstructure:"mode"`
	Port       int             `mapstructure:"port"`
	StaticPath string          `mapstructure:"static_path"`
	ReadLimit  int64           `mapstructure:"read_limit"`
	PingPeriod time.Duration   `mapstructure:"ping_period"`
	SendBuffer int             `mapstructure:"send_buffer"`
	Secret     string          `mapstructure:"secret"`
	LogLevel   string          `mapstructure:"log_level"`
	ICEServers []ICEServer     `mapstructure:"ice_servers"`
	StatsRate  StatsRateConfig `mapstructure:"stats_rate"`
	Reaper     ReaperConfig    `mapstructure:"reaper"`
	AI         AIConfig        `mapstructure:"ai"`
}

// WebRTCICEServers converts the configured servers for browser peers.
func (c *Config) WebRTCICEServers() []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(c.ICEServers))
	for _, s := range c.ICEServers {
		if len(s.URLs) == 0 {
			continue
		}
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
			srv.CredentialType = webrtc.ICECredentialTypePassword
		}
		out = append(out, srv)
	}
	return out
}

// ZerologLevel falls back to info for unknown names.
func (c *Config) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 5000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "change-me")
	v.SetDefault("log_level", "info")
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
	v.SetDefault("stats_rate.limit", 0)
	v.SetDefault("stats_rate.interval", "1s")
	v.SetDefault("reaper.idle_after", "0s")
	v.SetDefault("reaper.interval", "1m")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.timeout", "30s")
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default). A missing
// file is not an error; defaults and HUDDLE_* environment variables apply.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.SetEnvPrefix("HUDDLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}
