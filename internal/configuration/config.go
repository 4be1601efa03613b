package configuration

import (
	"time"

	"dealtracker/internal/logger"

	"github.com/BurntSushi/toml"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"
)

type Config struct {
	ServerAddress string
	DatabaseURI   string
	RedisAddress  string
	FCMKey        string
	AuthSecretKey jwk.Key
	SteamCountry  string
	SteamLocale   string
	CheckInterval time.Duration
	WarmupDelay   time.Duration
	FetchTimeout  time.Duration
	LogLevel      logger.Level
	LogToFile     bool
}

type tomlConfig struct {
	ServerAddress string `toml:"server_address"`
	DatabaseURI   string `toml:"database_uri"`
	RedisAddress  string `toml:"redis_address"`
	FCMKey        string `toml:"fcm_key"`
	AuthSecretKey string `toml:"auth_secret_key"`
	SteamCountry  string `toml:"steam_country"`
	SteamLocale   string `toml:"steam_locale"`
	CheckInterval string `toml:"check_interval"`
	WarmupDelay   string `toml:"warmup_delay"`
	FetchTimeout  string `toml:"fetch_timeout"`
	LogLevel      string `toml:"log_level"`
	LogToFile     bool   `toml:"log_to_file"`
}

func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}

	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8888"
	}
	if tc.DatabaseURI == "" {
		tc.DatabaseURI = "mongodb://localhost:27017"
	}
	if tc.RedisAddress == "" {
		tc.RedisAddress = "localhost:6379"
	}
	if tc.SteamCountry == "" {
		tc.SteamCountry = "US"
	}
	if tc.SteamLocale == "" {
		tc.SteamLocale = "en"
	}

	if tc.CheckInterval == "" {
		return nil, errors.New("check_interval is not set")
	}
	checkInterval, err := time.ParseDuration(tc.CheckInterval)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse check_interval: %s", tc.CheckInterval)
	}
	if checkInterval < 1*time.Minute {
		return nil, errors.Errorf("check_interval too short (%v), minimum interval: 1m", checkInterval)
	}

	warmupDelay := 30 * time.Second
	if tc.WarmupDelay != "" {
		warmupDelay, err = time.ParseDuration(tc.WarmupDelay)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse warmup_delay: %s", tc.WarmupDelay)
		}
	}

	fetchTimeout := 15 * time.Second
	if tc.FetchTimeout != "" {
		fetchTimeout, err = time.ParseDuration(tc.FetchTimeout)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse fetch_timeout: %s", tc.FetchTimeout)
		}
	}

	logLevel := logger.LevelInfo
	if tc.LogLevel != "" {
		logLevel, err = logger.ParseLevel(tc.LogLevel)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse log_level: %s", tc.LogLevel)
		}
	}

	if tc.AuthSecretKey == "" {
		return nil, errors.New("auth_secret_key is not set")
	}
	authSecretKey, err := jwk.FromRaw([]byte(tc.AuthSecretKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key from auth_secret_key")
	}

	return &Config{
		ServerAddress: tc.ServerAddress,
		DatabaseURI:   tc.DatabaseURI,
		RedisAddress:  tc.RedisAddress,
		FCMKey:        tc.FCMKey,
		AuthSecretKey: authSecretKey,
		SteamCountry:  tc.SteamCountry,
		SteamLocale:   tc.SteamLocale,
		CheckInterval: checkInterval,
		WarmupDelay:   warmupDelay,
		FetchTimeout:  fetchTimeout,
		LogLevel:      logLevel,
		LogToFile:     tc.LogToFile,
	}, nil
}
