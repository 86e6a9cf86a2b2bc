package config

import (
	"errors"
	"flag"
	"fmt"
	"time"
)

// Значения по умолчанию для агента.
const (
	DefaultHarvestInterval = 5 * time.Second
	DefaultPollInterval    = 2 * time.Second
	DefaultSendTimeout     = 10 * time.Second
)

// AgentConfig — итоговая конфигурация агента.
//
// Приоритет источников: переменные окружения, затем флаги, затем JSON-файл,
// затем значения по умолчанию.
type AgentConfig struct {
	Address         NetAddress
	InsertKey       string
	Key             string
	HarvestInterval time.Duration
	PollInterval    time.Duration
	SendTimeout     time.Duration
	ServiceName     string
	LogLevel        string
}

// ParseAgentConfig разбирает args в fs и собирает AgentConfig.
func ParseAgentConfig(fs *flag.FlagSet, args []string) (*AgentConfig, error) {
	cfg := &AgentConfig{Address: NetAddress{Scheme: "http", Host: "localhost", Port: 8080}}

	fs.Var(&cfg.Address, FlagAddress, "Collector address [scheme://]host:port")
	fs.StringVar(&cfg.InsertKey, FlagInsertKey, "", "Insert key sent as Api-Key")
	fs.StringVar(&cfg.Key, FlagKey, "", "Key for signing payloads")
	fs.DurationVar(&cfg.HarvestInterval, FlagHarvestInterval, DefaultHarvestInterval, "Harvest interval")
	fs.DurationVar(&cfg.PollInterval, FlagPollInterval, DefaultPollInterval, "Poll interval")
	fs.DurationVar(&cfg.SendTimeout, FlagSendTimeout, DefaultSendTimeout, "Per-send timeout")
	fs.StringVar(&cfg.ServiceName, FlagServiceName, "telemetry-agent", "Service name tag")
	fs.StringVar(&cfg.LogLevel, FlagLogLevel, "info", "Log level")
	configPath := fs.String(FlagConfig, "", "Path to JSON config")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := explicitFlags(fs)
	jsonCfg, err := LoadAgentJSONConfig(GetConfigFilePathWithFlag(*configPath))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyJSON(jsonCfg, set); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *AgentConfig) applyJSON(j *AgentJSONConfig, set map[string]bool) error {
	if j.Address != "" && !set[FlagAddress] {
		if err := cfg.Address.Set(j.Address); err != nil {
			return fmt.Errorf("invalid address in config: %w", err)
		}
	}
	setString(&cfg.InsertKey, j.InsertKey, set[FlagInsertKey])
	setString(&cfg.Key, j.Key, set[FlagKey])
	setString(&cfg.ServiceName, j.ServiceName, set[FlagServiceName])
	setString(&cfg.LogLevel, j.LogLevel, set[FlagLogLevel])

	durations := []struct {
		dst  *time.Duration
		raw  string
		flag string
	}{
		{&cfg.HarvestInterval, j.HarvestInterval, FlagHarvestInterval},
		{&cfg.PollInterval, j.PollInterval, FlagPollInterval},
		{&cfg.SendTimeout, j.SendTimeout, FlagSendTimeout},
	}
	for _, d := range durations {
		if d.raw == "" || set[d.flag] {
			continue
		}
		v, err := ParseDuration(d.raw)
		if err != nil {
			return err
		}
		*d.dst = v
	}
	return nil
}

func (cfg *AgentConfig) applyEnv() error {
	if err := EnvServer(&cfg.Address, EnvAddress); err != nil {
		return err
	}
	cfg.InsertKey = EnvOrString(EnvInsertKey, cfg.InsertKey)
	cfg.Key = EnvOrString(EnvKey, cfg.Key)
	cfg.ServiceName = EnvOrString(EnvServiceName, cfg.ServiceName)
	cfg.LogLevel = EnvOrString(EnvLogLevel, cfg.LogLevel)

	envDurations := []struct {
		dst *time.Duration
		key string
	}{
		{&cfg.HarvestInterval, EnvHarvestInterval},
		{&cfg.PollInterval, EnvPollInterval},
		{&cfg.SendTimeout, EnvSendTimeout},
	}
	for _, d := range envDurations {
		v, err := EnvDuration(d.key)
		if err != nil {
			return err
		}
		if v != 0 {
			*d.dst = v
		}
	}
	return nil
}

func (cfg *AgentConfig) validate() error {
	if cfg.HarvestInterval <= 0 {
		return errors.New("harvest interval must be positive")
	}
	if cfg.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if cfg.SendTimeout <= 0 {
		return errors.New("send timeout must be positive")
	}
	return nil
}

// explicitFlags возвращает имена флагов, явно переданных в командной строке.
func explicitFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func setString(dst *string, val string, explicit bool) {
	if val != "" && !explicit {
		*dst = val
	}
}
