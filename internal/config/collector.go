package config

import (
	"errors"
	"flag"
	"fmt"
)

// CollectorConfig — итоговая конфигурация тестового коллектора.
type CollectorConfig struct {
	Address     NetAddress
	InsertKey   string
	Key         string
	DumpFile    string
	DatabaseDSN string
	AuditFile   string
	AuditURL    string
	LogLevel    string
}

// ParseCollectorConfig разбирает args в fs и собирает CollectorConfig.
//
// Ключ вставки обязателен: коллектор отклоняет запросы без Api-Key.
func ParseCollectorConfig(fs *flag.FlagSet, args []string) (*CollectorConfig, error) {
	cfg := &CollectorConfig{Address: NetAddress{Scheme: "http", Host: "localhost", Port: 8080}}

	fs.Var(&cfg.Address, FlagAddress, "Listen address host:port")
	fs.StringVar(&cfg.InsertKey, FlagInsertKey, "", "Expected Api-Key")
	fs.StringVar(&cfg.Key, FlagKey, "", "Key for verifying payload signatures")
	fs.StringVar(&cfg.DumpFile, FlagDumpFile, "", "File to dump received batches on shutdown")
	fs.StringVar(&cfg.DatabaseDSN, FlagDatabaseDSN, "", "PostgreSQL DSN")
	fs.StringVar(&cfg.AuditFile, FlagAuditFile, "", "Audit log file")
	fs.StringVar(&cfg.AuditURL, FlagAuditURL, "", "Audit endpoint URL")
	fs.StringVar(&cfg.LogLevel, FlagLogLevel, "info", "Log level")
	configPath := fs.String(FlagConfig, "", "Path to JSON config")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := explicitFlags(fs)
	j, err := LoadCollectorJSONConfig(GetConfigFilePathWithFlag(*configPath))
	if err != nil {
		return nil, err
	}
	if j.Address != "" && !set[FlagAddress] {
		if err := cfg.Address.Set(j.Address); err != nil {
			return nil, fmt.Errorf("invalid address in config: %w", err)
		}
	}
	setString(&cfg.InsertKey, j.InsertKey, set[FlagInsertKey])
	setString(&cfg.Key, j.Key, set[FlagKey])
	setString(&cfg.DumpFile, j.DumpFile, set[FlagDumpFile])
	setString(&cfg.DatabaseDSN, j.DatabaseDSN, set[FlagDatabaseDSN])
	setString(&cfg.AuditFile, j.AuditFile, set[FlagAuditFile])
	setString(&cfg.AuditURL, j.AuditURL, set[FlagAuditURL])
	setString(&cfg.LogLevel, j.LogLevel, set[FlagLogLevel])

	if err := EnvServer(&cfg.Address, EnvAddress); err != nil {
		return nil, err
	}
	cfg.InsertKey = EnvOrString(EnvInsertKey, cfg.InsertKey)
	cfg.Key = EnvOrString(EnvKey, cfg.Key)
	cfg.DumpFile = EnvOrString(EnvDumpFile, cfg.DumpFile)
	cfg.DatabaseDSN = EnvOrString(EnvDatabaseDSN, cfg.DatabaseDSN)
	cfg.AuditFile = EnvOrString(EnvAuditFile, cfg.AuditFile)
	cfg.AuditURL = EnvOrString(EnvAuditURL, cfg.AuditURL)
	cfg.LogLevel = EnvOrString(EnvLogLevel, cfg.LogLevel)

	if cfg.InsertKey == "" {
		return nil, errors.New("insert key is required")
	}
	return cfg, nil
}
