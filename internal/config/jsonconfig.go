package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Константы для имен переменных окружения
const (
	EnvAddress         = "ADDRESS"
	EnvInsertKey       = "INSERT_KEY"
	EnvKey             = "KEY"
	EnvHarvestInterval = "HARVEST_INTERVAL"
	EnvPollInterval    = "POLL_INTERVAL"
	EnvSendTimeout     = "SEND_TIMEOUT"
	EnvServiceName     = "SERVICE_NAME"
	EnvLogLevel        = "LOG_LEVEL"
	EnvDumpFile        = "DUMP_FILE"
	EnvDatabaseDSN     = "DATABASE_DSN"
	EnvAuditFile       = "AUDIT_FILE"
	EnvAuditURL        = "AUDIT_URL"
	EnvConfig          = "CONFIG"
)

// Константы для флагов командной строки
const (
	FlagAddress         = "a"
	FlagInsertKey       = "insert-key"
	FlagKey             = "k"
	FlagHarvestInterval = "i"
	FlagPollInterval    = "p"
	FlagSendTimeout     = "t"
	FlagServiceName     = "s"
	FlagLogLevel        = "l"
	FlagDumpFile        = "f"
	FlagDatabaseDSN     = "d"
	FlagAuditFile       = "audit-file"
	FlagAuditURL        = "audit-url"
	FlagConfig          = "c"
)

// AgentJSONConfig представляет конфигурацию агента в формате JSON.
type AgentJSONConfig struct {
	Address         string `json:"address"`          // ADDRESS или флаг -a
	InsertKey       string `json:"insert_key"`       // INSERT_KEY или флаг -insert-key
	Key             string `json:"key"`              // KEY или флаг -k
	HarvestInterval string `json:"harvest_interval"` // HARVEST_INTERVAL или флаг -i (в формате "5s")
	PollInterval    string `json:"poll_interval"`    // POLL_INTERVAL или флаг -p (в формате "1s")
	SendTimeout     string `json:"send_timeout"`     // SEND_TIMEOUT или флаг -t (в формате "10s")
	ServiceName     string `json:"service_name"`     // SERVICE_NAME или флаг -s
	LogLevel        string `json:"log_level"`        // LOG_LEVEL или флаг -l
}

// CollectorJSONConfig представляет конфигурацию тестового коллектора в формате JSON.
type CollectorJSONConfig struct {
	Address     string `json:"address"`      // ADDRESS или флаг -a
	InsertKey   string `json:"insert_key"`   // INSERT_KEY или флаг -insert-key
	Key         string `json:"key"`          // KEY или флаг -k
	DumpFile    string `json:"dump_file"`    // DUMP_FILE или флаг -f
	DatabaseDSN string `json:"database_dsn"` // DATABASE_DSN или флаг -d
	AuditFile   string `json:"audit_file"`   // AUDIT_FILE или флаг -audit-file
	AuditURL    string `json:"audit_url"`    // AUDIT_URL или флаг -audit-url
	LogLevel    string `json:"log_level"`    // LOG_LEVEL или флаг -l
}

// loadJSONConfig — обобщенная функция для загрузки JSON конфигурации.
func loadJSONConfig(filePath string, v interface{}) error {
	if filePath == "" {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadAgentJSONConfig загружает конфигурацию агента из JSON файла.
//
// Пустой путь даёт пустую конфигурацию без ошибки.
func LoadAgentJSONConfig(filePath string) (*AgentJSONConfig, error) {
	cfg := &AgentJSONConfig{}
	if err := loadJSONConfig(filePath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadCollectorJSONConfig загружает конфигурацию коллектора из JSON файла.
func LoadCollectorJSONConfig(filePath string) (*CollectorJSONConfig, error) {
	cfg := &CollectorJSONConfig{}
	if err := loadJSONConfig(filePath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseDuration парсит строку длительности в формате "1s", "1m", "1h".
// Если строка пуста, возвращает 0 и nil.
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %w", err)
	}

	return d, nil
}

// GetConfigFilePathWithFlag получает путь к файлу конфигурации, учитывая явно переданный флаг.
// Используется после разбора флагов.
func GetConfigFilePathWithFlag(flagValue string) string {
	// Флаги имеют больший приоритет
	if flagValue != "" {
		return flagValue
	}
	return EnvString(EnvConfig)
}
