package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	PoolSize int    `mapstructure:"pool_size"`
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Name)
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	Pass         string `mapstructure:"pass"`
	DB           int    `mapstructure:"db"`
	ProbeTTLSecs int    `mapstructure:"probe_ttl_secs"`
}

// AdapterConfig is one AI backend registration. Everything but Enabled is
// fixed for the process lifetime.
type AdapterConfig struct {
	Name         string   `mapstructure:"name"`
	Type         string   `mapstructure:"type"` // openai | ollama | gemini
	Capabilities []string `mapstructure:"capabilities"`
	Priority     int      `mapstructure:"priority"`
	MaxTokens    int      `mapstructure:"max_tokens"`
	CostPerToken float64  `mapstructure:"cost_per_token"`
	Enabled      bool     `mapstructure:"enabled"`
	Model        string   `mapstructure:"model"`
	APIKey       string   `mapstructure:"api_key"`
	URLs         []string `mapstructure:"urls"`
}

type RouterConfig struct {
	CapabilityBonus  float64 `mapstructure:"capability_bonus"`
	CallTimeoutSecs  int     `mapstructure:"call_timeout_secs"`
	ProbeTimeoutSecs int     `mapstructure:"probe_timeout_secs"`
}

type VoiceServiceConfig struct {
	URL         string `mapstructure:"url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

type SchedulerConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Concurrency int  `mapstructure:"concurrency"`
}

type MonitorConfig struct {
	IntervalSecs int `mapstructure:"interval_secs"`
	HistorySize  int `mapstructure:"history_size"`
}

type Settings struct {
	Server    ServerConfig       `mapstructure:"server"`
	DB        DBConfig           `mapstructure:"database"`
	Redis     RedisConfig        `mapstructure:"redis"`
	Router    RouterConfig       `mapstructure:"router"`
	Adapters  []AdapterConfig    `mapstructure:"adapters"`
	Voice     VoiceServiceConfig `mapstructure:"voice_service"`
	Scheduler SchedulerConfig    `mapstructure:"scheduler"`
	Monitor   MonitorConfig      `mapstructure:"monitor"`
	Env       string             `mapstructure:"env"`
	Debug     bool               `mapstructure:"debug"`
}

func Load() (*Settings, error) {
	viper.SetConfigName("config_" + genEnv())
	viper.AddConfigPath(".")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var settings Settings
	if err := viper.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &settings, nil
}

func genEnv() string {
	env := viper.GetString("ENV")
	if env == "" {
		return "dev"
	}
	return env
}
