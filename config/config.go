package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `mapstructure:",squash"`
	LLM    LLMConfig    `mapstructure:",squash"`
	Engine EngineConfig `mapstructure:",squash"`
	Store  StoreConfig  `mapstructure:",squash"`
}

type ServerConfig struct {
	Port string `mapstructure:"PORT"`
}

type LLMConfig struct {
	Provider         string  `mapstructure:"LLM_PROVIDER"`
	APIKey           string  `mapstructure:"LLM_API_KEY"`
	APIURL           string  `mapstructure:"LLM_API_URL"`
	ModelName        string  `mapstructure:"LLM_MODEL_NAME"` // e.g. "gpt-3.5-turbo", "deepseek-chat"
	Temperature      float64 `mapstructure:"LLM_TEMPERATURE"`
	MaxTokens        int     `mapstructure:"LLM_MAX_TOKENS"`
	PresencePenalty  float64 `mapstructure:"LLM_PRESENCE_PENALTY"`
	FrequencyPenalty float64 `mapstructure:"LLM_FREQUENCY_PENALTY"`
	Proxy            string  `mapstructure:"LLM_PROXY"` // optional egress proxy URL
}

// EngineConfig bounds the human-timing behavior of every account session.
// All durations are in seconds.
type EngineConfig struct {
	PollIntervalMin    float64 `mapstructure:"POLL_INTERVAL_MIN"`
	PollIntervalMax    float64 `mapstructure:"POLL_INTERVAL_MAX"`
	InterResponseMin   float64 `mapstructure:"INTER_RESPONSE_MIN"`
	InterResponseMax   float64 `mapstructure:"INTER_RESPONSE_MAX"`
	AmbientProbability float64 `mapstructure:"AMBIENT_PROBABILITY"`
	AccountsFile       string  `mapstructure:"ACCOUNTS_FILE"`
}

type StoreConfig struct {
	Path string `mapstructure:"DB_PATH"`
}

// ProxyConfig is a per-account egress proxy for the channel transport.
type ProxyConfig struct {
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	Username string `mapstructure:"username" json:"username"`
	Password string `mapstructure:"password" json:"password"`
	Protocol string `mapstructure:"protocol" json:"protocol"`
}

// URL renders the proxy as a URL usable by the HTTP client.
func (p ProxyConfig) URL() string {
	protocol := p.Protocol
	if protocol == "" {
		protocol = "http"
	}
	auth := ""
	if p.Username != "" && p.Password != "" {
		auth = p.Username + ":" + p.Password + "@"
	}
	return fmt.Sprintf("%s://%s%s:%d", protocol, auth, p.Host, p.Port)
}

// AccountConfig is one automated chat identity bound to one channel.
type AccountConfig struct {
	Token     string            `mapstructure:"token" json:"token"`
	UserID    string            `mapstructure:"user_id" json:"user_id"`
	ChannelID string            `mapstructure:"channel_id" json:"channel_id"`
	Headers   map[string]string `mapstructure:"headers" json:"headers"`
	Proxy     *ProxyConfig      `mapstructure:"proxy" json:"proxy,omitempty"`
}

var AppConfig *Config

func Init() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, relying on environment variables: %v", err)
	}

	AppConfig = &Config{}
	if err := viper.Unmarshal(AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	// Set default values if needed
	if AppConfig.Server.Port == "" {
		AppConfig.Server.Port = "8080"
	}
	if AppConfig.LLM.ModelName == "" {
		AppConfig.LLM.ModelName = "gpt-3.5-turbo"
	}
	if AppConfig.LLM.Temperature == 0 {
		AppConfig.LLM.Temperature = 0.7
	}
	if AppConfig.LLM.MaxTokens == 0 {
		AppConfig.LLM.MaxTokens = 150
	}
	if AppConfig.LLM.PresencePenalty == 0 {
		AppConfig.LLM.PresencePenalty = 0.5
	}
	if AppConfig.LLM.FrequencyPenalty == 0 {
		AppConfig.LLM.FrequencyPenalty = 0.5
	}
	if AppConfig.Engine.PollIntervalMin == 0 {
		AppConfig.Engine.PollIntervalMin = 60
	}
	if AppConfig.Engine.PollIntervalMax == 0 {
		AppConfig.Engine.PollIntervalMax = 240
	}
	if AppConfig.Engine.InterResponseMin == 0 {
		AppConfig.Engine.InterResponseMin = 60
	}
	if AppConfig.Engine.InterResponseMax == 0 {
		AppConfig.Engine.InterResponseMax = 120
	}
	if AppConfig.Engine.AmbientProbability == 0 {
		AppConfig.Engine.AmbientProbability = 0.05
	}
	if AppConfig.Engine.AccountsFile == "" {
		AppConfig.Engine.AccountsFile = "accounts.json"
	}
	if AppConfig.Store.Path == "" {
		AppConfig.Store.Path = "conversations.db"
	}
}

// LoadAccounts reads the per-account credentials file (JSON, shape:
// {"accounts": [{token, user_id, channel_id, headers, proxy?}, ...]}).
func LoadAccounts(path string) ([]AccountConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}

	var wrapper struct {
		Accounts []AccountConfig `mapstructure:"accounts"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return nil, fmt.Errorf("decode accounts file: %w", err)
	}
	if len(wrapper.Accounts) == 0 {
		return nil, fmt.Errorf("no accounts configured in %s", path)
	}
	return wrapper.Accounts, nil
}
