package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	Orchestrator struct {
		ToolTimeoutSeconds     int `yaml:"toolTimeoutSeconds"`
		DecisionTimeoutSeconds int `yaml:"decisionTimeoutSeconds"`
		RunTimeoutSeconds      int `yaml:"runTimeoutSeconds"`
	} `yaml:"orchestrator"`

	Auth struct {
		// tenant -> API key; empty map disables auth
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

func (c *Config) ToolTimeout() time.Duration {
	if c.Orchestrator.ToolTimeoutSeconds > 0 {
		return time.Duration(c.Orchestrator.ToolTimeoutSeconds) * time.Second
	}
	return 5 * time.Minute
}

func (c *Config) DecisionTimeout() time.Duration {
	if c.Orchestrator.DecisionTimeoutSeconds > 0 {
		return time.Duration(c.Orchestrator.DecisionTimeoutSeconds) * time.Second
	}
	return 300 * time.Second
}

func (c *Config) RunTimeout() time.Duration {
	if c.Orchestrator.RunTimeoutSeconds > 0 {
		return time.Duration(c.Orchestrator.RunTimeoutSeconds) * time.Second
	}
	return time.Hour
}
