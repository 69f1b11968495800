package data

import "time"

// DatabaseConfig represents relational database configuration
type DatabaseConfig struct {
	Driver          string        `json:"driver" yaml:"driver"` // postgres, mysql, sqlite3
	Source          string        `json:"source" yaml:"source"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// SearchConfig represents search index configuration
type SearchConfig struct {
	Host   string `json:"host" yaml:"host"`
	APIKey string `json:"api_key" yaml:"api_key"`
}

// RedisConfig represents redis configuration
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// Config represents the data layer configuration
type Config struct {
	Database *DatabaseConfig `json:"database" yaml:"database"`
	Search   *SearchConfig   `json:"search" yaml:"search"`
	Redis    *RedisConfig    `json:"redis" yaml:"redis"`
}
