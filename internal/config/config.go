package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	FTP        FTPConfig        `mapstructure:"ftp"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Job        JobConfig        `mapstructure:"job"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// DatabaseConfig holds the storage engine connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	Charset         string        `mapstructure:"charset"`
}

// FTPConfig holds the read-only FTP collaborator configuration.
type FTPConfig struct {
	Host        string        `mapstructure:"host"`
	User        string        `mapstructure:"user"`
	Password    string        `mapstructure:"password"`
	ConnTimeout time.Duration `mapstructure:"conn_timeout"`
	LocalTmpDir string        `mapstructure:"local_tmp_dir"`
}

// HTTPConfig holds the thin HTTP surface configuration.
type HTTPConfig struct {
	ListenAddress string        `mapstructure:"listen_address"`
	Port          int           `mapstructure:"port"`
	APIKey        string        `mapstructure:"api_key"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
}

// JobConfig holds the ETL job engine and reaper tuning.
type JobConfig struct {
	WorkerPoolSize    int           `mapstructure:"worker_pool_size"`
	QueueSize         int           `mapstructure:"queue_size"`
	ReaperEnabled     bool          `mapstructure:"reaper_enabled"`
	ReaperInterval    time.Duration `mapstructure:"reaper_interval"`
	ReaperStuckAfter  time.Duration `mapstructure:"reaper_stuck_after"`
}

// MonitoringConfig holds monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Port      int    `mapstructure:"port"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// HealthConfig holds health check configuration.
type HealthConfig struct {
	LivenessPath  string        `mapstructure:"liveness_path"`
	ReadinessPath string        `mapstructure:"readiness_path"`
	CheckTimeout  time.Duration `mapstructure:"check_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string                 `mapstructure:"level"`
	Format string                 `mapstructure:"format"`
	Output string                 `mapstructure:"output"`
	File   FileLogConfig          `mapstructure:"file"`
	Fields map[string]interface{} `mapstructure:"fields"`
}

// FileLogConfig holds file-based log rotation configuration.
type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Load loads configuration from file and environment.
func Load(configFile string) (*Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/sabanas-server")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("SABANAS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvAliases()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// bindEnvAliases binds the flat environment variable names named in §6 of
// the specification directly, since they don't follow the nested
// "SABANAS_SECTION_KEY" convention used elsewhere.
func bindEnvAliases() {
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("ftp.host", "FTP_HOST")
	viper.BindEnv("ftp.user", "FTP_USER_RO")
	viper.BindEnv("ftp.password", "FTP_PASS_RO")
	viper.BindEnv("ftp.local_tmp_dir", "LOCAL_TMP_DIR")
	viper.BindEnv("http.api_key", "SERVICE_API_KEY")
}

func setDefaults() {
	viper.SetDefault("app.name", "sabanas-server")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)

	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "sabanas")
	viper.SetDefault("database.password", "sabanas")
	viper.SetDefault("database.database", "sabanas")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.retry_attempts", 3)
	viper.SetDefault("database.retry_delay", "1s")
	viper.SetDefault("database.charset", "utf8mb4")

	viper.SetDefault("ftp.conn_timeout", "10s")
	viper.SetDefault("ftp.local_tmp_dir", "/tmp/sabanas")

	viper.SetDefault("http.listen_address", "0.0.0.0")
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("http.read_timeout", "15s")
	viper.SetDefault("http.write_timeout", "15s")

	viper.SetDefault("job.worker_pool_size", 8)
	viper.SetDefault("job.queue_size", 256)
	viper.SetDefault("job.reaper_enabled", true)
	viper.SetDefault("job.reaper_interval", "1m")
	viper.SetDefault("job.reaper_stuck_after", "30m")

	viper.SetDefault("monitoring.metrics.enabled", true)
	viper.SetDefault("monitoring.metrics.port", 9090)
	viper.SetDefault("monitoring.metrics.path", "/metrics")
	viper.SetDefault("monitoring.metrics.namespace", "sabanas")
	viper.SetDefault("monitoring.health.liveness_path", "/health/live")
	viper.SetDefault("monitoring.health.readiness_path", "/health/ready")
	viper.SetDefault("monitoring.health.check_timeout", "5s")
	viper.SetDefault("monitoring.logging.level", "info")
	viper.SetDefault("monitoring.logging.format", "json")
	viper.SetDefault("monitoring.logging.output", "stdout")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.Username == "" {
		return fmt.Errorf("database username is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.FTP.Host == "" {
		return fmt.Errorf("ftp host is required")
	}
	if c.FTP.LocalTmpDir == "" {
		return fmt.Errorf("local tmp dir is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTP.Port)
	}
	if c.Job.WorkerPoolSize <= 0 {
		return fmt.Errorf("job worker pool size must be positive")
	}
	if c.Job.QueueSize <= 0 {
		return fmt.Errorf("job queue size must be positive")
	}
	if c.Monitoring.Metrics.Enabled {
		if c.Monitoring.Metrics.Port <= 0 || c.Monitoring.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", c.Monitoring.Metrics.Port)
		}
	}
	return nil
}

// GetDSN returns the MySQL driver DSN for the storage engine.
func (c *DatabaseConfig) GetDSN() string {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=true&multiStatements=true&interpolateParams=true",
		c.Username, c.Password, c.Host, c.Port, c.Database, charset)
}

// GetFTPAddr returns the FTP server's host, suitable for jlaffaye/ftp.Dial.
func (c *FTPConfig) GetFTPAddr() string {
	if strings.Contains(c.Host, ":") {
		return c.Host
	}
	return fmt.Sprintf("%s:21", c.Host)
}

// IsProduction returns true if running in the production environment.
func (c *AppConfig) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// IsDevelopment returns true if running in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return strings.ToLower(c.Environment) == "development"
}
