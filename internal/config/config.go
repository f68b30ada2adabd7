package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type FulfillmentConfig struct {
	Env          string `yaml:"env"`
	HTTPServer   `yaml:"http_server"`
	OrderDB      `yaml:"order_db"`
	Redis        `yaml:"redis"`
	KafkaService `yaml:"kafka-service"`
	Storage      `yaml:"storage"`
	Generation   `yaml:"generation"`
	Mailer       `yaml:"mailer"`
	Payment      `yaml:"payment"`
	Pipeline     `yaml:"pipeline"`
	LogConfig    `yaml:"log_config"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type OrderDB struct {
	Dsn           string `yaml:"dsn"`
	MigrationPath string `yaml:"migration_path"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"fulfillment-events"`
}

type Storage struct {
	Bucket       string        `yaml:"bucket" env:"GCS_BUCKET"`
	SignedURLTTL time.Duration `yaml:"signed_url_ttl" env-default:"1h"`
	ObjectPrefix string        `yaml:"object_prefix" env-default:"artifacts"`
}

type GenerationProvider struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout" env-default:"20s"`
}

type Generation struct {
	Primary   GenerationProvider `yaml:"primary"`
	Secondary GenerationProvider `yaml:"secondary"`
}

type Mailer struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	From   string `yaml:"from"`
}

type Payment struct {
	WebhookSecret  string        `yaml:"webhook_secret" env:"PAYMENT_WEBHOOK_SECRET"`
	RefundURL      string        `yaml:"refund_url"`
	APIKey         string        `yaml:"api_key" env:"PAYMENT_API_KEY"`
	ReplayWindow   time.Duration `yaml:"replay_window" env-default:"5m"`
	RejectionAlert int64         `yaml:"rejection_alert_threshold" env-default:"10"`
}

type Pipeline struct {
	LockTTL           time.Duration `yaml:"lock_ttl" env-default:"15m"`
	DuplicateWindow   time.Duration `yaml:"duplicate_window" env-default:"10m"`
	ReconcileAttempts int           `yaml:"reconcile_attempts" env-default:"10"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval" env-default:"500ms"`
	RenderTimeout     time.Duration `yaml:"render_timeout" env-default:"20s"`
	TicketSLA         time.Duration `yaml:"ticket_sla" env-default:"4h"`
	SweepInterval     time.Duration `yaml:"sweep_interval" env-default:"15m"`
	RecoveryBaseURL   string        `yaml:"recovery_base_url"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

func MustLoad() *FulfillmentConfig {

	// Processing env config variable and file
	configPath := os.Getenv("FULFILLMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("FULFILLMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg FulfillmentConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
