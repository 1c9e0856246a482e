package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	DB     DBConfig     `mapstructure:"db"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Kafka  KafkaConfig  `mapstructure:"kafka"`
	Escrow EscrowConfig `mapstructure:"escrow"`
	Wallet WalletConfig `mapstructure:"wallet"`
	Worker WorkerConfig `mapstructure:"worker"`
	Cron   CronConfig   `mapstructure:"cron"`
	Relay  RelayConfig  `mapstructure:"relay"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
	GrpcPort string `mapstructure:"grpc_port"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis" or "kafka"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

// EscrowConfig 托管放款相关参数
type EscrowConfig struct {
	FeeRate        string            `mapstructure:"fee_rate"`  // 平台费率, 十进制字符串, 例如 "0.03"
	FeeTiers       map[string]string `mapstructure:"fee_tiers"` // 信用等级 -> 费率, 为空则使用固定费率
	StatusCacheTTL time.Duration     `mapstructure:"status_cache_ttl"`
}

type WalletConfig struct {
	WithdrawMin int64 `mapstructure:"withdraw_min"` // 最低提现金额 (VND)
}

type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type CronConfig struct {
	ReconcileSpec string `mapstructure:"reconcile_spec"`
}

type RelayConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
}

var Global Config

func Init() {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name
	viper.AddConfigPath(".")      // optionally look for config in the working directory
	viper.AddConfigPath("./config")

	// 环境变量设置
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(replacer())

	// 设置默认值
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

func replacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.http_port", "8080")
	viper.SetDefault("app.grpc_port", "50051")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.user", "escrow_user")
	viper.SetDefault("db.password", "escrow_password")
	viper.SetDefault("db.name", "escrow_db")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.mq_type", "redis")

	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})

	viper.SetDefault("escrow.fee_rate", "0.03")
	viper.SetDefault("escrow.status_cache_ttl", 30*time.Second)

	viper.SetDefault("wallet.withdraw_min", 50000)

	viper.SetDefault("worker.concurrency", 10)
	viper.SetDefault("cron.reconcile_spec", "@every 10m")
	viper.SetDefault("relay.interval", 500*time.Millisecond)
	viper.SetDefault("relay.batch_size", 50)
}

// PostgresDSN 构造 gorm 使用的 DSN
func (c DBConfig) PostgresDSN() string {
	return "host=" + c.Host + " user=" + c.User + " password=" + c.Password +
		" dbname=" + c.Name + " port=" + c.Port + " sslmode=disable TimeZone=Asia/Ho_Chi_Minh"
}

// MigrateURL 构造 golang-migrate 使用的连接串
func (c DBConfig) MigrateURL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + c.Port + "/" + c.Name + "?sslmode=disable"
}
