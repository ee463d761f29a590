package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OSS       OSSConfig       `mapstructure:"oss"`
	Line      LineConfig      `mapstructure:"line"`
	Email     EmailConfig     `mapstructure:"email"`
	Queue     QueueConfig     `mapstructure:"queue"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Privilege PrivilegeConfig `mapstructure:"privilege"`
	OTP       OTPConfig       `mapstructure:"otp"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Cron      CronConfig      `mapstructure:"cron"`
	Upload    UploadConfig    `mapstructure:"upload"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

// LineConfig LINE Login 渠道配置
type LineConfig struct {
	ChannelID     string `mapstructure:"channel_id"`
	ChannelSecret string `mapstructure:"channel_secret"`
	RedirectURI   string `mapstructure:"redirect_uri"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type QueueConfig struct {
	MailQueue  string `mapstructure:"mail_queue"`
	MaxWorkers int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type PrivilegeConfig struct {
	// LegacyReversal 删除消费记录时余额回退固定按 150 取模
	LegacyReversal    bool `mapstructure:"legacy_reversal"`
	LockExpirySeconds int  `mapstructure:"lock_expiry_seconds"`
}

type OTPConfig struct {
	Length                int `mapstructure:"length"`
	TTLMinutes            int `mapstructure:"ttl_minutes"`
	ResendCooldownSeconds int `mapstructure:"resend_cooldown_seconds"`
	MaxAttempts           int `mapstructure:"max_attempts"`
}

type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type CronConfig struct {
	DiamondSweepSpec string `mapstructure:"diamond_sweep_spec"`
}

type UploadConfig struct {
	MaxSize           int64    `mapstructure:"max_size"`           // 最大文件大小（字节）
	AllowedExtensions []string `mapstructure:"allowed_extensions"` // 允许的扩展名
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 默认值
	viper.SetDefault("privilege.legacy_reversal", true)
	viper.SetDefault("privilege.lock_expiry_seconds", 5)
	viper.SetDefault("otp.length", 6)
	viper.SetDefault("otp.ttl_minutes", 10)
	viper.SetDefault("otp.resend_cooldown_seconds", 60)
	viper.SetDefault("otp.max_attempts", 5)
	viper.SetDefault("queue.mail_queue", "mail_queue")
	viper.SetDefault("queue.max_workers", 2)
	viper.SetDefault("cron.diamond_sweep_spec", "0 5 0 * * *")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
