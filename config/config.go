package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	OSS         OSSConfig         `mapstructure:"oss"`
	OAuth       OAuthConfig       `mapstructure:"oauth"`
	Email       EmailConfig       `mapstructure:"email"`
	Sightengine SightengineConfig `mapstructure:"sightengine"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Upload      UploadConfig      `mapstructure:"upload"`
	Quota       QuotaConfig       `mapstructure:"quota"`
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

type OAuthConfig struct {
	Github GithubOAuthConfig `mapstructure:"github"`
}

type GithubOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// SightengineConfig 内容检测 API 配置
type SightengineConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	APIUser        string `mapstructure:"api_user"`
	APISecret      string `mapstructure:"api_secret"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type UploadConfig struct {
	MaxSize           int64    `mapstructure:"max_size"`           // 最大文件大小（字节）
	AllowedExtensions []string `mapstructure:"allowed_extensions"` // 允许的扩展名
}

// QuotaConfig 新用户默认配额
type QuotaConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

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

	if cfg.Sightengine.Endpoint == "" {
		cfg.Sightengine.Endpoint = "https://api.sightengine.com/1.0/check.json"
	}
	if cfg.Sightengine.TimeoutSeconds <= 0 {
		cfg.Sightengine.TimeoutSeconds = 30
	}
	if cfg.Quota.DefaultLimit <= 0 {
		cfg.Quota.DefaultLimit = 1000
	}

	return &cfg, nil
}
