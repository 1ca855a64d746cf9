package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Corpus   CorpusConfig   `mapstructure:"corpus"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Database DatabaseConfig `mapstructure:"database"`
	Search   SearchConfig   `mapstructure:"search"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"` // 服务器主机
	Port int    `mapstructure:"port"` // 服务器端口
	Mode string `mapstructure:"mode"` // gin运行模式：debug、release、test
}

// Addr 返回监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CorpusConfig 语料库文件配置
type CorpusConfig struct {
	DocumentsFile string `mapstructure:"documents_file"` // 童话文本文件
	EntitiesFile  string `mapstructure:"entities_file"`  // 实体标注文件
	LoadTimeout   int    `mapstructure:"load_timeout"`   // 加载超时（秒）
}

// StorageConfig 语料文件来源配置
type StorageConfig struct {
	Type      string `mapstructure:"type"`     // 来源类型：local 或 minio
	Path      string `mapstructure:"path"`     // 本地目录
	Bucket    string `mapstructure:"bucket"`   // MinIO桶名称
	Prefix    string `mapstructure:"prefix"`   // MinIO对象前缀
	Endpoint  string `mapstructure:"endpoint"` // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"` // 是否使用SSL
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enable    bool   `mapstructure:"enable"`     // 是否启用缓存
	Type      string `mapstructure:"type"`       // 缓存类型：memory 或 redis
	Address   string `mapstructure:"address"`    // Redis地址
	Password  string `mapstructure:"password"`   // Redis密码
	DB        int    `mapstructure:"db"`         // Redis数据库
	KeyPrefix string `mapstructure:"key_prefix"` // Redis键前缀
	TTL       int    `mapstructure:"ttl"`        // 缓存TTL（秒）
}

// QueueConfig 任务队列配置
type QueueConfig struct {
	Enable        bool   `mapstructure:"enable"`         // 是否异步写入搜索记录
	Type          string `mapstructure:"type"`           // 队列类型
	Name          string `mapstructure:"name"`           // 队列名称
	RedisAddr     string `mapstructure:"redis_addr"`     // Redis地址
	RedisPassword string `mapstructure:"redis_password"` // Redis密码
	RedisDB       int    `mapstructure:"redis_db"`       // Redis数据库编号
	Concurrency   int    `mapstructure:"concurrency"`    // 任务处理并发数
	RetryLimit    int    `mapstructure:"retry_limit"`    // 任务最大重试次数
	RetryDelay    int    `mapstructure:"retry_delay"`    // 重试延迟(秒)
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enable bool   `mapstructure:"enable"` // 是否记录搜索历史
	Type   string `mapstructure:"type"`   // 数据库类型: sqlite
	DSN    string `mapstructure:"dsn"`    // 数据源名称
}

// SearchConfig 搜索与浏览配置
type SearchConfig struct {
	PageSize int `mapstructure:"page_size"` // 故事列表每页数量
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // 日志级别
	File       string `mapstructure:"file"`        // 日志文件，为空时只输出到标准输出
	MaxSize    int    `mapstructure:"max_size"`    // 单个日志文件最大大小(MB)
	MaxBackups int    `mapstructure:"max_backups"` // 保留的旧日志文件数量
	MaxAge     int    `mapstructure:"max_age"`     // 旧日志保留天数
	Compress   bool   `mapstructure:"compress"`    // 是否压缩旧日志
}

// Timeout 返回语料库加载超时时间
func (c CorpusConfig) Timeout() time.Duration {
	if c.LoadTimeout <= 0 {
		return time.Minute
	}
	return time.Duration(c.LoadTimeout) * time.Second
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config

	// 设置默认配置路径
	if configPath == "" {
		configPath = "config.yaml" // 默认在当前目录寻找config.yaml
	}

	// 初始化viper
	v := viper.New()
	setDefaults(v)

	// 设置配置文件路径和类型
	v.SetConfigFile(configPath)

	// 尝试读取配置文件
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// 如果找不到配置文件，写出一份默认配置
		log.Printf("Warning: Config file not found at %s, using defaults", configPath)
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err == nil {
			if err := v.WriteConfigAs(configPath); err != nil {
				log.Printf("Warning: Could not write default config to %s: %v", configPath, err)
			}
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 支持环境变量覆盖，例如 SERVER_PORT、CACHE_TYPE
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 解析配置到结构体
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return processEnvironmentVariables(&config), nil
}

// processEnvironmentVariables 替换形如 ${VAR} 的密钥配置
func processEnvironmentVariables(cfg *Config) *Config {
	cfg.Storage.AccessKey = expandEnvRef(cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = expandEnvRef(cfg.Storage.SecretKey)
	cfg.Cache.Password = expandEnvRef(cfg.Cache.Password)
	cfg.Queue.RedisPassword = expandEnvRef(cfg.Queue.RedisPassword)
	return cfg
}

// expandEnvRef 环境变量不存在时保留原值
func expandEnvRef(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	if envVal := os.Getenv(value[2 : len(value)-1]); envVal != "" {
		return envVal
	}
	return value
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	// 语料库默认配置
	v.SetDefault("corpus.documents_file", "fairy_tales_corrected.json")
	v.SetDefault("corpus.entities_file", "entities_corrected.json")
	v.SetDefault("corpus.load_timeout", 60)

	// 存储默认配置
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.bucket", "tales")
	v.SetDefault("storage.use_ssl", false)

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.key_prefix", "tales:")
	v.SetDefault("cache.ttl", 3600) // 1小时

	// 队列默认配置
	v.SetDefault("queue.enable", false)
	v.SetDefault("queue.type", "redis")
	v.SetDefault("queue.name", "tales")
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.redis_db", 0)
	v.SetDefault("queue.concurrency", 2)
	v.SetDefault("queue.retry_limit", 3)
	v.SetDefault("queue.retry_delay", 10)

	// 数据库默认配置
	v.SetDefault("database.enable", true)
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/tales.db")

	// 搜索默认配置
	v.SetDefault("search.page_size", 10)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)
}
