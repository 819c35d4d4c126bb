// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	LLM           LLMConfig           `mapstructure:"llm"`
	RAG           RAGConfig           `mapstructure:"rag"`
}

// ServerConfig 存储 HTTP 服务器相关的配置。
type ServerConfig struct {
	Port      string `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`
	StaticDir string `mapstructure:"static_dir"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// StorageConfig 存储文档存储后端的配置。
// Backend 取值 "local" 或 "cloud"，在启动时决定一次，之后不再切换。
type StorageConfig struct {
	Backend      string `mapstructure:"backend"`
	DataDir      string `mapstructure:"data_dir"`
	IndexDir     string `mapstructure:"index_dir"`
	MetadataPath string `mapstructure:"metadata_path"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// EmbeddingConfig 存储 Embedding 模型相关的配置。
type EmbeddingConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// RAGConfig 存储检索增强生成相关的参数。
type RAGConfig struct {
	TopK         int `mapstructure:"top_k"`
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

// BackendCloud 和 BackendLocal 是 storage.backend 的两个合法取值。
const (
	BackendLocal = "local"
	BackendCloud = "cloud"
)

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
// 环境变量覆盖配置文件中的敏感项和后端开关。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 敏感配置与部署开关允许通过环境变量注入
	_ = viper.BindEnv("embedding.api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("llm.api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("database.mysql.dsn", "MYSQL_DSN")
	_ = viper.BindEnv("database.redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	_ = viper.BindEnv("minio.access_key_id", "MINIO_ACCESS_KEY")
	_ = viper.BindEnv("minio.secret_access_key", "MINIO_SECRET_KEY")
	_ = viper.BindEnv("elasticsearch.addresses", "ES_ADDRESSES")
	_ = viper.BindEnv("elasticsearch.password", "ES_PASSWORD")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}

	// 后端开关：STORAGE_BACKEND 优先，其次是兼容旧部署脚本的 USE_SUPABASE 别名,
	// 两个环境变量都覆盖配置文件中的值
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		Conf.Storage.Backend = backend
	} else if strings.EqualFold(os.Getenv("USE_SUPABASE"), "true") {
		Conf.Storage.Backend = BackendCloud
	}
	if Conf.Storage.Backend == "" {
		Conf.Storage.Backend = BackendLocal
	}

	applyDefaults()
}

// applyDefaults 为缺省的非必填项补上参考实现的默认值。
func applyDefaults() {
	if Conf.Storage.DataDir == "" {
		Conf.Storage.DataDir = "data"
	}
	if Conf.Storage.IndexDir == "" {
		Conf.Storage.IndexDir = "vector_store"
	}
	if Conf.Storage.MetadataPath == "" {
		Conf.Storage.MetadataPath = "vector_store_metadata.json"
	}
	if Conf.RAG.TopK <= 0 {
		Conf.RAG.TopK = 2
	}
	if Conf.RAG.ChunkSize <= 0 {
		Conf.RAG.ChunkSize = 200
	}
	if Conf.RAG.ChunkOverlap <= 0 {
		Conf.RAG.ChunkOverlap = 20
	}
}

// CloudConfigured 返回 cloud 后端所需的全部配置是否就绪。
func (c *Config) CloudConfigured() bool {
	return c.Database.MySQL.DSN != "" &&
		c.Elasticsearch.Addresses != "" &&
		c.MinIO.Endpoint != ""
}
