package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// envVarPattern 匹配 ${VAR} 或 ${VAR:default} 占位符
var envVarPattern = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load 加载配置文件，支持按环境叠加和环境变量展开
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 按 APP_ENV 叠加环境配置（configs/config.development.yaml 等）
	if env := os.Getenv("APP_ENV"); env != "" && configPath == "" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("叠加环境配置失败: %w", err)
			}
		}
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandEnvVars 展开所有字符串配置项中的环境变量占位符
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)
		switch s := val.(type) {
		case string:
			v.Set(key, expandString(s))
		case []interface{}:
			out := make([]interface{}, len(s))
			for i, item := range s {
				if str, ok := item.(string); ok {
					out[i] = expandString(str)
				} else {
					out[i] = item
				}
			}
			v.Set(key, out)
		}
	}
}

// expandString 将 ${VAR:default} 替换为环境变量值或默认值
func expandString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name, def := parts[1], parts[2]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return def
	})
}

// validate 校验必填配置项
func validate(cfg *Config) error {
	var missing []string
	if cfg.Database.Postgres.Host == "" {
		missing = append(missing, "database.postgres.host")
	}
	if cfg.Cache.Redis.Host == "" {
		missing = append(missing, "cache.redis.host")
	}
	if cfg.Security.JWT.Secret == "" {
		missing = append(missing, "security.jwt.secret")
	}
	if cfg.LLM.DefaultProvider != "" {
		if _, ok := cfg.LLM.Providers[cfg.LLM.DefaultProvider]; !ok {
			return fmt.Errorf("配置无效: llm.default_provider %q 未在 llm.providers 中定义", cfg.LLM.DefaultProvider)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("缺少必填配置项: %s", strings.Join(missing, ", "))
	}
	return nil
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "worldbest-ai-api")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.env", "development")

	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "120s")
	v.SetDefault("server.http.idle_timeout", "90s")

	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 50)
	v.SetDefault("database.postgres.max_idle_conns", 10)
	v.SetDefault("database.postgres.conn_max_lifetime", "1h")
	v.SetDefault("database.postgres.conn_max_idle_time", "10m")

	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 20)
	v.SetDefault("cache.redis.min_idle_conns", 5)
	v.SetDefault("cache.redis.dial_timeout", "5s")
	v.SetDefault("cache.redis.read_timeout", "3s")
	v.SetDefault("cache.redis.write_timeout", "3s")

	v.SetDefault("vector.milvus.port", 19530)
	v.SetDefault("vector.milvus.collection_prefix", "worldbest")
	v.SetDefault("vector.milvus.index_type", "HNSW")
	v.SetDefault("vector.milvus.metric_type", "COSINE")
	v.SetDefault("vector.milvus.hnsw_m", 16)
	v.SetDefault("vector.milvus.hnsw_ef_construction", 200)

	v.SetDefault("embedding.dimension", 1024)

	v.SetDefault("generation.call_timeout", "90s")
	v.SetDefault("generation.context_cache_ttl", "5m")
	v.SetDefault("generation.context_cache_enabled", true)
	v.SetDefault("generation.enrich_concurrency", 4)

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.logging.output", "stdout")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.exporter", "otlp")
	v.SetDefault("observability.tracing.sample_rate", 0.1)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("security.jwt.issuer", "worldbest-ai-api")
	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.requests_per_second", 10)
	v.SetDefault("security.rate_limit.burst", 20)
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key"})
}
