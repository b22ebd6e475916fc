// Package config 提供 YAML 配置的加载、默认值与启动期校验。
// 配置错误是整个系统唯一允许致命的错误类别，且只在启动时发生。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CapYuno/Book-Share-App/core"
	"github.com/CapYuno/Book-Share-App/model"
)

// Config 是进程级配置。字段与 YAML 键一一对应。
type Config struct {
	// Strategy 相似度策略：vector | keyword（默认 keyword）
	Strategy string `yaml:"strategy"`

	// TopKDefault 查询未指定 k 时的默认返回条数
	TopKDefault int `yaml:"top_k_default"`

	// 向量模型拟合参数
	MinDocumentFrequency int `yaml:"min_document_frequency"`
	MaxVocabularySize    int `yaml:"max_vocabulary_size"`
	NgramMin             int `yaml:"ngram_min"`
	NgramMax             int `yaml:"ngram_max"`

	// CachePath 快照文件路径（redis.addr 非空时忽略，快照走 Redis）
	CachePath string `yaml:"cache_path"`

	// HistoryWindow 个性化推荐考虑的最近已完成借阅条数
	HistoryWindow int `yaml:"history_window"`

	// WideK 个性化聚合的扇出查询宽度
	WideK int `yaml:"wide_k"`

	// FilterRules 推荐出口过滤规则（CEL 表达式，命中即移除）
	FilterRules []string `yaml:"filter_rules"`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Reminder ReminderConfig `yaml:"reminder"`
	SMTP     SMTPConfig     `yaml:"smtp"`

	// LogLevel zerolog 级别：debug | info | warn | error
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 是流通库（SQLite）配置。
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig 非空 Addr 时启用 Redis 作为快照后端。
type RedisConfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
}

// ReminderConfig 是借阅到期提醒的扫描参数。
type ReminderConfig struct {
	// DaysBefore 到期前几天开始提醒
	DaysBefore int `yaml:"days_before"`
	// DaysAfter 逾期几天后开始催还
	DaysAfter int `yaml:"days_after"`
	// SweepIntervalMinutes 扫描周期（分钟）
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`
}

// SMTPConfig 是提醒邮件的发送配置。Enabled 为 false 时仅记日志不发信。
type SMTPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Default 返回全默认配置。
func Default() *Config {
	return &Config{
		Strategy:             model.StrategyKeyword,
		TopKDefault:          3,
		MinDocumentFrequency: 2,
		MaxVocabularySize:    1000,
		NgramMin:             1,
		NgramMax:             2,
		CachePath:            "bookshare_index.snapshot",
		HistoryWindow:        5,
		WideK:                10,
		Database:             DatabaseConfig{Path: "bookshare.db"},
		Reminder: ReminderConfig{
			DaysBefore:           3,
			DaysAfter:            3,
			SweepIntervalMinutes: 60,
		},
		SMTP: SMTPConfig{
			Host: "localhost",
			Port: 1025,
			From: "BookShare <noreply@bookshare.local>",
		},
		LogLevel: "info",
	}
}

// Load 读取 YAML 配置文件，未设置的字段落到默认值，然后整体校验。
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.ErrInvalidConfig(fmt.Sprintf("read config %s: %v", path, err))
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, core.ErrInvalidConfig(fmt.Sprintf("parse config %s: %v", path, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置。返回的都是 INVALID_CONFIG，调用方应在启动期直接退出。
func (c *Config) Validate() error {
	switch c.Strategy {
	case model.StrategyVector, model.StrategyKeyword, "":
	default:
		return core.ErrInvalidConfig(
			fmt.Sprintf("strategy %q is not one of vector, keyword", c.Strategy))
	}
	if c.TopKDefault < 1 {
		return core.ErrInvalidConfig("top_k_default must be >= 1")
	}
	if c.MinDocumentFrequency < 1 {
		return core.ErrInvalidConfig("min_document_frequency must be >= 1")
	}
	if c.MaxVocabularySize < 1 {
		return core.ErrInvalidConfig("max_vocabulary_size must be >= 1")
	}
	if c.NgramMin < 1 {
		return core.ErrInvalidConfig("ngram_min must be >= 1")
	}
	if c.NgramMax < c.NgramMin {
		return core.ErrInvalidConfig("ngram_max must be >= ngram_min")
	}
	if c.HistoryWindow < 1 {
		return core.ErrInvalidConfig("history_window must be >= 1")
	}
	if c.WideK < 1 {
		return core.ErrInvalidConfig("wide_k must be >= 1")
	}
	// 提醒窗口不支持置 0 关闭：处理器把 <= 0 当缺省补成 3 天，
	// 与其让 0 被静默改写，不如在启动期拒绝
	if c.Reminder.DaysBefore < 1 || c.Reminder.DaysAfter < 1 {
		return core.ErrInvalidConfig("reminder windows must be >= 1 day")
	}
	if c.Reminder.SweepIntervalMinutes < 1 {
		return core.ErrInvalidConfig("sweep_interval_minutes must be >= 1")
	}
	return nil
}

// ModelOptions 把配置映射为模型拟合参数。
func (c *Config) ModelOptions() model.Options {
	return model.Options{
		MinDocFreq:    c.MinDocumentFrequency,
		MaxVocabulary: c.MaxVocabularySize,
		NgramMin:      c.NgramMin,
		NgramMax:      c.NgramMax,
	}
}
