// bookshared 是 BookShare 推荐与提醒后台：
// 启动时加载（或重建）推荐快照，然后按配置周期执行到期提醒扫描。
// CRUD 前端通过进程内调用 recommend.Service 获取推荐并在目录写入后触发重建。
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/CapYuno/Book-Share-App/cache"
	"github.com/CapYuno/Book-Share-App/config"
	"github.com/CapYuno/Book-Share-App/core"
	"github.com/CapYuno/Book-Share-App/filter"
	"github.com/CapYuno/Book-Share-App/library"
	"github.com/CapYuno/Book-Share-App/model"
	"github.com/CapYuno/Book-Share-App/notify"
	"github.com/CapYuno/Book-Share-App/recommend"
	"github.com/CapYuno/Book-Share-App/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML 配置文件路径（缺省用内置默认值）")
		sweepOnce  = flag.Bool("sweep-once", false, "只执行一轮提醒扫描后退出")
		rebuild    = flag.Bool("rebuild", false, "强制重建推荐快照后退出")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			// 配置错误是唯一允许致命的错误，且只在启动期
			bootLog := zerolog.New(os.Stderr)
			bootLog.Fatal().Err(err).Msg("invalid configuration")
		}
		cfg = loaded
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lib, err := library.Open(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open circulation store")
	}
	defer lib.Close()

	snapStore, snapKey, err := buildSnapshotStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("open snapshot store")
	}
	defer snapStore.Close()

	m, err := model.New(cfg.Strategy, cfg.ModelOptions())
	if err != nil {
		logger.Fatal().Err(err).Msg("build similarity model")
	}

	filters := make(filter.Chain, 0, len(cfg.FilterRules))
	for _, rule := range cfg.FilterRules {
		f, err := filter.NewRuleFilter(rule)
		if err != nil {
			logger.Fatal().Err(err).Msg("compile filter rule")
		}
		filters = append(filters, f)
	}

	svc := recommend.NewService(recommend.Params{
		Catalog:       lib,
		Loans:         lib,
		Cache:         cache.NewManager(snapStore, snapKey, m, logger),
		Filters:       filters,
		TopKDefault:   cfg.TopKDefault,
		HistoryWindow: cfg.HistoryWindow,
		WideK:         cfg.WideK,
		Logger:        logger,
	})

	if *rebuild {
		if _, err := svc.InvalidateAndRebuild(ctx); err != nil && !core.IsEmptyCatalog(err) {
			logger.Error().Err(err).Msg("rebuild failed")
			os.Exit(1)
		}
		return
	}

	svc.Warm(ctx)

	var mailer notify.Mailer = &notify.LogMailer{Log: logger}
	if cfg.SMTP.Enabled {
		mailer = &notify.SMTPMailer{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}
	}
	processor := &notify.Processor{
		Loans:         lib,
		Borrowers:     lib,
		Catalog:       lib,
		Notifications: lib,
		Mailer:        mailer,
		DaysBefore:    cfg.Reminder.DaysBefore,
		DaysAfter:     cfg.Reminder.DaysAfter,
		Log:           logger,
	}

	if *sweepOnce {
		if _, err := processor.ProcessDue(ctx); err != nil {
			logger.Error().Err(err).Msg("reminder sweep failed")
			os.Exit(1)
		}
		return
	}

	interval := time.Duration(cfg.Reminder.SweepIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info().Dur("interval", interval).Msg("bookshared running")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down")
			return
		case <-ticker.C:
			if _, err := processor.ProcessDue(ctx); err != nil {
				logger.Error().Err(err).Msg("reminder sweep failed")
			}
		}
	}
}

// buildSnapshotStore 按配置选择快照后端：
// 配了 Redis 地址走 Redis，否则落到 cache_path 所在目录的文件存储。
func buildSnapshotStore(cfg *config.Config) (core.SnapshotStore, string, error) {
	if cfg.Redis.Addr != "" {
		s, err := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			return nil, "", err
		}
		return s, cache.DefaultSnapshotKey, nil
	}
	dir := filepath.Dir(cfg.CachePath)
	key := filepath.Base(cfg.CachePath)
	s, err := store.NewFileStore(dir)
	if err != nil {
		return nil, "", err
	}
	return s, key, nil
}
