package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fyerfyer/tale-search/api"
	"github.com/fyerfyer/tale-search/api/handler"
	"github.com/fyerfyer/tale-search/api/middleware"
	appconfig "github.com/fyerfyer/tale-search/config"
	"github.com/fyerfyer/tale-search/internal/cache"
	"github.com/fyerfyer/tale-search/internal/corpus"
	"github.com/fyerfyer/tale-search/internal/database"
	"github.com/fyerfyer/tale-search/internal/repository"
	"github.com/fyerfyer/tale-search/internal/search"
	"github.com/fyerfyer/tale-search/internal/services"
	"github.com/fyerfyer/tale-search/pkg/storage"
	"github.com/fyerfyer/tale-search/pkg/taskqueue"
)

// 命令行选项
type options struct {
	ConfigFile   string        // 配置文件路径
	Port         int           // 服务端口
	Mode         string        // 运行模式 (debug/release)
	LogLevel     string        // 日志级别
	DataDir      string        // 语料库目录
	CacheType    string        // 缓存类型
	QueueEnabled bool          // 是否启用任务队列
	ReadTimeout  time.Duration // 读取超时
	WriteTimeout time.Duration // 写入超时
}

func main() {
	// .env文件不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Failed to load .env file: %v", err)
	}

	opts := parseFlags()

	cfg, err := appconfig.Load(opts.ConfigFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg, opts)

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 初始化日志
	logger := setupLogger(cfg.Log)
	logger.Info("Starting fairy tale search service...")

	// 加载语料库，加载完成前不接受请求
	index, err := loadCorpus(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to load corpus: %v", err)
	}

	// 创建缓存服务
	var resultCache cache.Cache
	if cfg.Cache.Enable {
		resultCache, err = setupCache(cfg.Cache)
		if err != nil {
			logger.Fatalf("Failed to initialize cache: %v", err)
		}
		logger.WithField("type", cfg.Cache.Type).Info("Search cache initialized")
	}

	// 初始化数据库
	var repo repository.SearchLogRepository
	if cfg.Database.Enable {
		if err := database.Setup(&database.Config{Type: cfg.Database.Type, DSN: cfg.Database.DSN}, logger); err != nil {
			logger.Fatalf("Failed to initialize database: %v", err)
		}
		defer database.Close()
		repo = repository.NewSearchLogRepository()
	}

	searchOpts := []services.SearchOption{
		services.WithCacheTTL(time.Duration(cfg.Cache.TTL) * time.Second),
		services.WithSearchLogger(logger),
	}

	// 初始化任务队列（如果启用）
	if cfg.Queue.Enable && repo == nil {
		logger.Warn("Task queue is enabled but the database is disabled, search logs will not be recorded")
	}
	if cfg.Queue.Enable && repo != nil {
		queueCfg := queueConfig(cfg.Queue)

		queue, err := taskqueue.NewQueue(cfg.Queue.Type, queueCfg)
		if err != nil {
			logger.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer queue.Close()

		var worker taskqueue.Worker = taskqueue.NewRedisWorker(queueCfg, logger)
		worker.RegisterHandler(services.NewSearchLogHandler(repo, logger))
		if err := worker.Start(); err != nil {
			logger.Fatalf("Failed to start task worker: %v", err)
		}
		defer worker.Stop()

		searchOpts = append(searchOpts, services.WithSearchLogQueue(queue))
		logger.Info("Search logs will be written through the task queue")
	}

	// 初始化业务服务
	taleService := services.NewTaleService(index, services.WithPageSize(cfg.Search.PageSize))
	searchService := services.NewSearchService(search.NewEngine(index), resultCache, repo, searchOpts...)

	// 设置路由
	r := api.SetupRouter(
		handler.NewTaleHandler(taleService),
		handler.NewSearchHandler(searchService),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	// 优雅关闭
	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// parseFlags 解析命令行参数
func parseFlags() options {
	opts := options{}

	flag.StringVar(&opts.ConfigFile, "config", "config.yaml", "Path to config file")
	flag.IntVar(&opts.Port, "port", 8080, "Server port")
	flag.StringVar(&opts.Mode, "mode", "release", "Run mode (debug/release)")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug/info/warn/error)")
	flag.StringVar(&opts.DataDir, "data-dir", "./data", "Directory holding the corpus files")
	flag.StringVar(&opts.CacheType, "cache", "memory", "Cache type (memory/redis)")
	flag.BoolVar(&opts.QueueEnabled, "queue", false, "Write search logs through the task queue")
	flag.DurationVar(&opts.ReadTimeout, "read-timeout", 30*time.Second, "Read timeout")
	flag.DurationVar(&opts.WriteTimeout, "write-timeout", 30*time.Second, "Write timeout")

	flag.Parse()
	return opts
}

// applyFlags 用命令行上明确设置的参数覆盖配置文件
func applyFlags(cfg *appconfig.Config, opts options) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = opts.Port
		case "mode":
			cfg.Server.Mode = opts.Mode
		case "log-level":
			cfg.Log.Level = opts.LogLevel
		case "data-dir":
			cfg.Storage.Type = "local"
			cfg.Storage.Path = opts.DataDir
		case "cache":
			cfg.Cache.Type = opts.CacheType
		case "queue":
			cfg.Queue.Enable = opts.QueueEnabled
		}
	})
}

// setupLogger 设置日志系统，配置了日志文件时同时写入滚动文件
func setupLogger(cfg appconfig.LogConfig) *logrus.Logger {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
	middleware.ConfigureLogger(cfg.Level, out)
	return middleware.GetLogger()
}

// loadCorpus 从配置的来源加载语料库
func loadCorpus(cfg *appconfig.Config, logger *logrus.Logger) (*corpus.Index, error) {
	src, err := storage.NewSource(storage.Config{
		Type:  cfg.Storage.Type,
		Local: storage.LocalConfig{Path: cfg.Storage.Path},
		Minio: storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
			Bucket:    cfg.Storage.Bucket,
			Prefix:    cfg.Storage.Prefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus source: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Corpus.Timeout())
	defer cancel()

	return corpus.Load(ctx, src, cfg.Corpus.DocumentsFile, cfg.Corpus.EntitiesFile, logger)
}

// setupCache 设置缓存服务
func setupCache(cfg appconfig.CacheConfig) (cache.Cache, error) {
	cacheConfig := cache.DefaultConfig()
	cacheConfig.Type = cfg.Type
	if cfg.TTL > 0 {
		cacheConfig.DefaultTTL = time.Duration(cfg.TTL) * time.Second
	}
	if cfg.KeyPrefix != "" {
		cacheConfig.KeyPrefix = cfg.KeyPrefix
	}

	if cfg.Type == "redis" {
		cacheConfig.RedisAddr = cfg.Address
		cacheConfig.RedisPassword = cfg.Password
		cacheConfig.RedisDB = cfg.DB
	}

	return cache.NewCache(cacheConfig)
}

// queueConfig 根据配置创建任务队列配置
func queueConfig(cfg appconfig.QueueConfig) *taskqueue.Config {
	queueCfg := taskqueue.DefaultConfig()
	queueCfg.RedisAddr = cfg.RedisAddr
	queueCfg.RedisPassword = cfg.RedisPassword
	queueCfg.RedisDB = cfg.RedisDB
	if cfg.Concurrency > 0 {
		queueCfg.Concurrency = cfg.Concurrency
	}
	if cfg.RetryLimit > 0 {
		queueCfg.RetryLimit = cfg.RetryLimit
	}
	if cfg.RetryDelay > 0 {
		queueCfg.RetryDelay = time.Duration(cfg.RetryDelay) * time.Second
	}
	if cfg.Name != "" {
		queueCfg.Queue = cfg.Name
		queueCfg.Queues = map[string]int{cfg.Name: 1}
	}
	return queueCfg
}
