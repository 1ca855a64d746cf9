package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

var _ Worker = (*RedisWorker)(nil)

// RedisWorker 基于asynq的工作者实现
type RedisWorker struct {
	server   *asynq.Server
	handlers map[TaskType]Handler
	logger   *logrus.Logger
}

// NewRedisWorker 创建Redis工作者
func NewRedisWorker(cfg *Config, logger *logrus.Logger) *RedisWorker {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}

	queues := cfg.Queues
	if len(queues) == 0 {
		queues = map[string]int{cfg.Queue: 1}
	}
	retryDelay := cfg.RetryDelay

	server := asynq.NewServer(redisOpt(cfg), asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      queues,
		RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
			return retryDelay * time.Duration(n+1)
		},
		Logger: logger,
	})

	return &RedisWorker{
		server:   server,
		handlers: make(map[TaskType]Handler),
		logger:   logger,
	}
}

// RegisterHandler 为处理器支持的所有任务类型注册处理器
func (w *RedisWorker) RegisterHandler(handler Handler) {
	for _, taskType := range handler.GetTaskTypes() {
		w.handlers[taskType] = handler
	}
}

// Start 启动工作者
func (w *RedisWorker) Start() error {
	mux := asynq.NewServeMux()
	for taskType := range w.handlers {
		mux.HandleFunc(string(taskType), w.processTask)
		w.logger.WithField("task_type", taskType).Info("Registered handler for task type")
	}
	return w.server.Start(mux)
}

// Stop 停止工作者
func (w *RedisWorker) Stop() {
	w.server.Shutdown()
}

// processTask 解析asynq任务并交给对应的处理器
func (w *RedisWorker) processTask(ctx context.Context, t *asynq.Task) error {
	handler, ok := w.handlers[TaskType(t.Type())]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, t.Type())
	}

	var task Task
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		// 载荷损坏时重试没有意义
		return fmt.Errorf("%w: %v: %w", ErrInvalidPayload, err, asynq.SkipRetry)
	}

	if err := handler.ProcessTask(ctx, &task); err != nil {
		w.logger.WithError(err).WithFields(logrus.Fields{
			"task_id":   task.ID,
			"task_type": task.Type,
		}).Error("Task processing failed")
		return err
	}
	return nil
}
