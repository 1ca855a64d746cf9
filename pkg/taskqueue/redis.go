package taskqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisQueue 基于asynq的Redis任务队列
type RedisQueue struct {
	client *asynq.Client  // 用于添加任务
	cfg    *Config        // 队列配置
	logger *logrus.Logger // 日志记录器
}

// redisOpt 根据配置生成asynq的Redis连接参数
func redisOpt(cfg *Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// NewRedisQueue 创建Redis任务队列实例
func NewRedisQueue(cfg *Config) (*RedisQueue, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultConfig().Queue
	}

	// 测试Redis连接
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	client := asynq.NewClient(redisOpt(cfg))

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &RedisQueue{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// SetLogger 设置日志记录器
func (q *RedisQueue) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		q.logger = logger
	}
}

// Enqueue 将任务加入队列
func (q *RedisQueue) Enqueue(ctx context.Context, taskType TaskType, payload interface{}) (string, error) {
	payloadBytes, err := MarshalPayload(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := &Task{
		ID:        uuid.New().String(),
		Type:      taskType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(task)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task: %w", err)
	}

	_, err = q.client.EnqueueContext(ctx,
		asynq.NewTask(string(taskType), data),
		asynq.TaskID(task.ID),
		asynq.Queue(q.cfg.Queue),
		asynq.MaxRetry(q.cfg.RetryLimit),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	q.logger.WithFields(logrus.Fields{
		"task_id":   task.ID,
		"task_type": taskType,
	}).Debug("Task enqueued")

	return task.ID, nil
}

// Close 关闭队列连接
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// 注册Redis队列工厂函数
func init() {
	RegisterQueueFactory("redis", func(cfg *Config) (Queue, error) {
		return NewRedisQueue(cfg)
	})
}
