package services

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/tale-search/internal/repository"
	"github.com/fyerfyer/tale-search/pkg/taskqueue"
)

// SearchLogHandler 处理异步写入搜索记录的任务
type SearchLogHandler struct {
	repo   repository.SearchLogRepository
	logger *logrus.Logger
}

// NewSearchLogHandler 创建搜索记录任务处理器
func NewSearchLogHandler(repo repository.SearchLogRepository, logger *logrus.Logger) *SearchLogHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &SearchLogHandler{
		repo:   repo,
		logger: logger,
	}
}

// GetTaskTypes 返回支持的任务类型
func (h *SearchLogHandler) GetTaskTypes() []taskqueue.TaskType {
	return []taskqueue.TaskType{taskqueue.TaskSearchLog}
}

// ProcessTask 将任务载荷写入数据库
func (h *SearchLogHandler) ProcessTask(ctx context.Context, task *taskqueue.Task) error {
	if task.Type != taskqueue.TaskSearchLog {
		return fmt.Errorf("%w: %s", taskqueue.ErrNoHandler, task.Type)
	}

	var payload taskqueue.SearchLogPayload
	if err := taskqueue.UnmarshalPayload(task.Payload, &payload); err != nil {
		// 载荷损坏时重试没有意义
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	if err := h.repo.WithContext(ctx).Create(newSearchLog(payload)); err != nil {
		return fmt.Errorf("failed to save search log: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"task_id": task.ID,
		"query":   payload.Query,
	}).Debug("Search log saved")
	return nil
}
