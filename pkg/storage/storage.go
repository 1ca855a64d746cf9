package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrFileNotFound 文件不存在错误
var ErrFileNotFound = errors.New("file not found")

// FileInfo 文件元数据结构
type FileInfo struct {
	Name     string // 文件名（相对于存储根目录或存储桶）
	Size     int64  // 文件大小(字节)
	MimeType string // 文件MIME类型
}

// Source 只读文件来源接口
// 语料库文件由外部标注流程生成，服务只读取不写入
type Source interface {
	// Open 打开文件读取内容
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Exists 检查文件是否存在
	Exists(ctx context.Context, name string) (bool, error)

	// List 列出所有文件
	List(ctx context.Context) ([]FileInfo, error)
}

// Config 文件来源配置
type Config struct {
	Type  string      // 来源类型：local 或 minio
	Local LocalConfig // 本地目录配置
	Minio MinioConfig // MinIO配置
}

// NewSource 根据配置创建文件来源
func NewSource(cfg Config) (Source, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg.Local)
	case "minio":
		return NewMinioStorage(cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// getMimeType 简单根据文件扩展名判断MIME类型
func getMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return "application/json"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
