package models

import "errors"

var (
	// ErrInvalidSearchLog 无效的搜索记录错误
	ErrInvalidSearchLog = errors.New("invalid search log")
)
