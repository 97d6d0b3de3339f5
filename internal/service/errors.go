package service

import "errors"

// Общие сервисные ошибки. Доменные ошибки живут в internal/models.
var (
	ErrInternal         = errors.New("internal service error")
	ErrPermissionDenied = errors.New("permission denied")
)
