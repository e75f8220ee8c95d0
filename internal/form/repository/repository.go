package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	Template *TemplateRepository
	Request  *RequestRepository
	Response *ResponseRepository
	User     *UserRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Template: NewTemplateRepository(db),
		Request:  NewRequestRepository(db),
		Response: NewResponseRepository(db),
		User:     NewUserRepository(db),
	}
}
