package entity

import (
	"time"
)

// User 系统用户
// 用户名下的授权通过 form_requests.user_id 反向查询，
// 剩余次数以 FormRequest 为准。
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Email     string    `json:"email" gorm:"size:256"`
	Status    string    `json:"status" gorm:"size:16;default:active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
