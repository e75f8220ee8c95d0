package entity

import (
	"time"
)

// UnlimitedQuota 配额哨兵值：不限提交次数，永不递减
const UnlimitedQuota = 0

// FormRequest 某个接收人对某个表单的有效授权
// (user_id, form_id) 唯一索引保证同一对至多一条有效授权。
// SubmissionsRemaining == 0 表示不限次数；剩余次数为1的最后一次提交
// 与删除本记录是同一个原子操作，因此剩余0次的记录不可观测。
type FormRequest struct {
	ID                   string    `json:"id" gorm:"primaryKey;size:32"`
	UserID               string    `json:"user_id" gorm:"size:32;not null;uniqueIndex:idx_request_user_form"`
	FormID               string    `json:"form_id" gorm:"size:32;not null;uniqueIndex:idx_request_user_form;index"`
	SubmissionsRemaining int       `json:"submissions_remaining" gorm:"not null;default:0"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (FormRequest) TableName() string {
	return "form_requests"
}

// Unlimited 是否为不限次数授权
func (r *FormRequest) Unlimited() bool {
	return r.SubmissionsRemaining == UnlimitedQuota
}
