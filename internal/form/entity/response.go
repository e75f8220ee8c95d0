package entity

import (
	"time"
)

// FormResponse 一次已接受提交的不可变快照
// Fields 为提交时刻的字段值副本，不随模板模式的后续变更改变；
// 只在模板级联删除时销毁。
type FormResponse struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	FormID      string    `json:"form_id" gorm:"size:32;not null;index"`
	UserID      string    `json:"user_id" gorm:"size:32;not null;index"`
	Fields      FieldList `json:"fields" gorm:"type:jsonb;not null;default:'[]'"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (FormResponse) TableName() string {
	return "form_responses"
}
