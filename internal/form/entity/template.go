package entity

import (
	"time"
)

// FormTemplate 可分发的表单模板
// Fields/PageCount 在创建时由Codec解析结果一次性写入。
// Quota 为每个接收人的提交次数上限，0 表示不限次数。
type FormTemplate struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	Title       string     `json:"title" gorm:"size:256;not null"`
	Description string     `json:"description" gorm:"type:text"`
	Quota       int        `json:"quota" gorm:"not null;default:0"`
	DueDate     *time.Time `json:"due_date"`
	Fields      FieldList  `json:"fields" gorm:"type:jsonb;not null;default:'[]'"`
	PageCount   int        `json:"page_count" gorm:"not null;default:0"`
	CreatedBy   string     `json:"created_by" gorm:"size:32"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (FormTemplate) TableName() string {
	return "form_templates"
}

// PastDue 判断模板是否已过截止时间
func (t *FormTemplate) PastDue(now time.Time) bool {
	return t.DueDate != nil && now.After(*t.DueDate)
}

// FormRecipient 表单接收人记录
// (form_id, user_id) 复合主键保证集合插入幂等。
type FormRecipient struct {
	FormID    string    `json:"form_id" gorm:"primaryKey;size:32"`
	UserID    string    `json:"user_id" gorm:"primaryKey;size:32"`
	CreatedAt time.Time `json:"created_at"`
}

func (FormRecipient) TableName() string {
	return "form_recipients"
}
