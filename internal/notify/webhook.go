package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Webhook 分发通知客户端
// 表单分发给接收人后向配置的端点推送一条消息，端点未配置时静默跳过。
type Webhook struct {
	endpoint   string
	httpClient *http.Client
}

// NewWebhook 创建通知客户端
func NewWebhook(endpoint string) *Webhook {
	return &Webhook{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// distributedEvent 表单分发事件载荷
type distributedEvent struct {
	Event     string     `json:"event"`
	FormID    string     `json:"form_id"`
	FormTitle string     `json:"form_title"`
	UserID    string     `json:"user_id"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	SentAt    time.Time  `json:"sent_at"`
}

// FormDistributed 推送表单分发通知
func (w *Webhook) FormDistributed(ctx context.Context, formID, formTitle, userID string, dueDate *time.Time) error {
	if w == nil || w.endpoint == "" {
		return nil
	}

	payload := distributedEvent{
		Event:     "form.distributed",
		FormID:    formID,
		FormTitle: formTitle,
		UserID:    userID,
		DueDate:   dueDate,
		SentAt:    time.Now(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
