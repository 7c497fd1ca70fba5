package supabase

import (
	"context"
	"fmt"
	"time"
)

// NotificationSink records operator notifications as rows in a table exposed
// through PostgREST, where the back-office dashboard picks them up.
type NotificationSink struct {
	client *Client
	table  string
}

type notificationRow struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func NewNotificationSink(client *Client, table string) *NotificationSink {
	if table == "" {
		table = "operator_notifications"
	}
	return &NotificationSink{client: client, table: table}
}

func (n *NotificationSink) Notify(_ context.Context, title, content string) error {
	row := notificationRow{Title: title, Content: content, CreatedAt: time.Now().UTC()}
	_, _, err := n.client.Supabase.From(n.table).Insert(row, false, "", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}
