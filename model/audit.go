package model

import "time"

// TaskRecord 是一条命令审计记录
type TaskRecord struct {
	ID          int64     `db:"id"`
	Task        string    `db:"task"`
	UserID      string    `db:"user_id"`
	UserName    string    `db:"user_name"`
	ChannelID   string    `db:"channel_id"`
	ChannelName string    `db:"channel_name"`
	Details     string    `db:"details"`
	CreatedAt   time.Time `db:"created_at"`
}
