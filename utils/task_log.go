package utils

import (
	"elk-bot/model"
	"elk-bot/utils/database"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// TaskLogger records command invocations in the audit database and
// announces them in the operator channel.
type TaskLogger struct {
	DB     *sqlx.DB
	Log    *OperatorLog
	Logger *zap.Logger
	Now    func() time.Time
}

// TaskActor identifies who ran a task and where.
type TaskActor struct {
	UserID      string
	UserName    string
	ChannelID   string
	ChannelName string
}

func (t *TaskLogger) LogTask(actor TaskActor, task, details string) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}

	t.Logger.Debug("task",
		zap.String("channel", actor.ChannelName),
		zap.String("user", actor.UserName),
		zap.String("task", task),
		zap.String("details", details))

	if t.DB != nil {
		_, err := database.AddTaskRecord(t.DB, model.TaskRecord{
			Task:        task,
			UserID:      actor.UserID,
			UserName:    actor.UserName,
			ChannelID:   actor.ChannelID,
			ChannelName: actor.ChannelName,
			Details:     details,
			CreatedAt:   now().UTC(),
		})
		if err != nil {
			t.Logger.Warn("could not store task record", zap.String("task", task), zap.Error(err))
		}
	}

	content := fmt.Sprintf("Command `%s` called by <@%s> in <#%s>", task, actor.UserID, actor.ChannelID)
	if details != "" {
		content += fmt.Sprintf(" with ```%s```", escapeCodeBlock(details))
	}
	if _, err := t.Log.Send(content); err != nil {
		t.Logger.Warn("could not log command to operator channel", zap.Error(err))
	}
}

// escapeCodeBlock breaks every backtick run so details cannot close the
// surrounding code block.
func escapeCodeBlock(s string) string {
	return strings.ReplaceAll(s, "`", "`\u200b")
}
