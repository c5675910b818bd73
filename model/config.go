package model

import "time"

// WelcomeConfig 定义了新成员欢迎消息的模板
type WelcomeConfig struct {
	ChannelID       string `mapstructure:"channel_id"`
	DirectTemplate  string `mapstructure:"direct_template"`
	ChannelTemplate string `mapstructure:"channel_template"`
}

// SiegeConfig 定义了攻城事件的配置
type SiegeConfig struct {
	CitiesFile      string          `mapstructure:"cities_file"`
	ReminderOffsets []time.Duration `mapstructure:"reminder_offsets"`
}

// TranslationConfig 定义了自动翻译的配置
type TranslationConfig struct {
	FlagsFile    string        `mapstructure:"flags_file"`
	Destination  string        `mapstructure:"destination"`
	MinLength    int           `mapstructure:"min_length"`
	Endpoint     string        `mapstructure:"endpoint"`
	RequestLimit time.Duration `mapstructure:"request_timeout"`
}

// Config 存储应用程序的配置
type Config struct {
	BotToken        string `mapstructure:"-"`
	GuildID         string `mapstructure:"-"`
	LogChannelID    string `mapstructure:"-"`
	DevelopmentMode bool   `mapstructure:"-"`
	LogLevel        string `mapstructure:"-"`

	Prefix          string            `mapstructure:"prefix"`
	AllowedRoleIDs  []string          `mapstructure:"allowed_role_ids"`
	MissionsSuffix  string            `mapstructure:"missions_suffix"`
	TransientTTL    time.Duration     `mapstructure:"transient_ttl"`
	AuditDBPath     string            `mapstructure:"audit_db"`
	CommandHelpFile string            `mapstructure:"command_help_file"`
	Welcome         WelcomeConfig     `mapstructure:"welcome"`
	Siege           SiegeConfig       `mapstructure:"siege"`
	Translation     TranslationConfig `mapstructure:"translation"`
}

// Flags 是运行时可切换的功能开关，保存在单独的 JSON 文件中
type Flags struct {
	TranslationEnabled bool `json:"translation_enabled"`
}
