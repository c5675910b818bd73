package info

import (
	"elk-bot/utils"
	"elk-bot/utils/database"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// SystemStats is the snapshot shown by /info system.
type SystemStats struct {
	Platform    string
	Kernel      string
	GoVersion   string
	CPUCount    int
	CPUPercent  float64
	MemUsed     uint64
	MemTotal    uint64
	MemPercent  float64
	Uptime      time.Duration
	Goroutines  int
	AuditRows   int
	CityCount   int
	Latency     time.Duration
	HasLatency  bool
	CollectedAt time.Time
}

// CollectSystemStats reads host and process figures. Missing figures are
// left at zero.
func (h *Info) CollectSystemStats() SystemStats {
	stats := SystemStats{
		GoVersion:   runtime.Version(),
		Goroutines:  runtime.NumGoroutine(),
		CollectedAt: time.Now(),
	}
	if n, err := cpu.Counts(true); err == nil {
		stats.CPUCount = n
	}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		stats.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemUsed, stats.MemTotal, stats.MemPercent = vm.Used, vm.Total, vm.UsedPercent
	}
	if info, err := host.Info(); err == nil {
		stats.Platform = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		stats.Kernel = info.KernelVersion
		stats.Uptime = time.Duration(info.Uptime) * time.Second
	}
	if h.DB != nil {
		if n, err := database.CountTaskRecords(h.DB); err == nil {
			stats.AuditRows = n
		} else {
			h.Logger.Warn("could not count audit records", zap.Error(err))
		}
	}
	if h.Cities != nil {
		stats.CityCount = len(h.Cities.All())
	}
	if h.Latency != nil {
		stats.Latency, stats.HasLatency = h.Latency(), true
	}
	return stats
}

// SystemEmbed renders stats the way the status embed shows them.
func SystemEmbed(stats SystemStats) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "💻 OS", Value: orNone(stats.Platform), Inline: true},
		{Name: "🔧 Kernel", Value: orNone(stats.Kernel), Inline: true},
		{Name: "🐹 Go", Value: stats.GoVersion, Inline: true},
		{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", stats.CPUCount), Inline: true},
		{Name: "🔥 CPU usage", Value: fmt.Sprintf("%.1f%%", stats.CPUPercent), Inline: true},
		{Name: "🧠 Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", stats.MemPercent, stats.MemUsed/1024/1024, stats.MemTotal/1024/1024), Inline: true},
		{Name: "⏳ Host uptime", Value: stats.Uptime.Truncate(time.Minute).String(), Inline: true},
		{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", stats.Goroutines), Inline: true},
		{Name: "🗃️ Audit records", Value: fmt.Sprintf("%d", stats.AuditRows), Inline: true},
		{Name: "🏰 Cities", Value: fmt.Sprintf("%d", stats.CityCount), Inline: true},
	}
	if stats.HasLatency {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "⏱️ WebSocket latency", Value: stats.Latency.String(), Inline: true})
	}
	return &discordgo.MessageEmbed{
		Title:  "System Info",
		Color:  0x5865F2, // Discord Blurple
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("System monitor・today %s UTC", stats.CollectedAt.UTC().Format("15:04")),
		},
	}
}

func orNone(v string) string {
	if v == "" {
		return "None"
	}
	return v
}

// System replies with host and process statistics.
func (h *Info) System(i *discordgo.Interaction) error {
	h.Tasks.LogTask(actor(i), "info.system", "")
	return h.Messenger.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{SystemEmbed(h.CollectSystemStats())},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

// RecentTasks lists the latest audit records.
func (h *Info) RecentTasks(i *discordgo.Interaction) error {
	h.Tasks.LogTask(actor(i), "info.tasks", "")
	if h.DB == nil {
		return utils.SendSimpleResponse(h.Messenger, i, "The audit database is not configured.")
	}
	records, err := database.RecentTaskRecords(h.DB, recentTasks)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return utils.SendSimpleResponse(h.Messenger, i, "No commands have been recorded yet.")
	}

	var b strings.Builder
	b.WriteString("# Recent Tasks\n```")
	for _, r := range records {
		fmt.Fprintf(&b, "\n%s  %-20s %-16s #%s", r.CreatedAt.UTC().Format("2006-01-02 15:04"), r.Task, r.UserName, r.ChannelName)
		if r.Details != "" {
			fmt.Fprintf(&b, "  %s", r.Details)
		}
	}
	b.WriteString("\n```")
	return utils.SendSimpleResponse(h.Messenger, i, b.String())
}
