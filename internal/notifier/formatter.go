package notifier

import (
	"fmt"
	"strings"

	"StockReporter/internal/model"
)

// FormatWelcome is the /start reply.
func FormatWelcome() string {
	return "👋 <b>欢迎使用股票分析机器人</b>\n\n" +
		"直接发送6位股票代码即可加入监控列表，例如 <code>600519</code>。\n" +
		"每个交易日 12:00 和 15:15 会自动推送分析报告。\n\n" +
		"发送 /help 查看全部命令。"
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "📖 <b>命令列表</b>\n\n" +
		"<code>600519</code> - 添加股票到监控列表\n" +
		"/remove 600519 - 从监控列表移除\n" +
		"/list - 查看监控列表\n" +
		"/run - 立即分析全部监控股票\n" +
		"/history - 最近的分析记录\n" +
		"/help - 显示本帮助"
}

// FormatList renders the watch-list.
func FormatList(symbols []string) string {
	if len(symbols) == 0 {
		return "📭 监控列表为空，发送6位股票代码添加。"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>监控列表</b> (%d)\n\n", len(symbols)))
	for _, s := range symbols {
		b.WriteString(fmt.Sprintf("- %s\n", s))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatAdded is the reply to a successful or redundant add.
func FormatAdded(symbol string, added bool) string {
	if !added {
		return fmt.Sprintf("ℹ️ %s 已在监控列表中", symbol)
	}
	return fmt.Sprintf("✅ 已添加 %s 到监控列表", symbol)
}

// FormatRemoved is the reply to /remove.
func FormatRemoved(symbol string, removed bool) string {
	if !removed {
		return fmt.Sprintf("ℹ️ %s 不在监控列表中", symbol)
	}
	return fmt.Sprintf("🗑 已从监控列表移除 %s", symbol)
}

// FormatInvalidSymbol is the reply to text that is neither a command nor a code.
func FormatInvalidSymbol() string {
	return "❌ 请输入有效的6位股票代码，或发送 /help 查看命令。"
}

// FormatReportAck is sent just before the report document.
func FormatReportAck(symbol string, trigger model.Trigger, engine string) string {
	return fmt.Sprintf("📊 <b>%s</b> %s分析报告已生成 (%s)", symbol, triggerLabel(trigger), engine)
}

// FormatHistory renders recent run records, newest first.
func FormatHistory(records []model.RunRecord) string {
	if len(records) == 0 {
		return "📭 暂无分析记录"
	}
	var b strings.Builder
	b.WriteString("🕘 <b>最近分析记录</b>\n\n")
	for _, r := range records {
		b.WriteString(fmt.Sprintf("%s %s %s %s",
			r.CreatedAt.Format("01-02 15:04"), r.Symbol, triggerLabel(r.Trigger), statusLabel(r.Status)))
		if r.Status == model.StatusDelivered {
			b.WriteString(fmt.Sprintf(" %+.2f%%", r.ChangePct))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func triggerLabel(t model.Trigger) string {
	switch t {
	case model.TriggerMidday:
		return "午盘"
	case model.TriggerClose:
		return "收盘"
	default:
		return "手动"
	}
}

func statusLabel(s model.RunStatus) string {
	switch s {
	case model.StatusDelivered:
		return "✅"
	case model.StatusNoData:
		return "无数据"
	case model.StatusNoAnalysis:
		return "无分析"
	case model.StatusRenderFailed:
		return "生成失败"
	default:
		return "❌"
	}
}
