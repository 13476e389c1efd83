package scheduler

import (
	"errors"
	"strings"

	"StockReporter/internal/notifier"
	"StockReporter/internal/watchlist"
)

const historyLimit = 10

// HandleCommand processes a chat message and returns the reply.
func (s *Scheduler) HandleCommand(text string) string {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return notifier.FormatInvalidSymbol()
	}

	// Group chats append the bot name: /list@SomeBot.
	cmd, _, _ := strings.Cut(fields[0], "@")

	switch cmd {
	case "/start":
		return notifier.FormatWelcome()
	case "/help":
		return notifier.FormatHelp()
	case "/list":
		return notifier.FormatList(s.Watchlist.List())
	case "/remove":
		if len(fields) < 2 {
			return "用法: /remove 600519"
		}
		return s.remove(fields[1])
	case "/history":
		return s.history()
	case "/run":
		if !s.startManualRun() {
			return "⏳ 分析正在进行中，请稍后再试"
		}
		return "🚀 已开始分析监控列表，报告生成后将自动推送"
	}

	if watchlist.ValidSymbol(text) {
		return s.add(text)
	}
	return notifier.FormatInvalidSymbol()
}

func (s *Scheduler) add(symbol string) string {
	added, err := s.Watchlist.Add(symbol)
	if err != nil {
		return notifier.FormatInvalidSymbol()
	}
	s.Log.WithField("symbol", symbol).WithField("added", added).Info("watchlist add")
	return notifier.FormatAdded(symbol, added)
}

func (s *Scheduler) remove(symbol string) string {
	removed, err := s.Watchlist.Remove(symbol)
	if errors.Is(err, watchlist.ErrInvalidSymbol) {
		return notifier.FormatInvalidSymbol()
	}
	s.Log.WithField("symbol", symbol).WithField("removed", removed).Info("watchlist remove")
	return notifier.FormatRemoved(symbol, removed)
}

func (s *Scheduler) history() string {
	records, err := s.Recorder.RecentRuns(historyLimit)
	if err != nil {
		s.Log.WithError(err).Error("load run history failed")
		return "❌ 读取分析记录失败"
	}
	return notifier.FormatHistory(records)
}
