package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"frontierBot/internal/analysis"
	"frontierBot/internal/finance"
	"frontierBot/internal/frontier"
	"frontierBot/internal/metrics"
	"frontierBot/internal/report"
	"frontierBot/internal/storage"
)

const (
	msgTooFewSymbols = "Please enter at least two stock tickers."
	msgNoData        = "No data found for the given tickers and date range."
)

// Sender is the part of the Bot API the handlers talk to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Runner interface {
	Run(ctx context.Context, req analysis.Request) (*analysis.Analysis, error)
}

type Commentator interface {
	Comment(ctx context.Context, report string) (string, error)
}

type UsageStore interface {
	RecordCommand(chatID, userID int64, command string, ts int64) error
	Usage(since int64) (*storage.Usage, error)
	DailyUsage(since int64) (map[string][]storage.DayCount, error)
}

type Handlers struct {
	api      Sender
	store    UsageStore
	runner   Runner
	comment  Commentator // nil disables commentary
	defaults FrontierDefaults
	images   *report.ImageCache
	timeout  time.Duration
	log      zerolog.Logger
}

func NewHandlers(api Sender, store UsageStore, runner Runner, comment Commentator, d FrontierDefaults, log zerolog.Logger) *Handlers {
	return &Handlers{
		api:      api,
		store:    store,
		runner:   runner,
		comment:  comment,
		defaults: d,
		images:   report.NewImageCache(report.DefaultImageTTL),
		timeout:  3 * time.Minute,
		log:      log,
	}
}

func (h *Handlers) HandleMessage(m *tgbotapi.Message) {
	txt := strings.TrimSpace(m.Text)
	switch {
	case reFrontier.MatchString(txt):
		h.record(m, "frontier")
		h.handleFrontier(m.Chat.ID, txt)

	case reUsage.MatchString(txt):
		h.record(m, "usage")
		days, _ := parseUsageDays(txt)
		h.handleUsage(m.Chat.ID, days)

	case reHelp.MatchString(txt):
		h.record(m, "help")
		h.handleHelp(m.Chat.ID)
	}
}

func (h *Handlers) record(m *tgbotapi.Message, command string) {
	metrics.ObserveCommand(command)
	var userID int64
	if m.From != nil {
		userID = m.From.ID
	}
	if err := h.store.RecordCommand(m.Chat.ID, userID, command, int64(m.Date)); err != nil {
		h.log.Warn().Err(err).Str("command", command).Msg("usage log write failed")
	}
}

func (h *Handlers) handleFrontier(chatID int64, txt string) {
	args, err := parseFrontier(txt, h.defaults)
	if err != nil {
		h.reply(chatID, err.Error())
		return
	}
	if len(analysis.NormalizeSymbols(args.Symbols)) < 2 {
		h.reply(chatID, msgTooFewSymbols)
		return
	}

	key := cacheKey(args)
	if parts, ok := h.images.Get(key); ok {
		h.log.Debug().Str("key", key).Msg("serving cached frontier")
		h.sendFrontier(chatID, args, parts)
		return
	}

	status, err := h.api.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Sampling %d portfolios for %s…", args.Samples, strings.Join(args.Symbols, ", "))))
	if err != nil {
		h.log.Warn().Err(err).Msg("status message failed")
	}
	last := 0
	progress := func(done, total int) {
		q := quarter(done, total)
		if status.MessageID == 0 || q <= last {
			return
		}
		last = q
		if _, err := h.api.Send(tgbotapi.NewEditMessageText(chatID, status.MessageID, fmt.Sprintf("Sampling portfolios… %d%%", q))); err != nil {
			h.log.Warn().Err(err).Int("progress", q).Msg("progress edit failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	a, err := h.runner.Run(ctx, analysis.Request{
		Symbols:      args.Symbols,
		Start:        args.Start,
		End:          args.End,
		Samples:      args.Samples,
		RiskFreeRate: h.defaults.RiskFreeRate,
		Progress:     progress,
	})
	if err != nil {
		h.log.Warn().Err(err).Strs("symbols", args.Symbols).Msg("frontier failed")
		h.reply(chatID, frontierError(err))
		return
	}

	parts, err := renderFrontier(a)
	if err != nil {
		h.reply(chatID, "Chart failed: "+err.Error())
		return
	}
	h.images.Set(key, parts)
	h.sendFrontier(chatID, args, parts)

	if h.comment != nil {
		cctx, ccancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer ccancel()
		out, err := h.comment.Comment(cctx, string(parts[0]))
		if err != nil {
			h.log.Warn().Err(err).Msg("commentary failed")
			return
		}
		msg := tgbotapi.NewMessage(chatID, out)
		msg.ParseMode = "Markdown"
		if _, err := h.api.Send(msg); err != nil {
			h.log.Warn().Err(err).Msg("commentary send failed")
		}
	}
}

// renderFrontier returns the weights text followed by the frontier, CML and pie PNGs.
func renderFrontier(a *analysis.Analysis) ([][]byte, error) {
	scatter, err := report.RenderFrontier(a)
	if err != nil {
		return nil, err
	}
	cml, err := report.RenderCML(a)
	if err != nil {
		return nil, err
	}
	pie, err := report.RenderWeightsPie(a)
	if err != nil {
		return nil, err
	}
	return [][]byte{[]byte(report.WeightsText(a)), scatter, cml, pie}, nil
}

func (h *Handlers) sendFrontier(chatID int64, args FrontierArgs, parts [][]byte) {
	h.reply(chatID, string(parts[0]))
	name := strings.Join(analysis.NormalizeSymbols(args.Symbols), "_")
	captions := []string{"Efficient Frontier", "Capital Market Line", "Max Sharpe Allocation"}
	files := []string{"_frontier.png", "_cml.png", "_weights.png"}
	for i, img := range parts[1:] {
		file := name + files[i]
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: file, Bytes: img})
		photo.Caption = captions[i] + " • " + args.Start.Format("2006-01-02") + " → " + args.End.Format("2006-01-02")
		if _, err := h.api.Send(photo); err != nil {
			h.log.Warn().Err(err).Str("file", file).Msg("photo send failed")
		}
	}
}

func frontierError(err error) string {
	switch {
	case errors.Is(err, analysis.ErrTooFewSymbols):
		return msgTooFewSymbols
	case errors.Is(err, finance.ErrNoData), errors.Is(err, finance.ErrNotFound),
		errors.Is(err, frontier.ErrInsufficientData):
		return msgNoData
	default:
		return "Frontier failed: " + err.Error()
	}
}

func cacheKey(a FrontierArgs) string {
	return fmt.Sprintf("%s|%s|%s|%d", strings.Join(analysis.NormalizeSymbols(a.Symbols), ","),
		a.Start.Format("2006-01-02"), a.End.Format("2006-01-02"), a.Samples)
}

func (h *Handlers) handleUsage(chatID int64, days int) {
	since := time.Now().AddDate(0, 0, -days).Unix()
	u, err := h.store.Usage(since)
	if err != nil {
		h.reply(chatID, "Usage failed: "+err.Error())
		return
	}
	text := report.UsageText(u, days)
	if len(u.Commands) == 0 {
		h.reply(chatID, text)
		return
	}
	img, err := report.RenderUsagePie(u, days)
	if err != nil {
		h.reply(chatID, "Usage chart failed: "+err.Error())
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: fmt.Sprintf("usage_%dd.png", days), Bytes: img})
	photo.Caption = text
	if _, err := h.api.Send(photo); err != nil {
		h.log.Warn().Err(err).Msg("usage chart send failed")
	}

	if days < 2 {
		return
	}
	series, err := h.store.DailyUsage(since)
	if err != nil {
		h.log.Warn().Err(err).Msg("daily usage query failed")
		return
	}
	trend, err := report.RenderUsageTrend(series, days)
	if err != nil {
		h.log.Warn().Err(err).Msg("usage trend chart failed")
		return
	}
	if _, err := h.api.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: fmt.Sprintf("usage_trend_%dd.png", days), Bytes: trend})); err != nil {
		h.log.Warn().Err(err).Msg("usage trend send failed")
	}
}

func (h *Handlers) handleHelp(chatID int64) {
	help := "Commands\n\n" +
		"- /frontier S1 S2 ... [YYYY-MM-DD YYYY-MM-DD] [n=COUNT] - Sample random portfolios and report the maximum Sharpe ratio weights\n" +
		"- /usage [days] - Command usage over the last N days (default: 7, max: 365)\n" +
		fmt.Sprintf("\nDefaults: %s to %s, n=%d (max %d), risk-free rate %.2f%%. Prices are Yahoo daily adjusted closes.",
			h.defaults.Start.Format("2006-01-02"), h.defaults.End.Format("2006-01-02"),
			h.defaults.Samples, h.defaults.MaxSamples, h.defaults.RiskFreeRate*100)
	h.reply(chatID, help)
}

func (h *Handlers) reply(chatID int64, text string) {
	if _, err := h.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("reply failed")
	}
}
