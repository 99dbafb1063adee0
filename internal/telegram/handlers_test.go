package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frontierBot/internal/analysis"
	"frontierBot/internal/finance"
	"frontierBot/internal/frontier"
	"frontierBot/internal/logging"
	"frontierBot/internal/storage"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) texts() []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) count(match func(tgbotapi.Chattable) bool) int {
	n := 0
	for _, c := range f.sent {
		if match(c) {
			n++
		}
	}
	return n
}

type failingSender struct{ calls int }

func (f *failingSender) Send(tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.calls++
	return tgbotapi.Message{}, errors.New("telegram down")
}

type fakeRunner struct {
	err   error
	calls int
	req   analysis.Request
}

func (f *fakeRunner) Run(_ context.Context, req analysis.Request) (*analysis.Analysis, error) {
	f.calls++
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	stats := &frontier.AssetReturnStats{
		Symbols:      analysis.NormalizeSymbols(req.Symbols),
		MeanReturns:  []float64{0.0007, 0.0003},
		Covariance:   [][]float64{{0.0003, 0.00005}, {0.00005, 0.0001}},
		Observations: 250,
	}
	res, err := frontier.Simulate(stats, req.Samples, req.RiskFreeRate, frontier.Options{
		Rand:     rand.New(rand.NewSource(1)),
		Progress: req.Progress,
	})
	if err != nil {
		return nil, err
	}
	return &analysis.Analysis{Symbols: stats.Symbols, Start: req.Start, End: req.End, Days: 251, Stats: stats, Result: res}, nil
}

type fakeStore struct {
	commands []string
	usage    *storage.Usage
}

func (f *fakeStore) RecordCommand(_, _ int64, command string, _ int64) error {
	f.commands = append(f.commands, command)
	return nil
}

func (f *fakeStore) Usage(int64) (*storage.Usage, error) { return f.usage, nil }

func (f *fakeStore) DailyUsage(int64) (map[string][]storage.DayCount, error) {
	out := map[string][]storage.DayCount{}
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for cmd, s := range f.usage.Commands {
		out[cmd] = []storage.DayCount{{Day: day, Count: s.Count}}
	}
	return out, nil
}

type fakeCommentator struct{ text string }

func (f fakeCommentator) Comment(context.Context, string) (string, error) { return f.text, nil }

func message(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: 42},
		From: &tgbotapi.User{ID: 7},
		Date: int(time.Now().Unix()),
	}
}

func newTestHandlers(r Runner, c Commentator) (*Handlers, *fakeSender, *fakeStore) {
	s := &fakeSender{}
	st := &fakeStore{usage: &storage.Usage{Commands: map[string]*storage.UsageStats{}}}
	return NewHandlers(s, st, r, c, testDefaults, logging.Nop()), s, st
}

func isPhoto(c tgbotapi.Chattable) bool { _, ok := c.(tgbotapi.PhotoConfig); return ok }

func isEdit(c tgbotapi.Chattable) bool { _, ok := c.(tgbotapi.EditMessageTextConfig); return ok }

func TestFrontier_TooFewSymbols(t *testing.T) {
	r := &fakeRunner{}
	h, s, st := newTestHandlers(r, nil)

	h.HandleMessage(message("/frontier AAPL aapl"))

	assert.Equal(t, []string{msgTooFewSymbols}, s.texts())
	assert.Zero(t, r.calls)
	assert.Equal(t, []string{"frontier"}, st.commands)
}

func TestFrontier_NoData(t *testing.T) {
	for _, err := range []error{
		fmt.Errorf("failed to fetch prices: %w", fmt.Errorf("ZZZZ: %w", finance.ErrNoData)),
		fmt.Errorf("failed to fetch prices: %w", finance.ErrNotFound),
		fmt.Errorf("failed to estimate returns: %w", frontier.ErrInsufficientData),
	} {
		h, s, _ := newTestHandlers(&fakeRunner{err: err}, nil)
		h.HandleMessage(message("/frontier AAPL ZZZZ"))
		texts := s.texts()
		require.NotEmpty(t, texts)
		assert.Equal(t, msgNoData, texts[len(texts)-1])
	}
}

func TestFrontier_OtherError(t *testing.T) {
	h, s, _ := newTestHandlers(&fakeRunner{err: errors.New("boom")}, nil)
	h.HandleMessage(message("/frontier AAPL MSFT"))
	texts := s.texts()
	assert.Equal(t, "Frontier failed: boom", texts[len(texts)-1])
}

func TestFrontier_Success(t *testing.T) {
	r := &fakeRunner{}
	h, s, _ := newTestHandlers(r, fakeCommentator{text: "Looks balanced."})

	h.HandleMessage(message("/frontier AAPL MSFT 2015-01-01 2020-01-01 n=400"))

	require.Equal(t, 1, r.calls)
	assert.Equal(t, 400, r.req.Samples)
	assert.Equal(t, 0.0175, r.req.RiskFreeRate)
	assert.Equal(t, day("2015-01-01"), r.req.Start)

	assert.Equal(t, 3, s.count(isPhoto))
	assert.Equal(t, 4, s.count(isEdit), "one edit per quarter")

	texts := s.texts()
	require.Len(t, texts, 3)
	assert.Contains(t, texts[0], "Sampling 400 portfolios for AAPL, MSFT")
	assert.Contains(t, texts[1], "Optimal Portfolio Weights for Maximum Sharpe Ratio:")
	assert.Equal(t, "Looks balanced.", texts[2])
}

func TestFrontier_SingleSample(t *testing.T) {
	r := &fakeRunner{}
	h, s, _ := newTestHandlers(r, nil)

	h.HandleMessage(message("/frontier AAPL MSFT n=1"))

	require.Equal(t, 1, r.calls)
	assert.Equal(t, 1, r.req.Samples)
	assert.Equal(t, 3, s.count(isPhoto))
	for _, text := range s.texts() {
		assert.NotContains(t, text, "Chart failed")
	}
}

func TestSendFailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	sender := &failingSender{}
	st := &fakeStore{usage: &storage.Usage{Commands: map[string]*storage.UsageStats{"help": {Count: 1, Users: 1}}, Users: 1}}
	h := NewHandlers(sender, st, &fakeRunner{}, nil, testDefaults, logging.New("info", "json", &buf))

	h.HandleMessage(message("/help"))
	h.HandleMessage(message("/usage 1"))

	assert.Equal(t, 2, sender.calls)
	out := buf.String()
	assert.Contains(t, out, `"message":"reply failed"`)
	assert.Contains(t, out, `"message":"usage chart send failed"`)
	assert.Contains(t, out, "telegram down")
}

func TestFrontier_RepeatServedFromCache(t *testing.T) {
	r := &fakeRunner{}
	h, s, _ := newTestHandlers(r, nil)

	h.HandleMessage(message("/frontier AAPL MSFT n=200"))
	h.HandleMessage(message("/frontier aapl msft n=200"))

	assert.Equal(t, 1, r.calls)
	assert.Equal(t, 6, s.count(isPhoto))
}

func TestUsage_Empty(t *testing.T) {
	h, s, st := newTestHandlers(&fakeRunner{}, nil)
	h.HandleMessage(message("/usage 3"))
	assert.Equal(t, []string{"No usage data available for the specified period."}, s.texts())
	assert.Equal(t, []string{"usage"}, st.commands)
}

func TestUsage_Charts(t *testing.T) {
	h, s, _ := newTestHandlers(&fakeRunner{}, nil)
	h.store.(*fakeStore).usage = &storage.Usage{
		Commands: map[string]*storage.UsageStats{"frontier": {Count: 5, Users: 2}},
		Users:    2,
	}
	h.HandleMessage(message("/usage 30"))

	require.Equal(t, 2, s.count(isPhoto))
	pie := s.sent[0].(tgbotapi.PhotoConfig)
	assert.Equal(t, "Usage (30 days): 5 commands from 2 users\n/frontier: 5 (100.0%), 2 users", pie.Caption)
}

func TestHelp(t *testing.T) {
	h, s, st := newTestHandlers(&fakeRunner{}, nil)
	h.HandleMessage(message("/start"))
	texts := s.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "/frontier S1 S2")
	assert.Contains(t, texts[0], "Defaults: 2000-01-01 to 2023-06-30, n=10000 (max 50000), risk-free rate 1.75%")
	assert.Equal(t, []string{"help"}, st.commands)
}

func TestIgnoresPlainText(t *testing.T) {
	h, s, st := newTestHandlers(&fakeRunner{}, nil)
	h.HandleMessage(message("hello there"))
	assert.Empty(t, s.sent)
	assert.Empty(t, st.commands)
}
