package telegram

import (
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type Bot struct {
	h   *Handlers
	log zerolog.Logger
}

// Connect logs in to the Bot API and registers webhookURL. The returned API is the
// Sender for NewHandlers.
func Connect(token, webhookURL string, log zerolog.Logger) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	webhook, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, err
	}
	if _, err := api.Request(webhook); err != nil {
		return nil, err
	}
	log.Info().Str("url", webhookURL).Str("bot", api.Self.UserName).Msg("telegram webhook set")
	return api, nil
}

func NewBot(h *Handlers, log zerolog.Logger) *Bot {
	return &Bot{h: h, log: log}
}

// WebhookHandler decodes one update and handles it in the background.
func (b *Bot) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	if update.Message == nil {
		b.log.Debug().Int("update_id", update.UpdateID).Msg("non-message update received")
		w.WriteHeader(http.StatusOK)
		return
	}
	ev := b.log.Debug().Int64("chat_id", update.Message.Chat.ID).Str("text", update.Message.Text)
	if update.Message.From != nil {
		ev = ev.Int64("from", update.Message.From.ID)
	}
	ev.Msg("webhook")
	go b.h.HandleMessage(update.Message)
	w.WriteHeader(http.StatusOK)
}
