// Package telegram is the chat transport: it receives document messages,
// feeds them to the archive pipeline and renders the outcome back into the
// chat. All pipeline semantics live below it; this layer is I/O glue.
package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ivang/receipt-archive/internal/archive"
	"github.com/ivang/receipt-archive/internal/receipt"
	"github.com/ivang/receipt-archive/internal/storage"
)

const (
	retryCallback     = "Retry"
	getSourceCallback = "GetSource"
)

// Config holds the transport settings.
type Config struct {
	Token         string
	AcceptedUsers []int64
}

// Bot is the long-polling Telegram front end.
type Bot struct {
	client   *bot.Bot
	service  *archive.Service
	accepted map[int64]bool
}

// New creates the bot and registers its update handler.
func New(cfg Config, service *archive.Service) (*Bot, error) {
	b := &Bot{
		service:  service,
		accepted: make(map[int64]bool, len(cfg.AcceptedUsers)),
	}
	for _, id := range cfg.AcceptedUsers {
		b.accepted[id] = true
	}

	client, err := bot.New(cfg.Token, bot.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("creating telegram client: %w", err)
	}
	b.client = client
	return b, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.client.Start(ctx)
}

func (b *Bot) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("update handling failed", "panic", r)
		}
	}()

	switch {
	case update.Message != nil && update.Message.ReplyToMessage != nil && update.Message.Text != "":
		b.handleTagEdit(ctx, update.Message)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *models.Message) {
	if msg.From == nil || !b.accepted[msg.From.ID] {
		return
	}
	doc := msg.Document
	if doc == nil || doc.FileName == "" {
		return
	}

	slog.Info("document received", "name", doc.FileName, "from", msg.From.ID)

	data, err := b.download(ctx, doc.FileID)
	if err != nil {
		slog.Error("downloading document", "name", doc.FileName, "error", err)
		b.replyError(ctx, msg, "Unknown error.")
		return
	}

	content := receipt.NewContent(doc.FileName, data)
	outcome := b.service.Process(ctx, content)

	switch outcome.Status {
	case receipt.StatusUnrecognizedFormat:
		b.replyError(ctx, msg, "Unrecognized file format.")
	case receipt.StatusUnknownError:
		b.replyError(ctx, msg, "Unknown error.")
	case receipt.StatusOK:
		b.replySuccess(ctx, msg, content, outcome)
	}

	slog.Info("document completed", "name", doc.FileName)
}

func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.client.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("fetching file info: %w", err)
	}

	resp, err := http.Get(b.client.FileDownloadLink(file))
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading file body: %w", err)
	}
	return data, nil
}

func (b *Bot) replyError(ctx context.Context, msg *models.Message, text string) {
	_, err := b.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		Text:            text,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
		ReplyMarkup:     retryKeyboard(),
	})
	if err != nil {
		slog.Error("sending error reply", "error", err)
	}
}

func (b *Bot) replySuccess(ctx context.Context, msg *models.Message, content receipt.Content, outcome archive.Outcome) {
	text := renderRecord(*outcome.Record)

	params := &bot.SendMessageParams{
		ChatID:      msg.Chat.ID,
		Text:        text + "\n_Processing_",
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: sourceKeyboard(),
	}
	// Replying to the correlated record's message surfaces the link in
	// the chat history.
	if outcome.Linked != nil && outcome.Linked.ExternalID != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: int(outcome.Linked.ExternalID)}
	}

	sent, err := b.client.SendMessage(ctx, params)
	if err != nil {
		slog.Error("sending receipt reply", "name", outcome.FileName, "error", err)
		return
	}

	record := *outcome.Record
	record.ExternalID = int64(sent.ID)
	if outcome.Linked != nil {
		linkedID := outcome.Linked.ExternalID
		record.LinkedExternalID = &linkedID
	}

	user := receipt.User{ID: msg.From.ID, Name: msg.From.Username}
	if err := b.service.Store(ctx, content.WithName(outcome.FileName), record, user); err != nil {
		slog.Error("storing receipt", "name", outcome.FileName, "error", err)
	}

	_, err = b.client.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   sent.ID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: sourceKeyboard(),
	})
	if err != nil {
		slog.Error("finalizing receipt reply", "error", err)
	}

	_, err = b.client.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
	})
	if err != nil {
		slog.Error("deleting source message", "error", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *models.CallbackQuery) {
	defer func() {
		_, err := b.client.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callback.ID,
		})
		if err != nil {
			slog.Error("answering callback", "error", err)
		}
	}()

	msg := callback.Message.Message
	if msg == nil {
		return
	}

	switch callback.Data {
	case retryCallback:
		if msg.ReplyToMessage != nil {
			b.handleMessage(ctx, msg.ReplyToMessage)
		}
	case getSourceCallback:
		b.sendSource(ctx, msg)
	}
}

func (b *Bot) sendSource(ctx context.Context, msg *models.Message) {
	content, err := b.service.SourceByExternalID(ctx, int64(msg.ID))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("fetching source document", "message_id", msg.ID, "error", err)
		}
		_, err := b.client.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:          msg.Chat.ID,
			Text:            "Source not found",
			ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
		})
		if err != nil {
			slog.Error("sending source reply", "error", err)
		}
		return
	}

	_, err = b.client.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: msg.Chat.ID,
		Document: &models.InputFileUpload{
			Filename: content.Name(),
			Data:     bytes.NewReader(content.Data()),
		},
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		slog.Error("sending source document", "error", err)
	}
}

func (b *Bot) handleTagEdit(ctx context.Context, msg *models.Message) {
	if msg.From == nil || !b.accepted[msg.From.ID] {
		return
	}
	target := msg.ReplyToMessage
	if target.Text == "" {
		return
	}

	slog.Info("tag edit requested", "message_id", target.ID)

	_, err := b.client.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   target.ID,
		Text:        mergeTags(target.Text, parseTags(msg.Text)),
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: sourceKeyboard(),
	})
	if err != nil {
		slog.Error("editing tags", "message_id", target.ID, "error", err)
		return
	}

	_, err = b.client.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
	})
	if err != nil {
		slog.Error("deleting tag message", "error", err)
	}
}

func retryKeyboard() models.ReplyMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Retry", CallbackData: retryCallback}},
		},
	}
}

func sourceKeyboard() models.ReplyMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "Get Source", CallbackData: getSourceCallback}},
		},
	}
}
