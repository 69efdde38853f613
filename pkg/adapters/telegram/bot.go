// Package telegram runs the quiz as a Telegram bot with inline keyboards.
package telegram

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aretw0/totem/internal/logging"
	"github.com/aretw0/totem/pkg/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data values carried by inline buttons.
// Answer buttons carry CallbackAnswerPrefix + "<question>_<option>".
const (
	CallbackStartQuiz    = "start_quiz"
	CallbackAnswerPrefix = "ans_"
	CallbackShare        = "share_result"
	CallbackAbout        = "about"
	CallbackContacts     = "show_contacts"
	CallbackMainMenu     = "main_menu"
)

// Engine defines the quiz operations the bot drives.
type Engine interface {
	StartSession(ctx context.Context, userID string) (domain.Step, error)
	CurrentQuestion(ctx context.Context, userID string) (domain.Step, error)
	SubmitAnswerAt(ctx context.Context, userID string, questionIndex, option int) (domain.Step, error)
	Result(ctx context.Context, userID string) (domain.Category, error)
	Share(ctx context.Context, userID, botUsername string) (domain.ShareCard, error)
	Quiz() *domain.Quiz
}

// Sender is the subset of *tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot translates Telegram updates into engine calls.
type Bot struct {
	engine    Engine
	api       Sender
	username  string
	assetsDir string
	logger    *slog.Logger
}

// Option configures a Bot.
type Option func(*Bot)

// WithUsername sets the bot username used in share links.
func WithUsername(name string) Option {
	return func(b *Bot) {
		b.username = name
	}
}

// WithAssetsDir resolves relative image paths of the catalog against dir.
func WithAssetsDir(dir string) Option {
	return func(b *Bot) {
		b.assetsDir = dir
	}
}

// WithLogger sets the bot logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// New creates a Bot.
func New(engine Engine, api Sender, opts ...Option) *Bot {
	b := &Bot{
		engine: engine,
		api:    api,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Connect authorises against the Bot API with token.
func Connect(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug
	return api, nil
}

// RegisterCommands publishes the command menu.
func (b *Bot) RegisterCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Запустить бота"},
		tgbotapi.BotCommand{Command: "quiz", Description: "Пройти викторину"},
		tgbotapi.BotCommand{Command: "share", Description: "Поделиться результатом"},
		tgbotapi.BotCommand{Command: "contact", Description: "Связаться с сотрудником"},
	)
	_, err := b.api.Request(cfg)
	return err
}

// Run handles updates until ctx is cancelled or the channel is closed.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches a single update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := userKey(msg.From, chatID)

	switch msg.Command() {
	case "start":
		if _, err := b.engine.StartSession(ctx, userID); err != nil {
			b.fail(chatID, "start", err)
			return
		}
		b.sendMainMenu(chatID)
	case "quiz":
		b.startQuiz(ctx, chatID, userID)
	case "share":
		b.shareResult(ctx, chatID, userID)
	case "contact":
		b.send(b.contactsMessage(chatID))
	default:
		b.send(tgbotapi.NewMessage(chatID, "Неизвестная команда"))
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("Error answering callback", "error", err)
	}
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}

	chatID := callback.Message.Chat.ID
	userID := userKey(callback.From, chatID)
	data := callback.Data

	switch {
	case data == CallbackStartQuiz:
		b.startQuiz(ctx, chatID, userID)
	case strings.HasPrefix(data, CallbackAnswerPrefix):
		b.handleAnswer(ctx, chatID, userID, strings.TrimPrefix(data, CallbackAnswerPrefix))
	case data == CallbackShare:
		b.shareResult(ctx, chatID, userID)
	case data == CallbackAbout:
		b.send(b.aboutMessage(chatID))
	case data == CallbackContacts:
		b.send(b.contactsMessage(chatID))
	case data == CallbackMainMenu:
		b.sendMainMenu(chatID)
	default:
		b.send(tgbotapi.NewMessage(chatID, "Неизвестная команда"))
	}
}

func (b *Bot) startQuiz(ctx context.Context, chatID int64, userID string) {
	step, err := b.engine.StartSession(ctx, userID)
	if err != nil {
		b.fail(chatID, "start quiz", err)
		return
	}
	b.sendStep(ctx, chatID, userID, step)
}

func answerData(question, option int) string {
	return CallbackAnswerPrefix + strconv.Itoa(question) + "_" + strconv.Itoa(option)
}

// parseAnswer decodes "<question>_<option>". Malformed data yields -1s,
// which the engine rejects as an invalid option.
func parseAnswer(raw string) (question, option int) {
	q, o, found := strings.Cut(raw, "_")
	if !found {
		return -1, -1
	}
	question, err := strconv.Atoi(q)
	if err != nil {
		return -1, -1
	}
	option, err = strconv.Atoi(o)
	if err != nil {
		return -1, -1
	}
	return question, option
}

// handleAnswer pins the answer to the question its button was shown for,
// so a double tap or a tap on an old message cannot answer a later question.
func (b *Bot) handleAnswer(ctx context.Context, chatID int64, userID, raw string) {
	question, option := parseAnswer(raw)
	step, err := b.engine.SubmitAnswerAt(ctx, userID, question, option)
	switch {
	case err == nil:
		b.sendStep(ctx, chatID, userID, step)
	case errors.Is(err, domain.ErrUnknownSession):
		b.startQuiz(ctx, chatID, userID)
	case errors.Is(err, domain.ErrInvalidOption):
		b.logger.Debug("Stale or invalid answer, re-asking", "user_id", userID, "data", raw)
		current, err := b.engine.CurrentQuestion(ctx, userID)
		if err != nil {
			b.fail(chatID, "current question", err)
			return
		}
		b.sendStep(ctx, chatID, userID, current)
	default:
		b.fail(chatID, "submit answer", err)
	}
}

func (b *Bot) sendStep(ctx context.Context, chatID int64, userID string, step domain.Step) {
	if !step.Completed {
		b.send(questionMessage(chatID, step))
		return
	}

	c, err := b.engine.Result(ctx, userID)
	if err != nil {
		b.fail(chatID, "result", err)
		return
	}
	b.sendResult(chatID, c)
}

func (b *Bot) sendResult(chatID int64, c domain.Category) {
	caption := resultCaption(b.engine.Quiz().Brand, c)

	sent := false
	if path, ok := b.asset(c.Image); ok {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(photo); err != nil {
			b.logger.Error("Error sending result photo", "path", path, "error", err)
		} else {
			sent = true
		}
	} else if c.Image != "" {
		b.logger.Warn("Result image not found", "path", c.Image)
	}
	if !sent {
		msg := tgbotapi.NewMessage(chatID, caption)
		msg.ParseMode = tgbotapi.ModeHTML
		b.send(msg)
	}

	msg := tgbotapi.NewMessage(chatID, "Хотите поддержать своего тотемного животного?")
	msg.ReplyMarkup = resultKeyboard(b.engine.Quiz().Brand)
	b.send(msg)
}

func (b *Bot) shareResult(ctx context.Context, chatID int64, userID string) {
	card, err := b.engine.Share(ctx, userID, b.username)
	if errors.Is(err, domain.ErrUnknownSession) || errors.Is(err, domain.ErrNoTraitsRecorded) {
		b.send(tgbotapi.NewMessage(chatID, "Сначала пройдите викторину!"))
		return
	}
	if err != nil {
		b.fail(chatID, "share", err)
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Выберите соцсеть для публикации:")
	msg.ReplyMarkup = shareKeyboard(card)
	b.send(msg)
}

func (b *Bot) sendMainMenu(chatID int64) {
	brand := b.engine.Quiz().Brand
	if path, ok := b.asset(brand.LogoPath); ok {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
		photo.Caption = brand.Welcome
		photo.ReplyMarkup = mainMenuKeyboard()
		_, err := b.api.Send(photo)
		if err == nil {
			return
		}
		b.logger.Error("Error sending logo", "path", path, "error", err)
	}
	msg := tgbotapi.NewMessage(chatID, brand.Welcome)
	msg.ReplyMarkup = mainMenuKeyboard()
	b.send(msg)
}

// asset reports the resolved path of a catalog image if the file exists.
func (b *Bot) asset(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if !filepath.IsAbs(path) && b.assetsDir != "" {
		path = filepath.Join(b.assetsDir, path)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("Error sending message", "error", err)
	}
}

func (b *Bot) fail(chatID int64, op string, err error) {
	b.logger.Error("Bot operation failed", "op", op, "chat_id", chatID, "error", err)
	b.send(tgbotapi.NewMessage(chatID, "⚠️ Произошла ошибка. Пожалуйста, попробуйте позже."))
}

// userKey identifies a player by their Telegram user id, falling back to the chat.
func userKey(from *tgbotapi.User, chatID int64) string {
	if from != nil {
		return strconv.FormatInt(from.ID, 10)
	}
	return strconv.FormatInt(chatID, 10)
}
