package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/aretw0/totem/pkg/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🐾 Начать викторину", CallbackStartQuiz)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("ℹ️ О программе опеки", CallbackAbout)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📞 Контакты", CallbackContacts)),
	)
}

func questionMessage(chatID int64, step domain.Step) tgbotapi.MessageConfig {
	q := step.Question
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(q.Options))
	for i, opt := range q.Options {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt.Text, answerData(step.Index, i)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Вопрос %d/%d:\n%s", step.Index+1, step.Total, q.Text))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return msg
}

func resultCaption(brand domain.Brand, c domain.Category) string {
	var sb strings.Builder
	if brand.Title != "" {
		fmt.Fprintf(&sb, "<b>%s</b>\n\n", html.EscapeString(strings.ToUpper(brand.Title)))
	}
	fmt.Fprintf(&sb, "🎉 <b>Ваше тотемное животное - %s!</b>\n\n", html.EscapeString(strings.ToUpper(c.DisplayName())))
	sb.WriteString(html.EscapeString(c.Description))
	if len(c.Traits) > 0 {
		fmt.Fprintf(&sb, "\n\n<b>Характерные черты:</b> %s", html.EscapeString(strings.Join(c.Traits, ", ")))
	}
	if c.SponsorInfo != "" {
		fmt.Fprintf(&sb, "\n\n<b>Стоимость опеки:</b> %s", html.EscapeString(c.SponsorInfo))
	}
	return sb.String()
}

func resultKeyboard(brand domain.Brand) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📢 Поделиться в соцсетях", CallbackShare)),
	}
	if brand.Website != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🛡 Взять под опеку", brand.Website)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔁 Пройти тест заново", CallbackStartQuiz)))
	if brand.Website != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("ℹ️ Все животные программы", brand.Website)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 Назад в главное меню", CallbackMainMenu)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func shareKeyboard(card domain.ShareCard) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Telegram", card.TelegramURL),
			tgbotapi.NewInlineKeyboardButtonURL("VK", card.VKURL),
		),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Назад", CallbackMainMenu)),
	)
}

func (b *Bot) aboutMessage(chatID int64) tgbotapi.MessageConfig {
	brand := b.engine.Quiz().Brand
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 На главную", CallbackMainMenu)),
	}
	if brand.Website != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🛡 Стать опекуном", brand.Website)))
	}

	msg := tgbotapi.NewMessage(chatID, brand.About)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	msg.DisableWebPagePreview = true
	return msg
}

func (b *Bot) contactsMessage(chatID int64) tgbotapi.MessageConfig {
	brand := b.engine.Quiz().Brand

	var sb strings.Builder
	fmt.Fprintf(&sb, "📞 <b>Контакты: %s</b>\n\n", html.EscapeString(brand.Title))
	if brand.OpeningHours != "" {
		fmt.Fprintf(&sb, "🕒 Часы работы: %s\n\n", html.EscapeString(brand.OpeningHours))
	}
	if brand.ContactPhone != "" {
		fmt.Fprintf(&sb, "☎️ Телефон для справок:\n<code>%s</code>\n\n", html.EscapeString(brand.ContactPhone))
	}
	if brand.ContactEmail != "" {
		fmt.Fprintf(&sb, "📧 Электронная почта:\n<code>%s</code>\n\n", html.EscapeString(brand.ContactEmail))
	}
	if brand.Address != "" {
		fmt.Fprintf(&sb, "📍 Адрес:\n%s\n", html.EscapeString(brand.Address))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if strings.HasPrefix(brand.MapsURL, "http") {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🗺️ Открыть карту", brand.MapsURL)))
	}
	if strings.HasPrefix(brand.Website, "http") {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("🌐 Посетить сайт", brand.Website)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏠 На главную", CallbackMainMenu)))

	msg := tgbotapi.NewMessage(chatID, strings.TrimRight(sb.String(), "\n"))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	return msg
}
