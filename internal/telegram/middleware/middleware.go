package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Next handles an update after a middleware is done with it
type Next func(tgbotapi.Update)

// Notify tells a chat about a problem handled by a middleware
type Notify func(chatID int64, text string)

// origin returns the user and chat an update came from
func origin(update tgbotapi.Update) (userID, chatID int64, kind string) {
	switch {
	case update.Message != nil:
		if update.Message.From != nil {
			userID = update.Message.From.ID
		}
		chatID = update.Message.Chat.ID
		kind = "text"
		if update.Message.IsCommand() {
			kind = "command"
		} else if update.Message.Text == "" {
			kind = "other"
		}
	case update.CallbackQuery != nil:
		userID = update.CallbackQuery.From.ID
		if update.CallbackQuery.Message != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
		kind = "callback"
	}
	return userID, chatID, kind
}
