package keyboard

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const buttonsPerRow = 2

// Builder creates inline keyboards
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// StartKeyboard creates the initial start button
func (b *Builder) StartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🩺 Start survey", EncodeCallback(ActionStart, "start")),
		),
	)
}

// OptionsKeyboard turns quick-reply options into buttons that submit the option text.
// Options too long for callback data are left out; the user can still type them.
// Returns nil when no option fits.
func (b *Builder) OptionsKeyboard(options []string) *tgbotapi.InlineKeyboardMarkup {
	var (
		rows [][]tgbotapi.InlineKeyboardButton
		row  []tgbotapi.InlineKeyboardButton
	)
	for _, option := range options {
		data := EncodeCallback(ActionAnswer, option)
		if len(data) > maxCallbackBytes {
			continue
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(option, data))
		if len(row) == buttonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// ConfirmCancelKeyboard asks to confirm abandoning the survey
func (b *Builder) ConfirmCancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Yes, stop", EncodeCallback(ActionConfirm, "cancel")),
			tgbotapi.NewInlineKeyboardButtonData("❌ No, continue", EncodeCallback(ActionConfirm, "continue")),
		),
	)
}

// ExportKeyboard offers the answer sheet downloads after completion
func (b *Builder) ExportKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 PDF", EncodeCallback(ActionExport, "pdf")),
			tgbotapi.NewInlineKeyboardButtonData("📝 DOCX", EncodeCallback(ActionExport, "docx")),
			tgbotapi.NewInlineKeyboardButtonData("📋 Markdown", EncodeCallback(ActionExport, "markdown")),
		),
	)
}
