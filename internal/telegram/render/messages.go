package render

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

const (
	MsgWelcome = `👋 Welcome! I run a short healthcare experience survey in English, Español, हिंदी, 中文 or Français.

Tap the button below or send /survey to begin.`

	MsgHelp = `🤖 Commands:

/start - Show the welcome message
/survey - Start a new survey
/cancel - Stop the current survey
/help - Show this help

Answer each question in your own words or tap one of the suggested options.`

	MsgCompleted = `✅ You can download a copy of your answers:`

	MsgConfirmCancel = `⚠️ Are you sure? Your answers so far will be discarded.`

	MsgSessionCancelled = `👋 Survey stopped. Send /survey to begin a new one.`

	HintRestart = `Send /survey to take it again.`

	MsgContinue = `👍 Let's continue. Just answer the last question.`

	ErrNoSession       = `❌ No active survey. Send /survey to begin.`
	ErrUnknownCommand  = `❌ Unknown command. Send /help to see what I can do.`
	ErrGeneric         = `❌ Something went wrong. Please try again or send /survey.`
	ErrSessionNotFound = `❌ Your survey has expired. Send /survey to begin a new one.`
	ErrCompleted       = `✅ This survey is already complete. ` + HintRestart
	ErrNotCompleted    = `❌ Answers become available once the survey is complete.`
	ErrInvalidInput    = `❌ I couldn't read that message. Please answer with text.`
	ErrNetworkIssue    = `❌ Connection problem. Please try again in a moment.`
	ErrTimeout         = `❌ That took too long. Please try again.`
	ErrRateLimited     = `⚠️ Too many messages. Please wait a little before sending more.`
)

// ClassifyError maps infrastructure failures to a user-facing message
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		strings.Contains(err.Error(), "connection refused") {
		return ErrNetworkIssue
	}

	return ErrGeneric
}
