package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/AdamLukas17/something-sweet/internal/domain"
)

const (
	welcomeFmt = "Welcome to Something Sweet! 💕\n\n" +
		"I'll send you random reminders to do kind things for your significant other.\n\n" +
		"Your current frequency is set to: %s\n\n" +
		"Commands:\n" +
		"/frequency - Change reminder frequency\n" +
		"/pause - Pause reminders\n" +
		"/resume - Resume reminders\n" +
		"/status - Check your settings"

	welcomeBackFmt = "Welcome back! You're already registered.\n\n" +
		"Current frequency: %s\n" +
		"Status: %s\n\n" +
		"Use /frequency to change how often you get reminders.\n" +
		"Use /pause or /resume to control notifications."

	frequencyPrompt     = "How often would you like to receive sweet reminders?"
	frequencyUpdatedFmt = "Frequency updated to: %s\n\nYour next reminder is scheduled for %s."

	pausedText = "Reminders paused. Use /resume when you're ready to continue."
	resumedFmt = "Reminders resumed! You'll get your next reminder soon.\n\nFrequency: %s"

	statusFmt = "Your Something Sweet Settings:\n\n" +
		"Frequency: %s\n" +
		"Status: %s\n" +
		"Next reminder: %s\n" +
		"Member since: %s"

	helpText = "Something Sweet - Relationship Reminder Bot\n\n" +
		"Commands:\n" +
		"/start - Register or see welcome message\n" +
		"/frequency - Change how often you get reminders\n" +
		"/pause - Temporarily stop reminders\n" +
		"/resume - Start getting reminders again\n" +
		"/status - Check your current settings\n" +
		"/test - Get a random sweet idea now\n" +
		"/help - Show this help message\n\n" +
		"I'll send you random ideas for sweet things to do for your partner!"

	unknownText       = "Unknown command. Use /help to see available commands."
	registerFirstText = "Please use /start first to register."
	notRegisteredText = "You are not registered yet. Use /start to begin."
	apologyText       = "Something went wrong. Please try again later."
)

// frequencyKeyboard lists the five cadences, one per row, with callback
// data "freq_<key>".
func frequencyKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(domain.Frequencies()))
	for _, f := range domain.Frequencies() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.Label(), "freq_"+string(f)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
