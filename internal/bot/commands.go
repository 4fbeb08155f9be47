package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"dialoguebot/internal/dialogue"
)

// commandsMenuButton is the MenuButton object that shows the bot's command list.
const commandsMenuButton = `{"type":"commands"}`

// RegisterCommands publishes the supported commands to Telegram.
func (b *Bot) RegisterCommands() error {
	cmds := make([]tgbotapi.BotCommand, 0, len(dialogue.Commands))
	for _, c := range dialogue.Commands {
		cmds = append(cmds, tgbotapi.BotCommand{Command: string(c.Command), Description: c.Description})
	}

	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(cmds...)); err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	b.logger.Info("Bot commands registered", zap.Int("count", len(cmds)))
	return nil
}

// showCommandsMenu switches the chat's menu button to the command list.
func (b *Bot) showCommandsMenu(logger *zap.Logger, chatID int64) {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params["menu_button"] = commandsMenuButton

	if _, err := b.api.MakeRequest("setChatMenuButton", params); err != nil {
		errorsTotal.WithLabelValues("menu_button").Inc()
		logger.Warn("Failed to set chat menu button", zap.Error(err))
	}
}
