package discord

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

// Notifier delivers direct messages to users. Delivery is best-effort;
// users with closed DMs simply never receive the notification.
type Notifier struct {
	client bot.Client
	logger *zap.Logger
}

// NewNotifier creates a DM notifier.
func NewNotifier(client bot.Client, logger *zap.Logger) *Notifier {
	return &Notifier{
		client: client,
		logger: logger.Named("notifier"),
	}
}

// NotifyUser opens a DM channel with the user and sends the message.
func (n *Notifier) NotifyUser(ctx context.Context, userID uint64, message string) error {
	channel, err := n.client.Rest().CreateDMChannel(snowflake.ID(userID), rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", err)
	}

	_, err = n.client.Rest().CreateMessage(channel.ID(), discord.NewMessageCreateBuilder().
		SetContent(message).
		Build(), rest.WithCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to send DM: %w", err)
	}

	return nil
}
