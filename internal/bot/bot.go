package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database"
	wdiscord "github.com/wardenhq/warden/internal/discord"
	"github.com/wardenhq/warden/internal/moderation"
	"github.com/wardenhq/warden/internal/setup/config"
)

// Bot wires the Discord gateway client to the moderation dispatcher.
// Slash commands and member events are translated into dispatcher calls;
// the dispatcher owns all validation and persistence.
type Bot struct {
	client     bot.Client
	db         database.Client
	dispatcher *moderation.Dispatcher
	platform   *wdiscord.Platform
	notifier   *wdiscord.Notifier
	audit      *wdiscord.AuditSink
	adminRoles map[uint64]struct{}
	ownerID    uint64
	logger     *zap.Logger
}

// New initializes the bot by creating the Discord client, the platform
// adapters and the dispatcher they feed.
func New(cfg *config.Config, db database.Client, logger *zap.Logger) (*Bot, error) {
	adminRoles := make(map[uint64]struct{}, len(cfg.Bot.AdminRoleIDs))
	for _, id := range cfg.Bot.AdminRoleIDs {
		adminRoles[id] = struct{}{}
	}

	b := &Bot{
		db:         db,
		adminRoles: adminRoles,
		ownerID:    cfg.Bot.OwnerID,
		logger:     logger.Named("bot"),
	}

	client, err := disgo.New(cfg.Bot.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMembers,
				gateway.IntentGuildVoiceStates,
				gateway.IntentGuildMessages,
				gateway.IntentMessageContent,
			),
		),
		bot.WithCacheConfigOpts(
			// Messages stay cached so delete and edit events still
			// carry the original author and content.
			cache.WithCaches(cache.FlagGuilds, cache.FlagVoiceStates, cache.FlagMessages),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnApplicationCommandInteraction: b.handleApplicationCommand,
			OnGuildMemberJoin:               b.handleGuildMemberJoin,
			OnGuildMessageCreate:            b.handleMessageCreate,
			OnGuildMessageDelete:            b.handleMessageDelete,
			OnGuildMessageUpdate:            b.handleMessageUpdate,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	b.client = client
	b.platform = wdiscord.NewPlatform(client, logger)
	b.notifier = wdiscord.NewNotifier(client, logger)
	b.audit = wdiscord.NewAuditSink(client, logger)

	repo := db.Model()
	b.dispatcher = moderation.NewDispatcher(
		b.platform,
		b.notifier,
		b.audit,
		wdiscord.NewRoleAuthorizer(client, &cfg.Bot, logger),
		repo.Warning(),
		repo.Ban(),
		repo.Jail(),
		moderation.NewThresholdStore(moderation.Thresholds{
			MuteCount:    cfg.Escalation.MuteCount,
			MuteDuration: time.Duration(cfg.Escalation.MuteDurationMinutes) * time.Minute,
			BanCount:     cfg.Escalation.BanCount,
		}),
		cfg.Bot.JailedRoleID,
		logger,
	)

	return b, nil
}

// Start registers the global slash commands and opens the gateway.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands")

	_, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), commandDefinitions())
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Starting bot")

	return b.client.OpenGateway(ctx)
}

// Close gracefully shuts down the gateway connection.
func (b *Bot) Close() {
	b.logger.Info("Closing bot")
	b.client.Close(context.Background())
}

// Dispatcher returns the moderation dispatcher, shared with the HTTP API.
func (b *Bot) Dispatcher() *moderation.Dispatcher {
	return b.dispatcher
}

// Platform returns the Discord platform adapter, shared with the scheduler.
func (b *Bot) Platform() moderation.Platform {
	return b.platform
}

// Notifier returns the DM notifier, shared with the scheduler.
func (b *Bot) Notifier() moderation.Notifier {
	return b.notifier
}

// Audit returns the audit sink, shared with the scheduler.
func (b *Bot) Audit() moderation.AuditSink {
	return b.audit
}

// handleGuildMemberJoin re-applies the jailed role when a member who is
// still jailed leaves and rejoins to shed the role.
func (b *Bot) handleGuildMemberJoin(event *events.GuildMemberJoin) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		guildID := uint64(event.GuildID)
		userID := uint64(event.Member.User.ID)

		applied, err := b.dispatcher.ReapplyJail(ctx, guildID, userID)
		if err != nil {
			b.logger.Error("Failed to re-apply jailed role on rejoin",
				zap.Uint64("guildID", guildID),
				zap.Uint64("userID", userID),
				zap.Error(err))

			return
		}

		if applied {
			b.logger.Info("Re-applied jailed role to rejoining member",
				zap.Uint64("guildID", guildID),
				zap.Uint64("userID", userID))
		}
	}()
}
