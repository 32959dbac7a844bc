package discord

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/moderation"
	"github.com/wardenhq/warden/internal/setup/config"
)

// RoleAuthorizer authorizes moderation actions against a configured
// role allowlist. The bot owner, if configured, bypasses role checks.
// All actions share one allowlist rather than scattering per-command
// role checks.
type RoleAuthorizer struct {
	client         bot.Client
	moderatorRoles map[uint64]struct{}
	ownerID        uint64
	logger         *zap.Logger
}

// NewRoleAuthorizer creates an authorizer from bot configuration.
func NewRoleAuthorizer(client bot.Client, cfg *config.Bot, logger *zap.Logger) *RoleAuthorizer {
	roles := make(map[uint64]struct{}, len(cfg.ModeratorRoleIDs))
	for _, id := range cfg.ModeratorRoleIDs {
		roles[id] = struct{}{}
	}

	return &RoleAuthorizer{
		client:         client,
		moderatorRoles: roles,
		ownerID:        cfg.OwnerID,
		logger:         logger.Named("authorizer"),
	}
}

// Authorize allows the action when the issuer holds a moderator role or
// is the bot owner.
func (a *RoleAuthorizer) Authorize(ctx context.Context, guildID, moderatorID uint64, action moderation.Action) error {
	if a.ownerID != 0 && moderatorID == a.ownerID {
		return nil
	}

	member, err := a.client.Rest().GetMember(snowflake.ID(guildID), snowflake.ID(moderatorID), rest.WithCtx(ctx))
	if err != nil {
		return moderation.Internal(fmt.Sprintf("failed to resolve issuer %d", moderatorID), err)
	}

	for _, roleID := range member.RoleIDs {
		if _, ok := a.moderatorRoles[uint64(roleID)]; ok {
			return nil
		}
	}

	a.logger.Debug("Authorization denied",
		zap.Uint64("moderatorID", moderatorID),
		zap.String("action", string(action)))

	return moderation.NewActionError(moderation.CodeForbidden, "you don't have permission to use this command")
}
