package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database/types"
)

const (
	// BanPurgeWindow is the retroactive message deletion window applied
	// as part of the act of banning, fixed by the platform at 7 days.
	BanPurgeWindow = 7 * 24 * time.Hour

	// BulkDeleteMaxAge is the platform limit on bulk message deletion.
	// Older messages are skipped and reported separately.
	BulkDeleteMaxAge = 14 * 24 * time.Hour

	bulkDeleteBatchSize = 100
)

// Dispatcher validates and executes moderation actions. It is the only
// writer of sanction records and is safe for concurrent use; both the
// command front-end and the HTTP API call Execute directly.
type Dispatcher struct {
	platform     Platform
	notifier     Notifier
	audit        AuditSink
	auth         Authorizer
	warnings     WarningStore
	bans         BanStore
	jails        JailStore
	thresholds   *ThresholdStore
	jailedRoleID uint64
	logger       *zap.Logger
}

// NewDispatcher creates a dispatcher with its capability dependencies.
func NewDispatcher(
	platform Platform,
	notifier Notifier,
	audit AuditSink,
	auth Authorizer,
	warnings WarningStore,
	bans BanStore,
	jails JailStore,
	thresholds *ThresholdStore,
	jailedRoleID uint64,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		platform:     platform,
		notifier:     notifier,
		audit:        audit,
		auth:         auth,
		warnings:     warnings,
		bans:         bans,
		jails:        jails,
		thresholds:   thresholds,
		jailedRoleID: jailedRoleID,
		logger:       logger.Named("dispatcher"),
	}
}

// Thresholds returns the runtime-mutable escalation thresholds.
func (d *Dispatcher) Thresholds() *ThresholdStore {
	return d.thresholds
}

// JailedRoleID returns the role applied to jailed members.
func (d *Dispatcher) JailedRoleID() uint64 {
	return d.jailedRoleID
}

// ReapplyJail puts the jailed role back on a member who left and
// rejoined while still jailed. Returns false when the member has no
// jail record; a store failure is an error, not a clean miss.
func (d *Dispatcher) ReapplyJail(ctx context.Context, guildID, userID uint64) (bool, error) {
	if _, err := d.jails.GetRecord(ctx, userID, guildID); err != nil {
		if errors.Is(err, types.ErrJailRecordNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("failed to check jail record: %w", err)
	}

	if err := d.platform.AddRole(ctx, guildID, userID, d.jailedRoleID); err != nil {
		return false, fmt.Errorf("failed to re-apply jailed role: %w", err)
	}

	return true, nil
}

// Execute runs a single action against a target. Every call, success or
// failure, emits exactly one audit event for the action itself; audit
// failures are logged and never surface to the caller.
func (d *Dispatcher) Execute(ctx context.Context, action Action, req *Request) (*Result, error) {
	result, err := d.dispatch(ctx, action, req)

	event := &AuditEvent{
		Action:      action,
		GuildID:     req.GuildID,
		UserID:      req.UserID,
		ModeratorID: req.ModeratorID,
		Reason:      req.Reason,
		Timestamp:   time.Now(),
	}

	if err != nil {
		event.Detail = AsActionError(err).Message
	} else {
		event.Success = true
		event.Detail = result.Message
	}

	if auditErr := d.audit.Emit(ctx, event); auditErr != nil {
		d.logger.Warn("Failed to emit audit event",
			zap.String("action", string(action)),
			zap.Uint64("guildID", req.GuildID),
			zap.Error(auditErr))
	}

	return result, err
}

func (d *Dispatcher) dispatch(ctx context.Context, action Action, req *Request) (*Result, error) {
	if err := d.auth.Authorize(ctx, req.GuildID, req.ModeratorID, action); err != nil {
		return nil, err
	}

	switch action {
	case ActionBan:
		return d.ban(ctx, req)
	case ActionUnban:
		return d.unban(ctx, req)
	case ActionKick:
		return d.kick(ctx, req)
	case ActionMute:
		return d.mute(ctx, req)
	case ActionUnmute:
		return d.unmute(ctx, req)
	case ActionServerMute:
		return d.serverMute(ctx, req)
	case ActionServerUnmute:
		return d.serverUnmute(ctx, req)
	case ActionWarn:
		return d.warn(ctx, req)
	case ActionUnwarn:
		return d.unwarn(ctx, req)
	case ActionJail:
		return d.jail(ctx, req)
	case ActionUnjail:
		return d.unjail(ctx, req)
	case ActionPurge:
		return d.purge(ctx, req)
	default:
		return nil, NewActionError(CodeTargetInvalid, fmt.Sprintf("unknown action %q", action))
	}
}

func (d *Dispatcher) ban(ctx context.Context, req *Request) (*Result, error) {
	if req.BanDays < 0 {
		return nil, NewActionError(CodeInvalidDuration, "ban duration must not be negative")
	}

	member, err := d.fetchMember(ctx, req.GuildID, req.UserID)
	if err != nil {
		return nil, err
	}

	active, err := d.bans.HasActiveBan(ctx, req.UserID, req.GuildID)
	if err != nil {
		return nil, Internal("failed to check existing bans", err)
	}

	if active {
		return nil, NewActionError(CodeAlreadySanctioned, fmt.Sprintf("%s already has an active ban", member.Username))
	}

	if err := d.platform.BanMember(ctx, req.GuildID, req.UserID, BanPurgeWindow, req.Reason); err != nil {
		return nil, Internal("failed to apply ban", err)
	}

	now := time.Now()

	var expiresAt *time.Time

	if req.BanDays > 0 {
		t := now.Add(time.Duration(req.BanDays) * 24 * time.Hour)
		expiresAt = &t
	}

	ban := &types.Ban{
		UserID:      req.UserID,
		GuildID:     req.GuildID,
		ModeratorID: req.ModeratorID,
		Reason:      req.Reason,
		BannedAt:    now,
		ExpiresAt:   expiresAt,
		IsActive:    true,
	}
	if err := d.bans.CreateBan(ctx, ban); err != nil {
		return nil, Internal("failed to persist ban", err)
	}

	guildName := d.platform.GuildName(ctx, req.GuildID)
	dm := fmt.Sprintf("You have been banned from **%s** for: %s", guildName, req.Reason)

	if expiresAt != nil {
		dm += fmt.Sprintf("\nThis ban will expire on %s.", expiresAt.Format("Jan 02, 2006"))
	}

	d.notify(ctx, req.UserID, dm)

	message := fmt.Sprintf("Banned %s", member.Username)
	if req.BanDays > 0 {
		message = fmt.Sprintf("Banned %s for %d day(s)", member.Username, req.BanDays)
	}

	return &Result{Action: ActionBan, Message: message, ExpiresAt: expiresAt}, nil
}

func (d *Dispatcher) unban(ctx context.Context, req *Request) (*Result, error) {
	if _, err := d.bans.GetActiveBan(ctx, req.UserID, req.GuildID); err != nil {
		if errors.Is(err, types.ErrBanNotFound) {
			return nil, NewActionError(CodeNotFound, "member has no active ban")
		}

		return nil, Internal("failed to look up ban", err)
	}

	// The subject has left the realm, so the identity comes from the
	// platform's ban list rather than the member list.
	username, err := d.platform.FetchBannedUser(ctx, req.GuildID, req.UserID)
	if err != nil {
		username = fmt.Sprintf("user %d", req.UserID)
	}

	if err := d.platform.UnbanMember(ctx, req.GuildID, req.UserID, req.Reason); err != nil {
		return nil, Internal("failed to lift ban", err)
	}

	if _, err := d.bans.DeactivateActiveBans(ctx, req.UserID, req.GuildID); err != nil {
		return nil, Internal("failed to update ban records", err)
	}

	return &Result{Action: ActionUnban, Message: fmt.Sprintf("Unbanned %s", username)}, nil
}

func (d *Dispatcher) kick(ctx context.Context, req *Request) (*Result, error) {
	member, err := d.fetchMember(ctx, req.GuildID, req.UserID)
	if err != nil {
		return nil, err
	}

	if err := d.platform.KickMember(ctx, req.GuildID, req.UserID, req.Reason); err != nil {
		return nil, Internal("failed to kick member", err)
	}

	guildName := d.platform.GuildName(ctx, req.GuildID)
	d.notify(ctx, req.UserID, fmt.Sprintf("You have been kicked from **%s** for: %s", guildName, req.Reason))

	return &Result{Action: ActionKick, Message: fmt.Sprintf("Kicked %s", member.Username)}, nil
}

func (d *Dispatcher) mute(ctx context.Context, req *Request) (*Result, error) {
	if err := req.Duration.Validate(); err != nil {
		return nil, err
	}

	member, err := d.fetchMember(ctx, req.GuildID, req.UserID)
	if err != nil {
		return nil, err
	}

	until := time.Now().Add(req.Duration.Duration())
	if err := d.platform.TimeoutMember(ctx, req.GuildID, req.UserID, until, req.Reason); err != nil {
		return nil, Internal("failed to apply timeout", err)
	}

	durationText := req.Duration.String()
	guildName := d.platform.GuildName(ctx, req.GuildID)
	d.notify(ctx, req.UserID, fmt.Sprintf("You have been muted in **%s** for %s.\nReason: %s", guildName, durationText, req.Reason))

	return &Result{
		Action:    ActionMute,
		Message:   fmt.Sprintf("Muted %s for %s", member.Username, durationText),
		ExpiresAt: &until,
	}, nil
}

func (d *Dispatcher) unmute(ctx context.Context, req *Request) (*Result, error) {
	member, err := d.fetchMember(ctx, req.GuildID, req.UserID)
	if err != nil {
		return nil, err
	}

	if member.TimedOutTil == nil || !member.TimedOutTil.After(time.Now()) {
		return nil, NewActionError(CodeNotSanctioned, fmt.Sprintf("%s is not currently muted", member.Username))
	}

	if err := d.platform.RemoveTimeout(ctx, req.GuildID, req.UserID, req.Reason); err != nil {
		return nil, Internal("failed to remove timeout", err)
	}

	return &Result{Action: ActionUnmute, Message: fmt.Sprintf("Unmuted %s", member.Username)}, nil
}

func (d *Dispatcher) serverMute(ctx context.Context, req *Request) (*Result, error) {
	member, err := d.fetchMember(ctx, req.GuildID, req.UserID)
	if err != nil {
		return nil, err
	}

	if !member.InVoice {
		return nil, NewActionError(CodeNotPresent, fmt.Sprintf("%s is not in a voice channel", member.Username))
	}

	if err := d.platform.SetVoiceMute(ctx, req.GuildID, req.UserID, true, req.Reason); err != nil {
		return nil, Internal("failed to voice-mute member", err)
	}

	message := fmt.Sprintf("Muted %s in voice channels", member.Username)

	// Timed voice mutes are reversed by an in-process one-shot timer
	// rather than the expiry scheduler; the reversal is lost if the
	// process restarts before it fires.
	if req.VoiceDuration > 0 {
		d.scheduleVoiceUnmute(req.GuildID, req.UserID, req.ModeratorID, req.VoiceDuration)
		message = fmt.Sprintf("%s for %s", message, FormatDuration(req.VoiceDuration))
	}

	return &Result{Action: ActionServerMute, Message: message}, nil
}

func (d *Dispatcher) scheduleVoiceUnmute(guildID, userID, moderatorID uint64, after time.Duration) {
	time.AfterFunc(after, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		member, err := d.platform.FetchMember(ctx, guildID, userID)
		if err != nil {
			d.logger.Warn("Timed voice unmute: member lookup failed",
				zap.Uint64("userID", userID), zap.Error(err))
			return
		}

		if !member.InVoice {
			return
		}

		if err := d.platform.SetVoiceMute(ctx, guildID, userID, false, "Mute duration expired"); err != nil {
			d.logger.Warn("Timed voice unmute failed",
				zap.Uint64("userID", userID), zap.Error(err))
			return
		}

		event := &AuditEvent{
			Action:      ActionServerUnmute,
			GuildID:     guildID,
			UserID:      userID,
			ModeratorID: moderatorID,
			Reason:      "Mute duration expired",
			Success:     true,
			Detail:      fmt.Sprintf("Unmuted %s in voice channels", member.Username),
			Timestamp:   time.Now(),
		}
		if err := d.audit.Emit(ctx, event); err != nil {
			d.logger.Warn("Failed to emit audit event", zap.Error(err))
		}
	})
}

func (d *Dispatcher) serverUnmute(ctx context.Context, req *Request) (*Result, error) {
	member, err := d.fetchMember(ctx, req.GuildID, req.UserID)
	if err != nil {
		return nil, err
	}

	if !member.InVoice {
		return nil, NewActionError(CodeNotPresent, fmt.Sprintf("%s is not in a voice channel", member.Username))
	}

	if err := d.platform.SetVoiceMute(ctx, req.GuildID, req.UserID, false, req.Reason); err != nil {
		return nil, Internal("failed to voice-unmute member", err)
	}

	return &Result{Action: ActionServerUnmute, Message: fmt.Sprintf("Unmuted %s in voice channels", member.Username)}, nil
}

func (d *Dispatcher) warn(ctx context.Context, req *Request) (*Result, error) {
	member, err := d.fetchMember(ctx, req.GuildID, req.UserID)
	if err != nil {
		return nil, err
	}

	warning := &types.Warning{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		GuildID:     req.GuildID,
		ModeratorID: req.ModeratorID,
		Reason:      req.Reason,
		CreatedAt:   time.Now(),
	}
	if err := d.warnings.CreateWarning(ctx, warning); err != nil {
		return nil, Internal("failed to persist warning", err)
	}

	guildName := d.platform.GuildName(ctx, req.GuildID)
	d.notify(ctx, req.UserID, fmt.Sprintf("You have been warned in **%s** for: %s", guildName, req.Reason))

	result := &Result{
		Action:    ActionWarn,
		Message:   fmt.Sprintf("Warned %s", member.Username),
		WarningID: warning.ID,
	}

	// Count after the write so this warning itself can cross a threshold.
	count, err := d.warnings.CountWarnings(ctx, req.UserID, req.GuildID)
	if err != nil {
		d.logger.Error("Failed to count warnings for escalation",
			zap.Uint64("userID", req.UserID), zap.Error(err))

		result.Escalation = &EscalationOutcome{
			Directive: DirectiveNone,
			Message:   "could not evaluate escalation thresholds",
			Failed:    true,
		}

		return result, nil
	}

	result.WarningCount = count
	result.Escalation = d.escalate(ctx, req, count)

	return result, nil
}

// escalate applies the escalation policy after a warning was persisted.
// An escalation failure is reported in the outcome but never rolls the
// warning back.
func (d *Dispatcher) escalate(ctx context.Context, req *Request, count int) *EscalationOutcome {
	thresholds := d.thresholds.Load()
	directive := Decide(count, thresholds)

	if directive == DirectiveNone {
		return nil
	}

	outcome := &EscalationOutcome{Directive: directive}

	escReq := &Request{
		GuildID:     req.GuildID,
		UserID:      req.UserID,
		ModeratorID: req.ModeratorID,
		Reason:      fmt.Sprintf("escalation: %d warnings reached", count),
	}

	var (
		escResult *Result
		err       error
	)

	switch directive {
	case DirectiveBan:
		escResult, err = d.Execute(ctx, ActionBan, escReq)
	case DirectiveMute:
		escReq.Duration = MuteDuration{Seconds: int(thresholds.MuteDuration / time.Second)}
		escResult, err = d.Execute(ctx, ActionMute, escReq)
	case DirectiveNone:
	}

	if err != nil {
		d.logger.Error("Escalation action failed",
			zap.String("directive", directive.String()),
			zap.Uint64("userID", req.UserID),
			zap.Error(err))

		outcome.Failed = true
		outcome.Message = AsActionError(err).Message

		return outcome
	}

	outcome.Message = escResult.Message

	return outcome
}

func (d *Dispatcher) unwarn(ctx context.Context, req *Request) (*Result, error) {
	if req.WarningID == "" {
		return nil, NewActionError(CodeNotFound, "warning id is required")
	}

	if err := d.warnings.DeleteWarning(ctx, req.WarningID, req.UserID, req.GuildID); err != nil {
		if errors.Is(err, types.ErrWarningNotFound) {
			return nil, NewActionError(CodeNotFound, "warning not found")
		}

		return nil, Internal("failed to delete warning", err)
	}

	return &Result{Action: ActionUnwarn, Message: "Warning removed"}, nil
}

func (d *Dispatcher) jail(ctx context.Context, req *Request) (*Result, error) {
	member, err := d.fetchMember(ctx, req.GuildID, req.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := d.jails.GetRecord(ctx, req.UserID, req.GuildID); err == nil {
		return nil, NewActionError(CodeAlreadySanctioned, fmt.Sprintf("%s is already jailed", member.Username))
	} else if !errors.Is(err, types.ErrJailRecordNotFound) {
		return nil, Internal("failed to check jail record", err)
	}

	// Strip every role except the jailed role and @everyone, which
	// shares its ID with the guild. Individual failures degrade to a
	// partial result instead of aborting.
	var failed int

	for _, roleID := range member.RoleIDs {
		if roleID == d.jailedRoleID || roleID == req.GuildID {
			continue
		}

		if err := d.platform.RemoveRole(ctx, req.GuildID, req.UserID, roleID); err != nil {
			failed++

			d.logger.Warn("Failed to remove role during jail",
				zap.Uint64("userID", req.UserID),
				zap.Uint64("roleID", roleID),
				zap.Error(err))
		}
	}

	if err := d.platform.AddRole(ctx, req.GuildID, req.UserID, d.jailedRoleID); err != nil {
		return nil, Internal("failed to apply jailed role", err)
	}

	record := &types.JailRecord{
		UserID:   req.UserID,
		GuildID:  req.GuildID,
		JailedAt: time.Now(),
	}
	if err := d.jails.CreateRecord(ctx, record); err != nil {
		if errors.Is(err, types.ErrAlreadyJailed) {
			return nil, NewActionError(CodeAlreadySanctioned, fmt.Sprintf("%s is already jailed", member.Username))
		}

		return nil, Internal("failed to persist jail record", err)
	}

	message := fmt.Sprintf("Jailed %s and removed their roles", member.Username)
	if failed > 0 {
		message = fmt.Sprintf("%s (%d role(s) could not be removed)", message, failed)
	}

	return &Result{Action: ActionJail, Message: message, FailedCount: failed}, nil
}

func (d *Dispatcher) unjail(ctx context.Context, req *Request) (*Result, error) {
	member, err := d.fetchMember(ctx, req.GuildID, req.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := d.jails.GetRecord(ctx, req.UserID, req.GuildID); err != nil {
		if errors.Is(err, types.ErrJailRecordNotFound) {
			return nil, NewActionError(CodeNotSanctioned, fmt.Sprintf("%s is not jailed", member.Username))
		}

		return nil, Internal("failed to check jail record", err)
	}

	if err := d.platform.RemoveRole(ctx, req.GuildID, req.UserID, d.jailedRoleID); err != nil {
		return nil, Internal("failed to remove jailed role", err)
	}

	if err := d.jails.DeleteRecord(ctx, req.UserID, req.GuildID); err != nil &&
		!errors.Is(err, types.ErrJailRecordNotFound) {
		return nil, Internal("failed to delete jail record", err)
	}

	return &Result{Action: ActionUnjail, Message: fmt.Sprintf("Unjailed %s", member.Username)}, nil
}

func (d *Dispatcher) purge(ctx context.Context, req *Request) (*Result, error) {
	if req.Count < 1 || req.Count > 100 {
		return nil, NewActionError(CodeTargetInvalid, "purge count must be between 1 and 100")
	}

	messages, err := d.platform.FetchMessages(ctx, req.ChannelID, req.Count)
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			return nil, NewActionError(CodeTargetInvalid, "channel not found")
		}

		return nil, Internal("failed to fetch messages", err)
	}

	cutoff := time.Now().Add(-BulkDeleteMaxAge)

	var (
		deletable []uint64
		skipped   int
	)

	for _, msg := range messages {
		if msg.Pinned {
			continue
		}

		if req.FilterUserID != 0 && msg.AuthorID != req.FilterUserID {
			continue
		}

		if msg.CreatedAt.Before(cutoff) {
			skipped++
			continue
		}

		deletable = append(deletable, msg.ID)
	}

	var deleted, failed int

	for start := 0; start < len(deletable); start += bulkDeleteBatchSize {
		end := min(start+bulkDeleteBatchSize, len(deletable))
		batch := deletable[start:end]

		// Bulk deletion requires at least two messages.
		if len(batch) >= 2 {
			if err := d.platform.BulkDeleteMessages(ctx, req.ChannelID, batch); err == nil {
				deleted += len(batch)
				continue
			}

			d.logger.Warn("Bulk delete rejected, falling back to individual deletion",
				zap.Uint64("channelID", req.ChannelID),
				zap.Int("batchSize", len(batch)))
		}

		for _, messageID := range batch {
			if err := d.platform.DeleteMessage(ctx, req.ChannelID, messageID); err != nil {
				failed++

				d.logger.Warn("Failed to delete message",
					zap.Uint64("messageID", messageID),
					zap.Error(err))
			} else {
				deleted++
			}
		}
	}

	message := fmt.Sprintf("Deleted %d message(s)", deleted)
	if failed > 0 {
		message = fmt.Sprintf("%s, %d failed", message, failed)
	}

	if skipped > 0 {
		message = fmt.Sprintf("%s, %d skipped (older than 14 days)", message, skipped)
	}

	return &Result{
		Action:       ActionPurge,
		Message:      message,
		DeletedCount: deleted,
		FailedCount:  failed,
		SkippedCount: skipped,
	}, nil
}

// fetchMember resolves a guild member, mapping platform lookup failures
// onto the error taxonomy.
func (d *Dispatcher) fetchMember(ctx context.Context, guildID, userID uint64) (*Member, error) {
	member, err := d.platform.FetchMember(ctx, guildID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, NewActionError(CodeTargetInvalid, "member not found in this server")
		}

		return nil, Internal("failed to fetch member", err)
	}

	return member, nil
}

// notify sends a best-effort DM. Delivery failures never abort the
// action that triggered them.
func (d *Dispatcher) notify(ctx context.Context, userID uint64, message string) {
	if err := d.notifier.NotifyUser(ctx, userID, message); err != nil {
		d.logger.Debug("Could not deliver DM",
			zap.Uint64("userID", userID),
			zap.Error(err))
	}
}
