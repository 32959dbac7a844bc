package moderation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database/types"
)

// Scheduler expires temporary bans in the background. It runs one pass
// immediately on start and then one per interval; a tick that fires
// while a pass is still running is skipped rather than overlapping it.
type Scheduler struct {
	bans           BanStore
	platform       Platform
	notifier       Notifier
	audit          AuditSink
	interval       time.Duration
	maxConcurrency int
	running        atomic.Bool
	logger         *zap.Logger
}

// NewScheduler creates an expiry scheduler.
func NewScheduler(
	bans BanStore,
	platform Platform,
	notifier Notifier,
	audit AuditSink,
	interval time.Duration,
	maxConcurrency int,
	logger *zap.Logger,
) *Scheduler {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	return &Scheduler{
		bans:           bans,
		platform:       platform,
		notifier:       notifier,
		audit:          audit,
		interval:       interval,
		maxConcurrency: maxConcurrency,
		logger:         logger.Named("scheduler"),
	}
}

// Start runs the scheduler loop until the context is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Expiry scheduler started", zap.Duration("interval", s.interval))

	s.RunPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Expiry scheduler stopped")
			return
		case <-ticker.C:
			s.RunPass(ctx)
		}
	}
}

// RunPass processes all currently expired bans. At most one pass runs
// at a time; a call made while another pass is in flight returns
// immediately.
func (s *Scheduler) RunPass(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Skipping expiry pass, previous pass still running")
		return
	}
	defer s.running.Store(false)

	expired, err := s.bans.GetExpiredBans(ctx, time.Now())
	if err != nil {
		s.logger.Error("Failed to query expired bans", zap.Error(err))
		return
	}

	if len(expired) == 0 {
		return
	}

	s.logger.Info("Processing expired bans", zap.Int("count", len(expired)))

	// Each record is handled independently so one unreachable target
	// cannot stall the rest of the pass.
	p := pool.New().WithMaxGoroutines(s.maxConcurrency)

	for _, ban := range expired {
		p.Go(func() {
			s.processExpiredBan(ctx, ban)
		})
	}

	p.Wait()
}

func (s *Scheduler) processExpiredBan(ctx context.Context, ban *types.Ban) {
	reason := fmt.Sprintf("Temporary ban expired (%s)", ban.ExpiresAt.Format("Jan 02, 2006"))

	reversed := true

	if err := s.platform.UnbanMember(ctx, ban.GuildID, ban.UserID, reason); err != nil {
		reversed = false

		s.logger.Error("Failed to lift expired ban",
			zap.Uint64("userID", ban.UserID),
			zap.Uint64("guildID", ban.GuildID),
			zap.Error(err))
	}

	// The re-invite DM is attempted at most once per ban, even when the
	// reversal itself failed and had to be retried out of band.
	notified := ban.NotifiedOnExpiry
	if !notified {
		s.sendExpiryNotification(ctx, ban)

		notified = true
	}

	// Deactivate regardless of the reversal outcome so an unreachable
	// target does not turn into an infinite retry storm.
	if err := s.bans.DeactivateBan(ctx, ban.ID, notified); err != nil {
		s.logger.Error("Failed to deactivate expired ban",
			zap.Int64("banID", ban.ID),
			zap.Error(err))
	}

	event := &AuditEvent{
		Action:      ActionUnban,
		GuildID:     ban.GuildID,
		UserID:      ban.UserID,
		ModeratorID: ban.ModeratorID,
		Reason:      reason,
		Success:     reversed,
		Detail:      "Temporary ban expired",
		Timestamp:   time.Now(),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.Warn("Failed to emit audit event", zap.Error(err))
	}
}

func (s *Scheduler) sendExpiryNotification(ctx context.Context, ban *types.Ban) {
	guildName := s.platform.GuildName(ctx, ban.GuildID)
	message := fmt.Sprintf("Your temporary ban from **%s** has expired and you are now unbanned!", guildName)

	if invite, err := s.platform.CreateInvite(ctx, ban.GuildID); err != nil {
		s.logger.Debug("Could not create re-invite",
			zap.Uint64("guildID", ban.GuildID),
			zap.Error(err))
	} else {
		message = fmt.Sprintf("%s\n\nYou can rejoin the server here: %s", message, invite)
	}

	if err := s.notifier.NotifyUser(ctx, ban.UserID, message); err != nil {
		s.logger.Debug("Could not deliver expiry DM",
			zap.Uint64("userID", ban.UserID),
			zap.Error(err))
	}
}
