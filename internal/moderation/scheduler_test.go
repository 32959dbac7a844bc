package moderation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database/types"
	"github.com/wardenhq/warden/internal/moderation"
)

type schedulerFixture struct {
	scheduler *moderation.Scheduler
	platform  *fakePlatform
	notifier  *fakeNotifier
	audit     *fakeAudit
	bans      *fakeBanStore
}

func newSchedulerFixture() *schedulerFixture {
	f := &schedulerFixture{
		platform: newFakePlatform(),
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
		bans:     &fakeBanStore{},
	}

	f.platform.inviteURL = "https://discord.gg/test"

	f.scheduler = moderation.NewScheduler(
		f.bans,
		f.platform,
		f.notifier,
		f.audit,
		30*time.Minute,
		4,
		zap.NewNop(),
	)

	return f
}

func (f *schedulerFixture) addBan(userID uint64, expiresAt *time.Time, notified bool) *types.Ban {
	ban := &types.Ban{
		UserID:           userID,
		GuildID:          testGuildID,
		ModeratorID:      testModeratorID,
		Reason:           "test ban",
		BannedAt:         time.Now().Add(-48 * time.Hour),
		ExpiresAt:        expiresAt,
		IsActive:         true,
		NotifiedOnExpiry: notified,
	}

	_ = f.bans.CreateBan(context.Background(), ban)

	return ban
}

func countOf(ids []uint64, id uint64) int {
	var n int
	for _, v := range ids {
		if v == id {
			n++
		}
	}

	return n
}

func TestRunPassLiftsExpiredBan(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	expired := f.addBan(201, &past, false)
	f.addBan(202, &future, false)
	f.addBan(203, nil, false)

	f.scheduler.RunPass(t.Context())

	assert.Equal(t, 1, f.platform.callCount("unban"))
	assert.False(t, expired.IsActive)
	assert.True(t, expired.NotifiedOnExpiry)

	// The other bans are untouched.
	activeBan, err := f.bans.GetActiveBan(t.Context(), 202, testGuildID)
	require.NoError(t, err)
	assert.True(t, activeBan.IsActive)

	require.Len(t, f.notifier.messages, 1)
	assert.Contains(t, f.notifier.messages[0], "expired")
	assert.Contains(t, f.notifier.messages[0], "https://discord.gg/test")

	require.Len(t, f.audit.events, 1)
	event := f.audit.events[0]
	assert.Equal(t, moderation.ActionUnban, event.Action)
	assert.True(t, event.Success)
}

func TestRunPassUnbanFailureStillDeactivates(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture()
	past := time.Now().Add(-time.Hour)
	ban := f.addBan(201, &past, false)
	f.platform.unbanErr = errors.New("missing permissions")

	f.scheduler.RunPass(t.Context())

	// The record is closed regardless so the failure cannot loop forever.
	assert.False(t, ban.IsActive)

	require.Len(t, f.audit.events, 1)
	assert.False(t, f.audit.events[0].Success)
}

func TestRunPassRecordsAreIndependent(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture()
	past := time.Now().Add(-time.Hour)

	failing := f.addBan(201, &past, false)
	lifted := f.addBan(202, &past, false)
	f.platform.unbanErrs = map[uint64]error{201: errors.New("missing permissions")}

	f.scheduler.RunPass(t.Context())

	// The failing record is still closed and never blocks its neighbor.
	assert.False(t, failing.IsActive)
	assert.False(t, lifted.IsActive)
	assert.True(t, lifted.NotifiedOnExpiry)

	assert.Equal(t, 1, countOf(f.notifier.recipients, 202))

	require.Len(t, f.audit.events, 2)

	successes := 0
	for _, event := range f.audit.events {
		if event.Success {
			successes++
		}
	}
	assert.Equal(t, 1, successes)

	// Both records are inactive now, so a second pass is a no-op.
	sent := len(f.notifier.messages)
	f.scheduler.RunPass(t.Context())

	assert.Len(t, f.notifier.messages, sent)
	assert.Len(t, f.audit.events, 2)
}

func TestRunPassNotifiesAtMostOnce(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture()
	past := time.Now().Add(-time.Hour)
	f.addBan(201, &past, true)

	f.scheduler.RunPass(t.Context())

	assert.Empty(t, f.notifier.messages)
	assert.Equal(t, 1, f.platform.callCount("unban"))
}

func TestRunPassInviteFailureStillNotifies(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture()
	past := time.Now().Add(-time.Hour)
	f.addBan(201, &past, false)
	f.platform.inviteErr = errors.New("no system channel")

	f.scheduler.RunPass(t.Context())

	require.Len(t, f.notifier.messages, 1)
	assert.NotContains(t, f.notifier.messages[0], "discord.gg")
}

func TestRunPassEmptyLedger(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture()

	f.scheduler.RunPass(t.Context())

	assert.Empty(t, f.platform.calls)
	assert.Empty(t, f.audit.events)
}
