package moderation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wardenhq/warden/internal/moderation"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	thresholds := moderation.Thresholds{
		MuteCount:    3,
		MuteDuration: time.Hour,
		BanCount:     5,
	}

	expected := map[int]moderation.Directive{
		0: moderation.DirectiveNone,
		1: moderation.DirectiveNone,
		2: moderation.DirectiveNone,
		3: moderation.DirectiveMute,
		4: moderation.DirectiveMute,
		5: moderation.DirectiveBan,
		6: moderation.DirectiveBan,
	}

	for count, want := range expected {
		assert.Equal(t, want, moderation.Decide(count, thresholds), "count %d", count)
	}
}

func TestDecideBanPrecedence(t *testing.T) {
	t.Parallel()

	// When both thresholds are crossed at once, ban wins.
	thresholds := moderation.Thresholds{MuteCount: 3, BanCount: 3}
	assert.Equal(t, moderation.DirectiveBan, moderation.Decide(3, thresholds))
}

func TestThresholdStoreUpdates(t *testing.T) {
	t.Parallel()

	store := moderation.NewThresholdStore(moderation.Thresholds{
		MuteCount:    3,
		MuteDuration: time.Hour,
		BanCount:     5,
	})

	store.SetMute(2, 30*time.Minute)

	got := store.Load()
	assert.Equal(t, 2, got.MuteCount)
	assert.Equal(t, 30*time.Minute, got.MuteDuration)
	assert.Equal(t, 5, got.BanCount, "ban threshold must survive a mute update")

	store.SetBan(8)

	got = store.Load()
	assert.Equal(t, 8, got.BanCount)
	assert.Equal(t, 2, got.MuteCount)
}

func TestDirectiveString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", moderation.DirectiveNone.String())
	assert.Equal(t, "mute", moderation.DirectiveMute.String())
	assert.Equal(t, "ban", moderation.DirectiveBan.String())
}
