package moderation_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wardenhq/warden/internal/database/types"
	"github.com/wardenhq/warden/internal/moderation"
)

// fakePlatform implements moderation.Platform in memory and records
// every mutating call it receives.
type fakePlatform struct {
	mu sync.Mutex

	members     map[uint64]*moderation.Member
	bannedUsers map[uint64]string
	messages    []moderation.Message
	guildName   string
	inviteURL   string

	banErr       error
	unbanErr     error
	unbanErrs    map[uint64]error
	kickErr      error
	timeoutErr   error
	voiceMuteErr error
	addRoleErr   error
	roleErrs     map[uint64]error
	bulkErr      error
	deleteErrs   map[uint64]error
	inviteErr    error

	calls        []string
	removedRoles []uint64
	addedRoles   []uint64
	bulkBatches  [][]uint64
	deletedIDs   []uint64
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		members:     make(map[uint64]*moderation.Member),
		bannedUsers: make(map[uint64]string),
		guildName:   "Test Guild",
	}
}

func (p *fakePlatform) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakePlatform) callCount(call string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	var n int

	for _, c := range p.calls {
		if c == call {
			n++
		}
	}

	return n
}

func (p *fakePlatform) FetchMember(_ context.Context, _, userID uint64) (*moderation.Member, error) {
	p.record("fetchMember")

	member, ok := p.members[userID]
	if !ok {
		return nil, moderation.ErrMemberNotFound
	}

	return member, nil
}

func (p *fakePlatform) FetchBannedUser(_ context.Context, _, userID uint64) (string, error) {
	p.record("fetchBannedUser")

	name, ok := p.bannedUsers[userID]
	if !ok {
		return "", moderation.ErrBanMissing
	}

	return name, nil
}

func (p *fakePlatform) BanMember(_ context.Context, _, _ uint64, _ time.Duration, _ string) error {
	p.record("ban")
	return p.banErr
}

func (p *fakePlatform) UnbanMember(_ context.Context, _, userID uint64, _ string) error {
	p.record("unban")

	if err := p.unbanErrs[userID]; err != nil {
		return err
	}

	return p.unbanErr
}

func (p *fakePlatform) KickMember(_ context.Context, _, _ uint64, _ string) error {
	p.record("kick")
	return p.kickErr
}

func (p *fakePlatform) TimeoutMember(_ context.Context, _, _ uint64, _ time.Time, _ string) error {
	p.record("timeout")
	return p.timeoutErr
}

func (p *fakePlatform) RemoveTimeout(_ context.Context, _, _ uint64, _ string) error {
	p.record("removeTimeout")
	return nil
}

func (p *fakePlatform) SetVoiceMute(_ context.Context, _, _ uint64, muted bool, _ string) error {
	if muted {
		p.record("voiceMute")
	} else {
		p.record("voiceUnmute")
	}

	return p.voiceMuteErr
}

func (p *fakePlatform) AddRole(_ context.Context, _, _, roleID uint64) error {
	p.record("addRole")

	if p.addRoleErr != nil {
		return p.addRoleErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.addedRoles = append(p.addedRoles, roleID)

	return nil
}

func (p *fakePlatform) RemoveRole(_ context.Context, _, _, roleID uint64) error {
	p.record("removeRole")

	if err := p.roleErrs[roleID]; err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.removedRoles = append(p.removedRoles, roleID)

	return nil
}

func (p *fakePlatform) FetchMessages(_ context.Context, _ uint64, limit int) ([]moderation.Message, error) {
	p.record("fetchMessages")

	if limit > len(p.messages) {
		limit = len(p.messages)
	}

	return p.messages[:limit], nil
}

func (p *fakePlatform) BulkDeleteMessages(_ context.Context, _ uint64, messageIDs []uint64) error {
	p.record("bulkDelete")

	if p.bulkErr != nil {
		return p.bulkErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.bulkBatches = append(p.bulkBatches, messageIDs)

	return nil
}

func (p *fakePlatform) DeleteMessage(_ context.Context, _, messageID uint64) error {
	p.record("deleteMessage")

	if err := p.deleteErrs[messageID]; err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletedIDs = append(p.deletedIDs, messageID)

	return nil
}

func (p *fakePlatform) CreateInvite(_ context.Context, _ uint64) (string, error) {
	p.record("createInvite")

	if p.inviteErr != nil {
		return "", p.inviteErr
	}

	return p.inviteURL, nil
}

func (p *fakePlatform) GuildName(_ context.Context, _ uint64) string {
	return p.guildName
}

type fakeNotifier struct {
	mu         sync.Mutex
	err        error
	messages   []string
	recipients []uint64
}

func (n *fakeNotifier) NotifyUser(_ context.Context, userID uint64, message string) error {
	if n.err != nil {
		return n.err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	n.recipients = append(n.recipients, userID)

	return nil
}

type fakeAudit struct {
	mu     sync.Mutex
	err    error
	events []*moderation.AuditEvent
}

func (a *fakeAudit) Emit(_ context.Context, event *moderation.AuditEvent) error {
	if a.err != nil {
		return a.err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)

	return nil
}

type fakeAuth struct {
	denyErr error
}

func (a *fakeAuth) Authorize(_ context.Context, _, _ uint64, _ moderation.Action) error {
	return a.denyErr
}

type fakeWarningStore struct {
	mu        sync.Mutex
	warnings  map[string]*types.Warning
	createErr error
	countErr  error
}

func newFakeWarningStore() *fakeWarningStore {
	return &fakeWarningStore{warnings: make(map[string]*types.Warning)}
}

func (s *fakeWarningStore) CreateWarning(_ context.Context, warning *types.Warning) error {
	if s.createErr != nil {
		return s.createErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings[warning.ID] = warning

	return nil
}

func (s *fakeWarningStore) CountWarnings(_ context.Context, userID, guildID uint64) (int, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int

	for _, w := range s.warnings {
		if w.UserID == userID && w.GuildID == guildID {
			n++
		}
	}

	return n, nil
}

func (s *fakeWarningStore) DeleteWarning(_ context.Context, id string, userID, guildID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.warnings[id]
	if !ok || w.UserID != userID || w.GuildID != guildID {
		return types.ErrWarningNotFound
	}

	delete(s.warnings, id)

	return nil
}

type fakeBanStore struct {
	mu        sync.Mutex
	bans      []*types.Ban
	nextID    int64
	createErr error
}

func (s *fakeBanStore) CreateBan(_ context.Context, ban *types.Ban) error {
	if s.createErr != nil {
		return s.createErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	ban.ID = s.nextID
	s.bans = append(s.bans, ban)

	return nil
}

func (s *fakeBanStore) GetActiveBan(_ context.Context, userID, guildID uint64) (*types.Ban, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bans {
		if b.IsActive && b.UserID == userID && b.GuildID == guildID {
			return b, nil
		}
	}

	return nil, types.ErrBanNotFound
}

func (s *fakeBanStore) HasActiveBan(ctx context.Context, userID, guildID uint64) (bool, error) {
	_, err := s.GetActiveBan(ctx, userID, guildID)
	return err == nil, nil
}

func (s *fakeBanStore) GetExpiredBans(_ context.Context, now time.Time) ([]*types.Ban, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*types.Ban

	for _, b := range s.bans {
		if b.IsActive && b.ExpiresAt != nil && b.ExpiresAt.Before(now) {
			expired = append(expired, b)
		}
	}

	return expired, nil
}

func (s *fakeBanStore) DeactivateBan(_ context.Context, id int64, notified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bans {
		if b.ID == id {
			b.IsActive = false

			if notified {
				b.NotifiedOnExpiry = true
			}

			return nil
		}
	}

	return types.ErrBanNotFound
}

func (s *fakeBanStore) DeactivateActiveBans(_ context.Context, userID, guildID uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64

	for _, b := range s.bans {
		if b.IsActive && b.UserID == userID && b.GuildID == guildID {
			b.IsActive = false
			n++
		}
	}

	return n, nil
}

type fakeJailStore struct {
	mu        sync.Mutex
	records   map[string]*types.JailRecord
	createErr error
	getErr    error
}

func newFakeJailStore() *fakeJailStore {
	return &fakeJailStore{records: make(map[string]*types.JailRecord)}
}

func jailKey(userID, guildID uint64) string {
	return fmt.Sprintf("%d:%d", userID, guildID)
}

func (s *fakeJailStore) CreateRecord(_ context.Context, record *types.JailRecord) error {
	if s.createErr != nil {
		return s.createErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := jailKey(record.UserID, record.GuildID)
	if _, ok := s.records[key]; ok {
		return types.ErrAlreadyJailed
	}

	s.records[key] = record

	return nil
}

func (s *fakeJailStore) GetRecord(_ context.Context, userID, guildID uint64) (*types.JailRecord, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[jailKey(userID, guildID)]
	if !ok {
		return nil, types.ErrJailRecordNotFound
	}

	return record, nil
}

func (s *fakeJailStore) DeleteRecord(_ context.Context, userID, guildID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := jailKey(userID, guildID)
	if _, ok := s.records[key]; !ok {
		return types.ErrJailRecordNotFound
	}

	delete(s.records, key)

	return nil
}

// engineFixture bundles a dispatcher with the fakes behind it.
type engineFixture struct {
	dispatcher *moderation.Dispatcher
	platform   *fakePlatform
	notifier   *fakeNotifier
	audit      *fakeAudit
	auth       *fakeAuth
	warnings   *fakeWarningStore
	bans       *fakeBanStore
	jails      *fakeJailStore
}

const testJailedRoleID = uint64(900)

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		platform: newFakePlatform(),
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
		auth:     &fakeAuth{},
		warnings: newFakeWarningStore(),
		bans:     &fakeBanStore{},
		jails:    newFakeJailStore(),
	}

	f.dispatcher = moderation.NewDispatcher(
		f.platform,
		f.notifier,
		f.audit,
		f.auth,
		f.warnings,
		f.bans,
		f.jails,
		moderation.NewThresholdStore(moderation.Thresholds{
			MuteCount:    3,
			MuteDuration: time.Hour,
			BanCount:     5,
		}),
		testJailedRoleID,
		zap.NewNop(),
	)

	return f
}
