package businessflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/countdown-contest/app/services"
	"github.com/amirphl/countdown-contest/models"
	"github.com/amirphl/countdown-contest/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("connection refused")

type fakeCampaignRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Campaign
	// failWith makes every call fail
	failWith error
}

func newFakeCampaignRepo(campaigns ...*models.Campaign) *fakeCampaignRepo {
	r := &fakeCampaignRepo{rows: make(map[uint]*models.Campaign)}
	for _, c := range campaigns {
		_ = r.Save(context.Background(), c)
	}
	return r
}

func (r *fakeCampaignRepo) get(id uint) *models.Campaign {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.rows[id]; ok {
		cp := *c
		return &cp
	}
	return nil
}

func (r *fakeCampaignRepo) ByID(ctx context.Context, id uint) (*models.Campaign, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	return r.get(id), nil
}

func (r *fakeCampaignRepo) ByUUID(ctx context.Context, id string) (*models.Campaign, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.UUID.String() == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCampaignRepo) all() []*models.Campaign {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Campaign, 0, len(r.rows))
	for _, c := range r.rows {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *fakeCampaignRepo) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []*models.Campaign
	for _, c := range r.all() {
		if filter.IsActive != nil && c.Active() != *filter.IsActive {
			continue
		}
		if filter.HasWinner != nil && c.HasWinner != *filter.HasWinner {
			continue
		}
		if filter.CountdownEndsAfter != nil && !c.CountdownEnd.After(*filter.CountdownEndsAfter) {
			continue
		}
		if filter.CountdownEndsBy != nil && c.CountdownEnd.After(*filter.CountdownEndsBy) {
			continue
		}
		if filter.CreatedAfter != nil && c.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		if filter.CreatedBefore != nil && !c.CreatedAt.Before(*filter.CreatedBefore) {
			continue
		}
		out = append(out, c)
	}
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCampaignRepo) Save(ctx context.Context, c *models.Campaign) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeCampaignRepo) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func (r *fakeCampaignRepo) ListSelectable(ctx context.Context, now time.Time) ([]*models.Campaign, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []*models.Campaign
	for _, c := range r.all() {
		if c.IsSelectableAt(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCampaignRepo) Update(ctx context.Context, c *models.Campaign) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[c.ID]
	if !ok {
		return repository.ErrNoRowsAffected
	}
	cp := *c
	cp.HasWinner = stored.HasWinner
	cp.UUID = stored.UUID
	cp.CreatedAt = stored.CreatedAt
	r.rows[c.ID] = &cp
	return nil
}

func (r *fakeCampaignRepo) Delete(ctx context.Context, id uint) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNoRowsAffected
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeCampaignRepo) MarkWon(ctx context.Context, id uint) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok || c.HasWinner {
		return repository.ErrConcurrentUpdate
	}
	c.HasWinner = true
	return nil
}

func (r *fakeCampaignRepo) SumSponsorAmount(ctx context.Context) (decimal.Decimal, error) {
	if r.failWith != nil {
		return decimal.Zero, r.failWith
	}
	sum := decimal.Zero
	for _, c := range r.all() {
		if c.SponsorAmount != nil {
			sum = sum.Add(*c.SponsorAmount)
		}
	}
	return sum, nil
}

func (r *fakeCampaignRepo) TopSponsors(ctx context.Context, limit int) ([]models.SponsorTotal, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	totals := map[string]*models.SponsorTotal{}
	for _, c := range r.all() {
		t, ok := totals[c.SponsorName]
		if !ok {
			t = &models.SponsorTotal{SponsorName: c.SponsorName}
			totals[c.SponsorName] = t
		}
		t.CampaignCount++
		if c.SponsorAmount != nil {
			t.TotalAmount = t.TotalAmount.Add(*c.SponsorAmount)
		}
	}
	out := make([]models.SponsorTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TotalAmount.Equal(out[j].TotalAmount) {
			return out[i].TotalAmount.GreaterThan(out[j].TotalAmount)
		}
		if out[i].CampaignCount != out[j].CampaignCount {
			return out[i].CampaignCount > out[j].CampaignCount
		}
		return out[i].SponsorName < out[j].SponsorName
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fakeWinnerRepo struct {
	mu        sync.Mutex
	nextID    uint
	rows      []*models.Winner
	campaigns *fakeCampaignRepo
	failWith  error
}

func newFakeWinnerRepo(campaigns *fakeCampaignRepo) *fakeWinnerRepo {
	return &fakeWinnerRepo{campaigns: campaigns}
}

func (r *fakeWinnerRepo) snapshot() []*models.Winner {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Winner, 0, len(r.rows))
	for i := len(r.rows) - 1; i >= 0; i-- {
		cp := *r.rows[i]
		out = append(out, &cp)
	}
	return out
}

func (r *fakeWinnerRepo) ByID(ctx context.Context, id uint) (*models.Winner, error) {
	for _, w := range r.snapshot() {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, nil
}

func (r *fakeWinnerRepo) ByUUID(ctx context.Context, id string) (*models.Winner, error) {
	for _, w := range r.snapshot() {
		if w.UUID.String() == id {
			return w, nil
		}
	}
	return nil, nil
}

func (r *fakeWinnerRepo) ByCampaignID(ctx context.Context, campaignID uint) (*models.Winner, error) {
	for _, w := range r.snapshot() {
		if w.CampaignID == campaignID {
			return w, nil
		}
	}
	return nil, nil
}

func (r *fakeWinnerRepo) ByCampaignUUID(ctx context.Context, campaignUUID uuid.UUID) (*models.Winner, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, w := range r.snapshot() {
		if w.CampaignUUID == campaignUUID {
			return w, nil
		}
	}
	return nil, nil
}

func (r *fakeWinnerRepo) ByFilter(ctx context.Context, filter models.WinnerFilter, orderBy string, limit, offset int) ([]*models.Winner, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []*models.Winner
	for _, w := range r.snapshot() {
		if winnerMatches(w, filter) {
			out = append(out, w)
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeWinnerRepo) Save(ctx context.Context, w *models.Winner) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.CampaignID == w.CampaignID {
			return fmt.Errorf("%w: winners.campaign_id %d", repository.ErrDuplicateKey, w.CampaignID)
		}
	}
	r.nextID++
	w.ID = r.nextID
	cp := *w
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *fakeWinnerRepo) Count(ctx context.Context, filter models.WinnerFilter) (int64, error) {
	rows, err := r.ByFilter(ctx, filter, "", 0, 0)
	return int64(len(rows)), err
}

func winnerMatches(w *models.Winner, filter models.WinnerFilter) bool {
	if filter.CampaignUUID != nil && w.CampaignUUID != *filter.CampaignUUID {
		return false
	}
	if filter.WonAfter != nil && w.WonAt.Before(*filter.WonAfter) {
		return false
	}
	if filter.WonBefore != nil && !w.WonAt.Before(*filter.WonBefore) {
		return false
	}
	return true
}

func (r *fakeWinnerRepo) ListWithCampaign(ctx context.Context, filter models.WinnerFilter, limit, offset int) ([]*models.WinnerWithCampaign, error) {
	winners, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if offset > len(winners) {
		return nil, nil
	}
	winners = winners[offset:]
	if limit > 0 && limit < len(winners) {
		winners = winners[:limit]
	}
	out := make([]*models.WinnerWithCampaign, 0, len(winners))
	for _, w := range winners {
		row := &models.WinnerWithCampaign{Winner: *w}
		if r.campaigns != nil {
			if c := r.campaigns.get(w.CampaignID); c != nil {
				row.SponsorName = &c.SponsorName
				row.PrizeValue = c.PrizeValue
			}
		}
		out = append(out, row)
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu   sync.Mutex
	rows []*models.AuditLog
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.rows))
	for _, a := range r.rows {
		out = append(out, a.Action)
	}
	return out
}

func (r *fakeAuditRepo) count(action string) int {
	n := 0
	for _, a := range r.actions() {
		if a == action {
			n++
		}
	}
	return n
}

func (r *fakeAuditRepo) Save(ctx context.Context, a *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, a)
	return nil
}

func (r *fakeAuditRepo) ByID(ctx context.Context, id uint) (*models.AuditLog, error) { return nil, nil }
func (r *fakeAuditRepo) ByFilter(ctx context.Context, f models.AuditLogFilter, orderBy string, limit, offset int) ([]*models.AuditLog, error) {
	return nil, nil
}
func (r *fakeAuditRepo) Count(ctx context.Context, f models.AuditLogFilter) (int64, error) {
	return int64(len(r.actions())), nil
}
func (r *fakeAuditRepo) ListByAdmin(ctx context.Context, adminID uint, limit, offset int) ([]*models.AuditLog, error) {
	return nil, nil
}
func (r *fakeAuditRepo) ListByCampaign(ctx context.Context, campaignID uint, limit, offset int) ([]*models.AuditLog, error) {
	return nil, nil
}
func (r *fakeAuditRepo) ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error) {
	return nil, nil
}
func (r *fakeAuditRepo) ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	return nil, nil
}
func (r *fakeAuditRepo) ListSecurityEvents(ctx context.Context, limit, offset int) ([]*models.AuditLog, error) {
	return nil, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeThrottle struct {
	mu      sync.Mutex
	limit   int
	counts  map[string]int
	failErr error
}

func newFakeThrottle(limit int) *fakeThrottle {
	return &fakeThrottle{limit: limit, counts: make(map[string]int)}
}

func (t *fakeThrottle) Allow(ctx context.Context, clientIP, campaignID string) (bool, error) {
	if t.failErr != nil {
		return false, t.failErr
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	key := clientIP + ":" + campaignID
	t.counts[key]++
	return t.counts[key] <= t.limit, nil
}

var _ services.ClaimThrottle = (*fakeThrottle)(nil)

type fakeAdminRepo struct {
	mu        sync.Mutex
	admins    map[string]*models.Admin
	lastLogin map[uint]time.Time
	failWith  error
}

func newFakeAdminRepo(admins ...*models.Admin) *fakeAdminRepo {
	r := &fakeAdminRepo{admins: make(map[string]*models.Admin), lastLogin: make(map[uint]time.Time)}
	for i, a := range admins {
		a.ID = uint(i + 1)
		r.admins[strings.ToLower(a.Username)] = a
	}
	return r
}

func (r *fakeAdminRepo) ByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.admins[strings.ToLower(strings.TrimSpace(username))]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeAdminRepo) UpdateLastLogin(ctx context.Context, adminID uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLogin[adminID] = at
	return nil
}

func (r *fakeAdminRepo) ByUUID(ctx context.Context, id string) (*models.Admin, error) { return nil, nil }
func (r *fakeAdminRepo) ByID(ctx context.Context, id uint) (*models.Admin, error) { return nil, nil }
func (r *fakeAdminRepo) ByFilter(ctx context.Context, f models.AdminFilter, orderBy string, limit, offset int) ([]*models.Admin, error) {
	return nil, nil
}
func (r *fakeAdminRepo) Save(ctx context.Context, a *models.Admin) error { return nil }
func (r *fakeAdminRepo) Count(ctx context.Context, f models.AdminFilter) (int64, error) {
	return 0, nil
}
func (r *fakeAdminRepo) Exists(ctx context.Context, f models.AdminFilter) (bool, error) {
	if f.Username == nil {
		return len(r.admins) > 0, nil
	}
	a, err := r.ByUsername(ctx, *f.Username)
	return a != nil, err
}

type fakeCaptcha struct {
	accept bool
}

func (c fakeCaptcha) GenerateRotate(ctx context.Context) (*services.RotateChallenge, error) {
	return &services.RotateChallenge{ID: "challenge-1", MasterImageBase64: "master", ThumbImageBase64: "thumb"}, nil
}

func (c fakeCaptcha) VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool {
	return c.accept
}

type fakeObjectStorage struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (s *fakeObjectStorage) PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
	return "https://cdn.example.com/" + key, nil
}

var (
	_ repository.CampaignRepository = (*fakeCampaignRepo)(nil)
	_ repository.WinnerRepository   = (*fakeWinnerRepo)(nil)
	_ repository.AuditLogRepository = (*fakeAuditRepo)(nil)
	_ repository.AdminRepository    = (*fakeAdminRepo)(nil)
	_ repository.TransactionRunner  = fakeTxRunner{}
	_ services.CaptchaService       = fakeCaptcha{}
	_ services.ObjectStorage        = (*fakeObjectStorage)(nil)
)

// testClock is a clock tests can move
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{t: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
