package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mailtrack/internal/core/domain"
	"mailtrack/internal/core/port"
)

// In-memory fakes over the outbound ports, shared by the usecase tests.

type memDeliveries struct {
	mu      sync.Mutex
	records map[string]*domain.DeliveryRecord
}

func newMemDeliveries() *memDeliveries {
	return &memDeliveries{records: make(map[string]*domain.DeliveryRecord)}
}

func (m *memDeliveries) CreateDelivery(_ context.Context, d *domain.DeliveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.records[d.ID] = &cp
	return nil
}

func (m *memDeliveries) GetDelivery(_ context.Context, id string) (*domain.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, port.ErrDeliveryNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *memDeliveries) RecordOpen(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return port.ErrDeliveryNotFound
	}
	rec.Opened = true
	rec.OpenCount++
	if rec.OpenedAt == nil {
		rec.OpenedAt = &at
	}
	return nil
}

func (m *memDeliveries) RecordClick(_ context.Context, id, url string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return port.ErrDeliveryNotFound
	}
	rec.Links = domain.MergeLink(rec.Links, url)
	rec.Clicked = true
	rec.ClickCount++
	if rec.ClickedAt == nil {
		rec.ClickedAt = &at
	}
	return nil
}

func (m *memDeliveries) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type memSchedules struct {
	mu     sync.Mutex
	emails map[string]*domain.ScheduledEmail
}

func newMemSchedules() *memSchedules {
	return &memSchedules{emails: make(map[string]*domain.ScheduledEmail)}
}

func (m *memSchedules) CreateScheduledEmail(_ context.Context, e *domain.ScheduledEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.emails[e.ID] = &cp
	return nil
}

func (m *memSchedules) ListDueScheduledEmails(_ context.Context, now time.Time) ([]domain.ScheduledEmail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []domain.ScheduledEmail
	for _, e := range m.emails {
		if e.Status == domain.EmailStatusScheduled && !e.ScheduledFor.After(now) {
			due = append(due, *e)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledFor.Before(due[j].ScheduledFor) })
	return due, nil
}

func (m *memSchedules) MarkScheduledEmail(_ context.Context, id, status, sendErr string, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.emails[id]
	if !ok {
		return fmt.Errorf("unknown scheduled email %s", id)
	}
	e.Status = status
	e.Error = sendErr
	if status == domain.EmailStatusSent {
		e.SentAt = &sentAt
	}
	return nil
}

func (m *memSchedules) get(id string) domain.ScheduledEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.emails[id]
}

type memCampaigns struct {
	mu         sync.Mutex
	campaigns  map[string]*domain.Campaign
	recipients map[string][]string
}

func newMemCampaigns() *memCampaigns {
	return &memCampaigns{
		campaigns:  make(map[string]*domain.Campaign),
		recipients: make(map[string][]string),
	}
}

func (m *memCampaigns) CreateCampaign(_ context.Context, c *domain.Campaign, recipients []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.campaigns[c.ID] = &cp
	m.recipients[c.ID] = append([]string(nil), recipients...)
	return nil
}

func (m *memCampaigns) ListDueCampaigns(_ context.Context, now time.Time) ([]domain.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var due []domain.Campaign
	for _, c := range m.campaigns {
		switch c.Status {
		case domain.CampaignStatusScheduled, domain.CampaignStatusProcessing:
			if !c.ScheduledFor.After(now) {
				due = append(due, *c)
			}
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledFor.Before(due[j].ScheduledFor) })
	return due, nil
}

func (m *memCampaigns) ClaimCampaign(_ context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return false, port.ErrCampaignNotFound
	}
	if c.Status != domain.CampaignStatusScheduled {
		return false, nil
	}
	c.Status = domain.CampaignStatusProcessing
	c.StartedAt = &at
	return true, nil
}

func (m *memCampaigns) ListRecipients(_ context.Context, campaignID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.recipients[campaignID]...), nil
}

func (m *memCampaigns) MarkCampaign(_ context.Context, id, status, procErr string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return port.ErrCampaignNotFound
	}
	c.Status = status
	c.Error = procErr
	c.CompletedAt = &at
	return nil
}

func (m *memCampaigns) get(id string) domain.Campaign {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.campaigns[id]
}

type fakeAnalytics struct {
	mu          sync.Mutex
	opens       map[string]int64
	clicks      map[string]int64
	totalOpens  int64
	totalClicks int64
}

func newFakeAnalytics() *fakeAnalytics {
	return &fakeAnalytics{opens: make(map[string]int64), clicks: make(map[string]int64)}
}

func (f *fakeAnalytics) IncrementOpens(_ context.Context, day string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totalOpens++
	f.opens[day]++
	return nil
}

func (f *fakeAnalytics) IncrementClicks(_ context.Context, day string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totalClicks++
	f.clicks[day]++
	return nil
}

func (f *fakeAnalytics) GetCounters(_ context.Context) (*domain.AnalyticsCounters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &domain.AnalyticsCounters{
		TotalOpens:  f.totalOpens,
		TotalClicks: f.totalClicks,
		DailyOpens:  f.opens,
		DailyClicks: f.clicks,
	}, nil
}

// fakeMailer records sends and can be told to fail per recipient.
type fakeMailer struct {
	mu        sync.Mutex
	sent      []port.Message
	renderErr error
	sendErr   func(to string) error
}

func (f *fakeMailer) Render(name string, _ any) ([]byte, error) {
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	return []byte(fmt.Sprintf(`<html><body><a href="https://example.com/%s">link</a></body></html>`, name)), nil
}

func (f *fakeMailer) Send(_ context.Context, msg port.Message) error {
	if f.sendErr != nil {
		if err := f.sendErr(msg.To); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakePublisher captures published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []domain.TrackingEvent
}

func (f *fakePublisher) Publish(_ context.Context, evt domain.TrackingEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
}
