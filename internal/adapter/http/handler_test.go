package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailtrack/internal/core/domain"
	"mailtrack/internal/core/port"
)

type trackedCall struct {
	deliveryID string
	url        string
	meta       port.EventMeta
}

type stubTracking struct {
	opens  []trackedCall
	clicks []trackedCall
}

func (s *stubTracking) RecordOpen(_ context.Context, id string, meta port.EventMeta) {
	s.opens = append(s.opens, trackedCall{deliveryID: id, meta: meta})
}

func (s *stubTracking) RecordClick(_ context.Context, id, url string, meta port.EventMeta) {
	s.clicks = append(s.clicks, trackedCall{deliveryID: id, url: url, meta: meta})
}

func (s *stubTracking) Apply(context.Context, domain.TrackingEvent) error { return nil }

type stubSweep struct {
	calls  int
	result *port.SweepResult
}

func (s *stubSweep) RunSweep(context.Context) (*port.SweepResult, error) {
	s.calls++
	return s.result, nil
}

type stubMailing struct {
	delivery *domain.DeliveryRecord
	counters *domain.AnalyticsCounters
}

func (s *stubMailing) SendTracked(_ context.Context, req port.SendReq) (*domain.DeliveryRecord, error) {
	if req.To == "" {
		return nil, fmt.Errorf("%w: recipient is required", port.ErrInvalidRequest)
	}
	return &domain.DeliveryRecord{ID: "d-new", Recipient: req.To, Subject: req.Subject}, nil
}

func (s *stubMailing) Schedule(_ context.Context, req port.ScheduleReq) (*domain.ScheduledEmail, error) {
	return &domain.ScheduledEmail{ID: "e-new", To: req.To, Status: domain.EmailStatusScheduled}, nil
}

func (s *stubMailing) CreateCampaign(_ context.Context, req port.CampaignReq) (*domain.Campaign, error) {
	return &domain.Campaign{ID: "c-new", Name: req.Name, Status: domain.CampaignStatusScheduled}, nil
}

func (s *stubMailing) GetDelivery(_ context.Context, id string) (*domain.DeliveryRecord, error) {
	if s.delivery == nil || s.delivery.ID != id {
		return nil, port.ErrDeliveryNotFound
	}
	return s.delivery, nil
}

func (s *stubMailing) Stats(context.Context) (*domain.AnalyticsCounters, error) {
	return s.counters, nil
}

type handlerEnv struct {
	tracking *stubTracking
	sweep    *stubSweep
	mailing  *stubMailing
	srv      *httptest.Server
}

func newHandlerEnv(t *testing.T, secret string) *handlerEnv {
	t.Helper()
	env := &handlerEnv{
		tracking: &stubTracking{},
		sweep:    &stubSweep{result: &port.SweepResult{Emails: port.SweepBucket{Processed: 2, Sent: 2}}},
		mailing: &stubMailing{
			counters: &domain.AnalyticsCounters{TotalOpens: 4, TotalClicks: 1},
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(env.tracking, env.sweep, env.mailing, secret, "https://app.example.com", logger)
	env.srv = httptest.NewServer(h.Router())
	t.Cleanup(env.srv.Close)
	return env
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
}

func TestPixelServesGIFAndRecordsOpen(t *testing.T) {
	env := newHandlerEnv(t, "")

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/tracking/pixel/d-1", nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "Thunderbird/115")
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/gif", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Len(t, body, 43)

	require.Len(t, env.tracking.opens, 1)
	assert.Equal(t, "d-1", env.tracking.opens[0].deliveryID)
	assert.Equal(t, "203.0.113.7", env.tracking.opens[0].meta.IPAddress)
	assert.Equal(t, "Thunderbird/115", env.tracking.opens[0].meta.UserAgent)
}

func TestLinkRedirectsAndRecordsClick(t *testing.T) {
	env := newHandlerEnv(t, "")

	resp, err := noRedirectClient().Get(env.srv.URL + "/tracking/link/d-1?url=" + "https%3A%2F%2Fexample.com%2Fdocs")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com/docs", resp.Header.Get("Location"))

	require.Len(t, env.tracking.clicks, 1)
	assert.Equal(t, "d-1", env.tracking.clicks[0].deliveryID)
	assert.Equal(t, "https://example.com/docs", env.tracking.clicks[0].url)
}

func TestLinkWithoutTargetFallsBackUnrecorded(t *testing.T) {
	env := newHandlerEnv(t, "")

	resp, err := noRedirectClient().Get(env.srv.URL + "/tracking/link/d-1")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Location"))
	assert.Empty(t, env.tracking.clicks)
}

func TestSchedulerRunRequiresSecret(t *testing.T) {
	env := newHandlerEnv(t, "s3cret")

	for name, header := range map[string]string{"missing": "", "wrong": "nope"} {
		t.Run(name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/scheduler/run", nil)
			require.NoError(t, err)
			if header != "" {
				req.Header.Set("X-Scheduler-Secret", header)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
	assert.Zero(t, env.sweep.calls)
}

func TestSchedulerRunRejectsAllWhenSecretUnset(t *testing.T) {
	env := newHandlerEnv(t, "")

	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/scheduler/run", nil)
	require.NoError(t, err)
	req.Header.Set("X-Scheduler-Secret", "")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, env.sweep.calls)
}

func TestSchedulerRunReturnsSweepResult(t *testing.T) {
	env := newHandlerEnv(t, "s3cret")

	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/scheduler/run", nil)
	require.NoError(t, err)
	req.Header.Set("X-Scheduler-Secret", "s3cret")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload struct {
		Success   bool             `json:"success"`
		Emails    port.SweepBucket `json:"emails"`
		Timestamp string           `json:"timestamp"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.True(t, payload.Success)
	assert.Equal(t, 2, payload.Emails.Sent)
	_, err = time.Parse(time.RFC3339, payload.Timestamp)
	assert.NoError(t, err)
	assert.Equal(t, 1, env.sweep.calls)
}

func TestGetDeliveryNotFound(t *testing.T) {
	env := newHandlerEnv(t, "")

	resp, err := http.Get(env.srv.URL + "/api/v1/deliveries/missing")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetDeliveryFound(t *testing.T) {
	env := newHandlerEnv(t, "")
	env.mailing.delivery = &domain.DeliveryRecord{ID: "d-9", Recipient: "a@example.com", OpenCount: 2, Opened: true}

	resp, err := http.Get(env.srv.URL + "/api/v1/deliveries/d-9")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec domain.DeliveryRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, "d-9", rec.ID)
	assert.EqualValues(t, 2, rec.OpenCount)
}

func TestStatsOverview(t *testing.T) {
	env := newHandlerEnv(t, "")

	resp, err := http.Get(env.srv.URL + "/api/v1/stats/overview")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var counters domain.AnalyticsCounters
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&counters))
	assert.EqualValues(t, 4, counters.TotalOpens)
	assert.EqualValues(t, 1, counters.TotalClicks)
}

func TestSendRejectsInvalidJSON(t *testing.T) {
	env := newHandlerEnv(t, "")

	resp, err := http.Post(env.srv.URL+"/api/v1/send", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSendValidationFailureIsBadRequest(t *testing.T) {
	env := newHandlerEnv(t, "")

	body, err := json.Marshal(port.SendReq{Subject: "hello", Template: "basic.html"})
	require.NoError(t, err)

	resp, err := http.Post(env.srv.URL+"/api/v1/send", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "recipient is required")
}

func TestCreateCampaignReturnsCreated(t *testing.T) {
	env := newHandlerEnv(t, "")

	body, err := json.Marshal(port.CampaignReq{
		Name: "digest", Subject: "news", Template: "campaign.html",
		ScheduledFor: time.Now().Add(time.Hour), Recipients: []string{"a@example.com"},
	})
	require.NoError(t, err)

	resp, err := http.Post(env.srv.URL+"/api/v1/campaigns", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var c domain.Campaign
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&c))
	assert.Equal(t, "c-new", c.ID)
	assert.Equal(t, domain.CampaignStatusScheduled, c.Status)
}
