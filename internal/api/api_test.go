package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/bus"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/cache"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/compliance"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/domain"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/incident"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/integration"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/payrate"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/pricing"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/recruitment"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/repository"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/shift"
	"github.com/PrasoonNair/PrimacyInHomecare-Australia-sub004/internal/worker"
)

// createTestServer wires the full stack on a temporary SQLite file, the
// in-memory cache and the channel bus.
func createTestServer(t *testing.T) *Server {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "primacy-api-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	repo, err := repository.New(domain.RepositoryConfig{Driver: "sqlite", SQLitePath: tmpPath})
	if err != nil {
		t.Fatalf("failed to open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	lru := cache.NewLRUCache(1000)
	eventBus := bus.NewChannelBus(100)
	t.Cleanup(func() { eventBus.Close() })

	rulesCfg := domain.DefaultRulesConfig()
	publisher := integration.NewPublisher(eventBus, repo)

	prices := pricing.NewService(repo, lru, rulesCfg)
	calc, err := payrate.NewCalculator(rulesCfg)
	if err != nil {
		t.Fatalf("failed to create calculator: %v", err)
	}
	screener, err := recruitment.NewScreener(rulesCfg.ScreeningRules)
	if err != nil {
		t.Fatalf("failed to create screener: %v", err)
	}

	dispatcher := integration.NewDispatcher(repo, integration.Providers{
		SMS:   integration.NewNotifier("noop", "sms"),
		Email: integration.NewNotifier("noop", "email"),
	})
	w := worker.NewWorker(eventBus, dispatcher)
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	t.Cleanup(func() { w.Stop() })

	svc := Services{
		Repo:        repo,
		Cache:       lru,
		Bus:         eventBus,
		Requester:   publisher,
		Pricing:     prices,
		PayRate:     calc,
		Shifts:      shift.NewService(repo, calc, prices, publisher),
		Compliance:  compliance.NewAggregator(repo, prices, rulesCfg.CriticalityWeights),
		Incidents:   incident.NewService(repo, incident.NewClassifier(calc.Location()), publisher, lru, incident.Contacts{Email: "officer@example.com"}),
		Recruitment: recruitment.NewService(repo, screener, publisher),
		Sync:        dispatcher,
		Worker:      w,

		MaxSyncAttempts: 5,
		Version:         "test-v1",
	}

	return NewServer(domain.ServerConfig{Host: "localhost", Port: 8080}, svc)
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := createTestServer(t)

	rr := doRequest(t, s, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decode[healthResponse](t, rr)
	if resp.Status != "healthy" || resp.Version != "test-v1" {
		t.Errorf("unexpected health response %+v", resp)
	}
	if resp.Worker == nil || resp.Worker.SubscriptionCount != 1 || resp.Worker.Topics[0] != domain.TopicIntegrationRequested {
		t.Errorf("expected worker subscribed to %s, got %+v", domain.TopicIntegrationRequested, resp.Worker)
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("expected request id header")
	}

	if rr := doRequest(t, s, http.MethodGet, "/ready", nil); rr.Code != http.StatusOK {
		t.Errorf("expected 200 from /ready, got %d", rr.Code)
	}
}

func TestHealthReportsStoppedWorker(t *testing.T) {
	eventBus := bus.NewChannelBus(10)
	t.Cleanup(func() { eventBus.Close() })

	w := worker.NewWorker(eventBus, integration.NewDispatcher(nil, integration.Providers{}))
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("failed to stop worker: %v", err)
	}

	s := NewServer(domain.ServerConfig{Host: "localhost", Port: 8080}, Services{Worker: w, Version: "test-v1"})
	rr := doRequest(t, s, http.MethodGet, "/health", nil)
	resp := decode[healthResponse](t, rr)
	if resp.Status != "degraded" || resp.Worker == nil || resp.Worker.SubscriptionCount != 0 {
		t.Errorf("expected degraded with idle worker, got %+v", resp)
	}
}

func TestPriceEndpoints(t *testing.T) {
	s := createTestServer(t)

	t.Run("DefaultTable", func(t *testing.T) {
		rr := doRequest(t, s, http.MethodGet, "/prices/01_011_0107_1_1", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		price := decode[domain.PriceResult](t, rr)
		if price.UnitPrice != 70.23 || price.Source != domain.PriceSourceDefault {
			t.Errorf("unexpected price %+v", price)
		}
	})

	t.Run("CatalogueOverridesDefault", func(t *testing.T) {
		rr := doRequest(t, s, http.MethodPost, "/prices", domain.PriceEntry{
			SupportItemCode: "01_011_0107_1_1",
			Area:            domain.AreaRemote,
			PriceLimit:      98.32,
			EffectiveDate:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}

		rr = doRequest(t, s, http.MethodGet, "/prices/01_011_0107_1_1?area=remote&age=12", nil)
		price := decode[domain.PriceResult](t, rr)
		if price.Source != domain.PriceSourceCatalogue || price.UnitPrice != 108.15 {
			t.Errorf("expected catalogue price with minor loading 108.15, got %+v", price)
		}
	})

	t.Run("UnknownArea", func(t *testing.T) {
		rr := doRequest(t, s, http.MethodGet, "/prices/01_011_0107_1_1?area=moon", nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("BadAge", func(t *testing.T) {
		rr := doRequest(t, s, http.MethodGet, "/prices/01_011_0107_1_1?age=old", nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("SupportItemRequiresCode", func(t *testing.T) {
		rr := doRequest(t, s, http.MethodPost, "/support-items", domain.SupportItem{Name: "Nameless"})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})
}

func TestPayRateEndpoint(t *testing.T) {
	s := createTestServer(t)

	// Sunday 9 March 2025, 09:00 to 12:00 in Sydney
	checkIn := time.Date(2025, 3, 8, 22, 0, 0, 0, time.UTC)
	rr := doRequest(t, s, http.MethodPost, "/pay-rates/calculate", PayRateRequest{
		CheckIn:  checkIn,
		CheckOut: checkIn.Add(3 * time.Hour),
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	result := decode[domain.PayResult](t, rr)
	if result.RuleID != "sunday" || result.Amount != 210 {
		t.Errorf("expected sunday 210.00, got %+v", result)
	}

	rr = doRequest(t, s, http.MethodPost, "/pay-rates/calculate", PayRateRequest{CheckIn: checkIn, CheckOut: checkIn})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for zero-length shift, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/pay-rates/calculate", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid JSON, got %d", rec.Code)
	}
}

func TestShiftEndpoints(t *testing.T) {
	s := createTestServer(t)

	start := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC) // Tuesday 09:00 Sydney
	rr := doRequest(t, s, http.MethodPost, "/shifts", domain.Shift{
		ParticipantID:   "participant-1",
		StaffID:         "staff-1",
		ServiceItemCode: "01_011_0107_1_1",
		ScheduledStart:  start,
		ScheduledEnd:    start.Add(2 * time.Hour),
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	sh := decode[domain.Shift](t, rr)

	rr = doRequest(t, s, http.MethodPost, "/shifts/"+sh.ID+"/check-in", ShiftEventRequest{Time: start})
	if rr.Code != http.StatusOK {
		t.Fatalf("check-in: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, s, http.MethodPost, "/shifts/"+sh.ID+"/check-out", ShiftEventRequest{Time: start.Add(2 * time.Hour)})
	if rr.Code != http.StatusOK {
		t.Fatalf("check-out: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	done := decode[domain.Shift](t, rr)
	if done.Status != domain.ShiftCompleted || done.PayAmount != 70 || done.InvoiceAmount != 140.46 {
		t.Errorf("unexpected completed shift %+v", done)
	}

	rr = doRequest(t, s, http.MethodGet, "/shifts/"+sh.ID, nil)
	if got := decode[domain.Shift](t, rr); got.Hours != 2 {
		t.Errorf("expected 2 hours stored, got %.2f", got.Hours)
	}

	if rr := doRequest(t, s, http.MethodGet, "/shifts/missing", nil); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestComplianceEndpoints(t *testing.T) {
	s := createTestServer(t)

	future := time.Now().AddDate(1, 0, 0)
	rr := doRequest(t, s, http.MethodPost, "/staff", domain.StaffMember{
		Name:                     "Jo Citizen",
		WorkerScreeningExpiry:    &future,
		PoliceCheckExpiry:        &future,
		FirstAidExpiry:           &future,
		NDISOrientationCompleted: true,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	staff := decode[domain.StaffMember](t, rr)

	rr = doRequest(t, s, http.MethodPost, "/compliance/staff/"+staff.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	report := decode[domain.ComplianceReport](t, rr)
	if report.Score != 100 || len(report.Recommendations) != 0 {
		t.Errorf("expected clean report, got %+v", report)
	}

	rr = doRequest(t, s, http.MethodGet, "/compliance/staff/"+staff.ID+"/history", nil)
	history := decode[map[string]any](t, rr)
	if history["count"].(float64) != 1 {
		t.Errorf("expected 1 score log, got %v", history["count"])
	}

	if rr := doRequest(t, s, http.MethodPost, "/compliance/staff/unknown", nil); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown staff, got %d", rr.Code)
	}
	if rr := doRequest(t, s, http.MethodPost, "/compliance/vehicle/x", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown entity type, got %d", rr.Code)
	}

	rr = doRequest(t, s, http.MethodPost, "/referrals", domain.Referral{
		ParticipantName: "Sam",
		NDISNumber:      "431234567",
		Documents:       []string{domain.DocConsentForm},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	ref := decode[domain.Referral](t, rr)
	if ref.Stage != domain.ReferralReceived {
		t.Errorf("expected default stage received, got %s", ref.Stage)
	}

	rr = doRequest(t, s, http.MethodPost, "/compliance/referral/"+ref.ID, nil)
	report = decode[domain.ComplianceReport](t, rr)
	if len(report.NotImplemented) != 1 {
		t.Errorf("expected one not-implemented check, got %v", report.NotImplemented)
	}

	rr = doRequest(t, s, http.MethodPost, "/referrals", domain.Referral{ParticipantName: "X", Stage: "limbo"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown stage, got %d", rr.Code)
	}
}

func TestIncidentEndpoints(t *testing.T) {
	s := createTestServer(t)

	rr := doRequest(t, s, http.MethodPost, "/incidents/classify", ClassifyRequest{Type: "Serious Injury"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	class := decode[domain.Classification](t, rr)
	if class.NotificationType != domain.NotifyImmediate {
		t.Errorf("expected immediate, got %s", class.NotificationType)
	}

	if rr := doRequest(t, s, http.MethodPost, "/incidents/classify", ClassifyRequest{}); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty type, got %d", rr.Code)
	}

	rr = doRequest(t, s, http.MethodPost, "/incidents", incident.ReportInput{
		Type:          "abuse",
		ParticipantID: "participant-1",
		ReportedBy:    "staff-1",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	inc := decode[domain.Incident](t, rr)

	rr = doRequest(t, s, http.MethodPost, "/incidents/"+inc.ID+"/notified", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	notified := decode[domain.Incident](t, rr)
	if !notified.NDISReported || notified.ReportedAt == nil {
		t.Errorf("expected incident marked reported, got %+v", notified)
	}
	if !notified.ReportingDeadline.Equal(inc.ReportingDeadline) {
		t.Error("deadline changed on notification")
	}

	rr = doRequest(t, s, http.MethodGet, "/incidents/overdue", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := decode[map[string]any](t, rr); got["count"].(float64) != 0 {
		t.Errorf("expected no overdue incidents, got %v", got["count"])
	}

	if rr := doRequest(t, s, http.MethodGet, "/incidents/missing", nil); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestRecruitmentEndpoints(t *testing.T) {
	s := createTestServer(t)

	rr := doRequest(t, s, http.MethodPost, "/candidates", domain.Candidate{
		Name:               "Jo Citizen",
		Email:              "jo@example.com",
		ExperienceYears:    3,
		NDISExperience:     true,
		HasWorkerScreening: true,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	cand := decode[domain.Candidate](t, rr)

	rr = doRequest(t, s, http.MethodPost, "/jobs", domain.Job{Title: "Support Worker", RequiresWorkerScreening: true})
	job := decode[domain.Job](t, rr)

	rr = doRequest(t, s, http.MethodPost, "/applications", ApplicationRequest{CandidateID: cand.ID, JobID: job.ID})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decode[ApplicationResponse](t, rr)
	if created.Application.Status != domain.ApplicationShortlisted || created.Screening.Score != 85 {
		t.Errorf("expected shortlisted at 85, got %+v / %+v", created.Application, created.Screening)
	}
	id := created.Application.ID

	rr = doRequest(t, s, http.MethodPut, "/applications/"+id+"/status", recruitment.StatusUpdate{
		Status: domain.ApplicationHired,
		Actor:  "coordinator",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for skipped stages, got %d", rr.Code)
	}

	rr = doRequest(t, s, http.MethodPut, "/applications/"+id+"/status", recruitment.StatusUpdate{
		Status: domain.ApplicationInterviewed,
		Actor:  "coordinator",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, s, http.MethodGet, "/applications/"+id, nil)
	detail := decode[map[string]json.RawMessage](t, rr)
	var history []domain.ApplicationStatusChange
	if err := json.Unmarshal(detail["history"], &history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("expected 3 status changes, got %d", len(history))
	}

	if rr := doRequest(t, s, http.MethodPost, "/applications/"+id+"/screen", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 when re-screening, got %d", rr.Code)
	}

	// The shortlist email is delivered through the bus and worker.
	deadline := time.Now().Add(2 * time.Second)
	for {
		rr = doRequest(t, s, http.MethodGet, "/integrations/sync?status=synced", nil)
		got := decode[map[string]any](t, rr)
		if got["count"].(float64) >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for candidate email sync record")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestSyncEndpoints(t *testing.T) {
	s := createTestServer(t)

	if rr := doRequest(t, s, http.MethodGet, "/integrations/sync?status=lost", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", rr.Code)
	}

	rr := doRequest(t, s, http.MethodPost, "/integrations/sync/retry", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := decode[map[string]int](t, rr); got["synced"] != 0 {
		t.Errorf("expected nothing to retry, got %d", got["synced"])
	}
}

func TestServerShutdownWithoutStart(t *testing.T) {
	s := createTestServer(t)
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestCORSMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name        string
		origins     []string
		origin      string
		wantOrigin  string
		credentials bool
	}{
		{"AnyOrigin", nil, "https://portal.example.com", "*", false},
		{"ListedOrigin", []string{"https://portal.example.com"}, "https://portal.example.com", "https://portal.example.com", true},
		{"UnlistedOrigin", []string{"https://portal.example.com"}, "https://evil.example.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()

			CORSMiddleware(tt.origins)(ok).ServeHTTP(rr, req)

			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("expected allow origin %q, got %q", tt.wantOrigin, got)
			}
			if got := rr.Header().Get("Access-Control-Allow-Credentials") == "true"; got != tt.credentials {
				t.Errorf("expected credentials %v, got %v", tt.credentials, got)
			}
		})
	}

	t.Run("Preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/shifts", nil)
		rr := httptest.NewRecorder()
		CORSMiddleware(nil)(ok).ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rr.Code)
		}
	})
}

func TestRecoverMiddleware(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })

	rr := httptest.NewRecorder()
	RecoverMiddleware(panicky).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
	if got := decode[map[string]string](t, rr); got["error"] != "internal server error" {
		t.Errorf("unexpected body %v", got)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	s := createTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "req-123" {
		t.Errorf("expected request id to be echoed, got %q", got)
	}
	if rr.Header().Get(TraceIDHeader) == "" {
		t.Error("expected trace id header")
	}
}
