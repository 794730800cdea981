//go:build integration

// End-to-end tests against a running primacy server.
//
// Run with: PRIMACY_TEST_URL=http://localhost:8080 go test -tags=integration -v ./cmd/primacy/...
//
// The server must run with the default rule tables and the log or noop
// notification providers.
package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

func baseURL() string {
	if u := os.Getenv("PRIMACY_TEST_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func call(t *testing.T, method, path string, body any, wantStatus int, out any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}
	}

	req, err := http.NewRequest(method, baseURL()+path, &buf)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, wantStatus, resp.StatusCode, respBody)
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			t.Fatalf("Failed to unmarshal response: %v (body: %s)", err, respBody)
		}
	}
}

// SCENARIO: a Saturday morning shift in Sydney is worked for 3h10m.
//
//   - Hours round to the nearest quarter: 3.25
//   - Saturday multiplier 1.5 on the 35.00 base: 170.63
//   - The invoice line uses the default table price for the item
func TestSaturdayShiftLifecycle(t *testing.T) {
	start := time.Date(2025, 3, 7, 23, 0, 0, 0, time.UTC) // Saturday 10:00 AEDT

	var shift map[string]any
	call(t, http.MethodPost, "/shifts", map[string]any{
		"participantId":   "live-participant",
		"staffId":         "live-staff",
		"serviceItemCode": "01_011_0107_1_1",
		"scheduledStart":  start,
		"scheduledEnd":    start.Add(3 * time.Hour),
	}, http.StatusCreated, &shift)

	id := shift["id"].(string)
	call(t, http.MethodPost, "/shifts/"+id+"/check-in", map[string]any{"time": start}, http.StatusOK, nil)

	var done map[string]any
	call(t, http.MethodPost, "/shifts/"+id+"/check-out",
		map[string]any{"time": start.Add(3*time.Hour + 10*time.Minute)}, http.StatusOK, &done)

	if done["status"] != "completed" {
		t.Errorf("Expected completed shift, got %v", done["status"])
	}
	if done["payRuleId"] != "saturday" || done["payAmount"].(float64) != 170.63 {
		t.Errorf("Expected saturday pay 170.63, got %v %v", done["payRuleId"], done["payAmount"])
	}
}

// SCENARIO: a candidate without a required licence applies.
//
// The licence rule runs before the experience rules, so the application is
// rejected automatically and a coordinator can still override it.
func TestRecruitmentAutoRejectAndOverride(t *testing.T) {
	var cand, job map[string]any
	call(t, http.MethodPost, "/candidates", map[string]any{
		"name":               "Live Candidate",
		"experienceYears":    6,
		"ndisExperience":     true,
		"hasWorkerScreening": true,
	}, http.StatusCreated, &cand)
	call(t, http.MethodPost, "/jobs", map[string]any{
		"title":                  "Community Access Worker",
		"requiresDriversLicense": true,
	}, http.StatusCreated, &job)

	var created struct {
		Application map[string]any `json:"application"`
		Screening   map[string]any `json:"screening"`
	}
	call(t, http.MethodPost, "/applications", map[string]any{
		"candidateId": cand["id"],
		"jobId":       job["id"],
	}, http.StatusCreated, &created)

	if created.Application["status"] != "rejected" {
		t.Fatalf("Expected auto rejection, got %v", created.Application["status"])
	}

	id := created.Application["id"].(string)
	call(t, http.MethodPut, "/applications/"+id+"/status", map[string]any{
		"status": "shortlisted",
		"actor":  "coordinator",
	}, http.StatusBadRequest, nil)

	var moved map[string]any
	call(t, http.MethodPut, "/applications/"+id+"/status", map[string]any{
		"status":   "shortlisted",
		"actor":    "coordinator",
		"override": true,
		"reason":   "Licence sighted at interview",
	}, http.StatusOK, &moved)
	if moved["status"] != "shortlisted" {
		t.Errorf("Expected override to shortlist, got %v", moved["status"])
	}
}

// SCENARIO: a serious injury is reported and the regulator is notified.
func TestImmediateIncident(t *testing.T) {
	var inc map[string]any
	call(t, http.MethodPost, "/incidents", map[string]any{
		"type":          "serious_injury",
		"participantId": "live-participant",
		"reportedBy":    "live-staff",
	}, http.StatusCreated, &inc)

	if inc["severity"] != "immediate" {
		t.Errorf("Expected immediate notification, got %v", inc["severity"])
	}

	var notified map[string]any
	call(t, http.MethodPost, "/incidents/"+inc["id"].(string)+"/notified", nil, http.StatusOK, &notified)
	if notified["ndisReported"] != true {
		t.Error("Expected incident marked as reported")
	}
	if notified["reportingDeadline"] != inc["reportingDeadline"] {
		t.Error("Reporting deadline changed after notification")
	}
}
