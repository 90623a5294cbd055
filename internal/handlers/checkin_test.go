package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"techie-backend/internal/models"
)

func TestCheckInFlow(t *testing.T) {
	s := newTestServer(t)
	userID := s.addUser(t, "alice", models.RoleUser, "hourly")

	rr := s.do(t, http.MethodPost, "/check-ins", userID, "", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var session models.Session
	decode(t, rr, &session)
	if session.Status != models.SessionActive || session.UserID != userID {
		t.Fatalf("unexpected session: %+v", session)
	}

	rr = s.do(t, http.MethodPost, "/check-ins", userID, "", nil)
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "CONFLICT" {
		t.Fatalf("expected 409 CONFLICT on second check-in, got %d", rr.Code)
	}

	s.clock.Advance(90 * time.Minute)

	rr = s.do(t, http.MethodGet, "/check-ins/current/"+userID.String(), userID, "", nil)
	var current struct {
		CheckIn *struct {
			ID             uuid.UUID `json:"id"`
			ElapsedMinutes int       `json:"elapsed_minutes"`
		} `json:"check_in"`
	}
	decode(t, rr, &current)
	if current.CheckIn == nil || current.CheckIn.ElapsedMinutes != 90 {
		t.Fatalf("expected active session with 90 elapsed minutes, got %+v", current.CheckIn)
	}

	rr = s.do(t, http.MethodPatch, "/check-ins/"+session.ID.String()+"/checkout", userID, "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	decode(t, rr, &session)
	if session.Status != models.SessionCompleted || *session.DurationMinutes != 90 {
		t.Fatalf("unexpected completed session: %+v", session)
	}

	rr = s.do(t, http.MethodPatch, "/check-ins/"+session.ID.String()+"/checkout", userID, "", nil)
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "INVALID_STATE" {
		t.Fatalf("expected 409 INVALID_STATE, got %d", rr.Code)
	}

	rr = s.do(t, http.MethodGet, "/check-ins/current/"+userID.String(), userID, "", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"check_in":null`) {
		t.Fatalf("expected null check_in, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestCheckOut_Errors(t *testing.T) {
	s := newTestServer(t)
	owner := s.addUser(t, "bob", models.RoleUser, "hourly")
	other := s.addUser(t, "carol", models.RoleUser, "hourly")

	rr := s.do(t, http.MethodPost, "/check-ins", owner, "", nil)
	var session models.Session
	decode(t, rr, &session)

	tests := []struct {
		name   string
		path   string
		as     uuid.UUID
		status int
	}{
		{"malformed id", "/check-ins/not-a-uuid/checkout", owner, http.StatusBadRequest},
		{"unknown id", "/check-ins/" + uuid.NewString() + "/checkout", owner, http.StatusNotFound},
		{"other user", "/check-ins/" + session.ID.String() + "/checkout", other, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := s.do(t, http.MethodPatch, tc.path, tc.as, "", nil)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
		})
	}

	rr = s.do(t, http.MethodPatch, "/check-ins/"+session.ID.String()+"/checkout", other, models.RoleAdmin, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected admin check-out to succeed, got %d", rr.Code)
	}
}

func TestRecentActivity(t *testing.T) {
	s := newTestServer(t)
	userID := s.addUser(t, "dave", models.RoleUser, "hourly")

	for i := 0; i < 7; i++ {
		var session models.Session
		decode(t, s.do(t, http.MethodPost, "/check-ins", userID, "", nil), &session)
		s.clock.Advance(time.Hour)
		s.do(t, http.MethodPatch, "/check-ins/"+session.ID.String()+"/checkout", userID, "", nil)
	}

	rr := s.do(t, http.MethodGet, "/users/"+userID.String()+"/recent-activity", userID, "", nil)
	var recent []models.Session
	decode(t, rr, &recent)
	if len(recent) != 5 {
		t.Fatalf("expected default of 5, got %d", len(recent))
	}

	rr = s.do(t, http.MethodGet, "/users/"+userID.String()+"/recent-activity?limit=abc", userID, "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rr.Code)
	}

	rr = s.do(t, http.MethodGet, "/users/"+userID.String()+"/recent-activity", uuid.New(), "", nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for other caller, got %d", rr.Code)
	}
}

func TestScanFlow(t *testing.T) {
	s := newTestServer(t)
	userID := s.addUser(t, "erin", models.RoleUser, "hourly")

	rr := s.do(t, http.MethodGet, "/qrcode/current", userID, "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before generate, got %d", rr.Code)
	}

	rr = s.do(t, http.MethodPost, "/qrcode/generate", userID, "", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var code models.QRCode
	decode(t, rr, &code)
	if !strings.HasPrefix(code.QRCode, "data:image/png;base64,") {
		t.Fatalf("expected png data URL")
	}

	rr = s.do(t, http.MethodGet, "/qrcode/current", userID, "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 after generate, got %d", rr.Code)
	}

	bad := models.ScanRequest{Payload: `{"userId":"` + userID.String() + `","workspace":"elsewhere","timestamp":1,"token":"` + strings.Repeat("a", 32) + `"}`}
	rr = s.do(t, http.MethodPost, "/check-ins/scan", userID, "", bad)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for foreign workspace, got %d", rr.Code)
	}

	rr = s.do(t, http.MethodPost, "/check-ins/scan", userID, "", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rr.Code)
	}

	rr = s.do(t, http.MethodGet, "/check-ins/current/"+userID.String(), userID, "", nil)
	if !strings.Contains(rr.Body.String(), `"check_in":null`) {
		t.Fatalf("rejected scans must not check in: %s", rr.Body.String())
	}

	payload := s.issuedPayload(t, userID)

	rr = s.do(t, http.MethodPost, "/check-ins/scan", userID, "", models.ScanRequest{Payload: payload})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 on scan in, got %d: %s", rr.Code, rr.Body.String())
	}
	var result models.ScanResult
	decode(t, rr, &result)
	if result.Action != models.ScanCheckedIn {
		t.Fatalf("expected checked_in, got %q", result.Action)
	}

	s.clock.Advance(20 * time.Minute)

	rr = s.do(t, http.MethodPost, "/check-ins/scan", userID, "", models.ScanRequest{Payload: payload})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on scan out, got %d: %s", rr.Code, rr.Body.String())
	}
	decode(t, rr, &result)
	if result.Action != models.ScanCheckedOut || *result.Session.DurationMinutes != 20 {
		t.Fatalf("unexpected scan result: %+v", result)
	}
}
