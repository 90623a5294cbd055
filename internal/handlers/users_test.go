package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"techie-backend/internal/models"
)

func TestUserAdministration(t *testing.T) {
	s := newTestServer(t)
	adminID := s.addUser(t, "root", models.RoleAdmin, "monthly")
	memberID := s.addUser(t, "member", models.RoleUser, "hourly")

	rr := s.do(t, http.MethodGet, "/users", memberID, models.RoleUser, nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 listing as member, got %d", rr.Code)
	}

	rr = s.do(t, http.MethodPost, "/users", adminID, models.RoleAdmin, models.CreateUserRequest{
		Username: "newbie",
		Email:    "newbie@example.com",
		FullName: "New Member",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created models.User
	decode(t, rr, &created)

	rr = s.do(t, http.MethodPost, "/users", adminID, models.RoleAdmin, models.CreateUserRequest{
		Username: "newbie",
		Email:    "other@example.com",
		FullName: "Dup",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", rr.Code)
	}

	rr = s.do(t, http.MethodPost, "/users", adminID, models.RoleAdmin, map[string]string{"username": "x"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid body, got %d", rr.Code)
	}
	var errResp models.ErrorResponse
	decode(t, rr, &errResp)
	if errResp.Error.Fields["email"] == "" || errResp.Error.RequestID == "" {
		t.Fatalf("expected field errors and request id, got %+v", errResp.Error)
	}

	rr = s.do(t, http.MethodGet, "/users", adminID, models.RoleAdmin, nil)
	var users []models.User
	decode(t, rr, &users)
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}

	rr = s.do(t, http.MethodDelete, "/users/"+created.ID.String(), adminID, models.RoleAdmin, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rr.Code)
	}
	rr = s.do(t, http.MethodDelete, "/users/"+created.ID.String(), adminID, models.RoleAdmin, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestUserSelfService(t *testing.T) {
	s := newTestServer(t)
	userID := s.addUser(t, "alice", models.RoleUser, "hourly")

	rr := s.do(t, http.MethodGet, "/users/current", userID, "", nil)
	var me models.User
	decode(t, rr, &me)
	if me.ID != userID || me.Username != "alice" {
		t.Fatalf("unexpected profile: %+v", me)
	}

	rr = s.do(t, http.MethodPatch, "/users/"+userID.String(), userID, "", map[string]string{
		"full_name":    "Alice Liddell",
		"current_plan": "daily",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	decode(t, rr, &me)
	if me.FullName != "Alice Liddell" || me.CurrentPlan != "daily" {
		t.Fatalf("unexpected update: %+v", me)
	}

	rr = s.do(t, http.MethodGet, "/billings/"+userID.String()+"/history", userID, "", nil)
	var records []models.BillingRecord
	decode(t, rr, &records)
	if len(records) != 1 || records[0].Amount != 4000 {
		t.Fatalf("expected plan change via update to be billed, got %+v", records)
	}

	rr = s.do(t, http.MethodPatch, "/users/"+uuid.NewString(), userID, "", map[string]string{"full_name": "x"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 editing someone else, got %d", rr.Code)
	}

	rr = s.do(t, http.MethodGet, "/users/current", uuid.New(), "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown caller, got %d", rr.Code)
	}
}
