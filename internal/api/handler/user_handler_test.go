package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/99minutos/orders-console/internal/core/domain"
)

func TestUserHandler(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{users: []domain.User{*admin, *agent, *viewer}})

	c, rec := newContext(e, http.MethodGet, "/api/users", "", admin)
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var all usersResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &all)
	if len(all.Users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(all.Users))
	}

	c, rec = newContext(e, http.MethodGet, "/api/users/technicians", "", viewer)
	if err := h.Technicians(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var techs usersResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &techs)
	if len(techs.Users) != 1 || techs.Users[0].ID != agent.ID {
		t.Fatalf("unexpected technicians %+v", techs.Users)
	}
}

func TestHealthHandler(t *testing.T) {
	e := newEcho()
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	c, rec := newContext(e, http.MethodGet, "/health", "", nil)
	if err := NewHealthHandler(nil).Liveness(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("liveness: %d / %v", rec.Code, err)
	}

	c, rec = newContext(e, http.MethodGet, "/health/ready", "", nil)
	if err := NewHealthHandler(map[string]Pinger{"sessions": ok, "cache": ok}).Readiness(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, rec = newContext(e, http.MethodGet, "/health/ready", "", nil)
	_ = NewHealthHandler(map[string]Pinger{"sessions": ok, "cache": down}).Readiness(c)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Status != "degraded" || resp.Dependencies["cache"].Error != "connection refused" {
		t.Fatalf("unexpected readiness %+v", resp)
	}
}
