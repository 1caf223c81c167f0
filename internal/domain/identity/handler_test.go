package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mediguard/mediguard/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc := NewService(newMockUserRepo())
	jwt := auth.JWTConfig{Secret: []byte("handler-test-secret-32-bytes-long!!"), TTL: time.Hour}
	return NewHandler(svc, jwt), echo.New()
}

func TestHandler_Register(t *testing.T) {
	h, e := newTestHandler()
	body := `{"username":"alice","password":"correct-horse","email":"alice@example.com","full_name":"Alice Moore","role":"patient"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token in the response")
	}
	if resp.User == nil || resp.User.Username != "alice" {
		t.Errorf("unexpected user in response: %+v", resp.User)
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("response must not expose the password hash")
	}
}

func TestHandler_Register_Conflict(t *testing.T) {
	h, e := newTestHandler()
	if _, err := h.svc.Register(nil, validInput()); err != nil {
		t.Fatalf("seed register: %v", err)
	}

	body := `{"username":"alice","password":"correct-horse","email":"other@example.com","full_name":"Alice Moore","role":"patient"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Register(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestHandler_Login(t *testing.T) {
	h, e := newTestHandler()
	if _, err := h.svc.Register(nil, validInput()); err != nil {
		t.Fatalf("seed register: %v", err)
	}

	body := `{"username":"alice","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	claims, err := auth.ParseToken(h.jwt, resp.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Username != "alice" || claims.Role != auth.RolePatient {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestHandler_Login_BadPassword(t *testing.T) {
	h, e := newTestHandler()
	if _, err := h.svc.Register(nil, validInput()); err != nil {
		t.Fatalf("seed register: %v", err)
	}

	body := `{"username":"alice","password":"wrong-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestHandler_ListUsers(t *testing.T) {
	h, e := newTestHandler()
	doc := validInput()
	doc.Username = "drbob"
	doc.Email = "bob@example.com"
	doc.Role = auth.RoleDoctor
	if _, err := h.svc.Register(nil, doc); err != nil {
		t.Fatalf("seed register: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/?role=doctor", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListUsers(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var users []*User
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(users) != 1 || users[0].Username != "drbob" {
		t.Errorf("unexpected directory: %+v", users)
	}
}

func TestHandler_Me(t *testing.T) {
	h, e := newTestHandler()
	u, err := h.svc.Register(nil, validInput())
	if err != nil {
		t.Fatalf("seed register: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithUser(req.Context(), u.ID, u.Username, u.Role))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Me(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
