package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mfigueroa/openshelf-backend/internal/auth"
	"github.com/mfigueroa/openshelf-backend/internal/profiles"
	"github.com/mfigueroa/openshelf-backend/pkg/errors"
)

type stubAuthService struct {
	loginFn  func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
	verifyFn func(ctx context.Context, token string) error
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.loginFn(ctx, req)
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, token string) error {
	return s.verifyFn(ctx, token)
}

type stubRegisterService struct {
	registerFn func(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error)
}

func (s *stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return s.registerFn(ctx, req)
}

func TestAuthLogin(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
			if req.Email != "reader@university.edu" {
				t.Fatalf("unexpected email %q", req.Email)
			}
			return &auth.LoginResponse{
				AccessToken:  "access-token",
				RefreshToken: "refresh-token",
				User:         &profiles.ProfileDTO{Email: req.Email},
			}, nil
		},
	}

	body := []byte(`{"email":"reader@university.edu","password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Shelf-Token") != "access-token" {
		t.Fatalf("expected access token header")
	}
	var envelope struct {
		Data auth.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RefreshToken != "refresh-token" {
		t.Fatalf("expected refresh token in body")
	}
}

func TestAuthLoginBadCredentials(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
			return nil, errors.New(errors.CodeUnauthorized, "invalid credentials")
		},
	}

	body := []byte(`{"email":"reader@university.edu","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRegister(t *testing.T) {
	svc := &stubRegisterService{
		registerFn: func(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
			return &auth.RegisterResponse{
				User:              &profiles.ProfileDTO{Email: req.Email},
				VerificationToken: "verify-me",
			}, nil
		},
	}

	body := []byte(`{"name":"New Reader","email":"new@university.edu","password":"longenough"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AuthRegister(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAuthRegisterRejectsShortPassword(t *testing.T) {
	svc := &stubRegisterService{}
	body := []byte(`{"name":"New Reader","email":"new@university.edu","password":"short"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AuthRegister(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthVerifyEmail(t *testing.T) {
	var gotToken string
	svc := &stubAuthService{
		verifyFn: func(ctx context.Context, token string) error {
			gotToken = token
			return nil
		},
	}

	body := []byte(`{"token":"verify-me"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/verify-email", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	AuthVerifyEmail(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if gotToken != "verify-me" {
		t.Fatalf("expected token forwarded got %q", gotToken)
	}
}
