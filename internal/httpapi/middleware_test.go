package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/notfawkes/FitMeat/internal/identity"
)

type verifierMock struct {
	user *identity.User
	err  error
}

func (m verifierMock) VerifySession(ctx context.Context, token string) (*identity.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func TestSessionMiddleware_IssuesCookieWhenAbsent(t *testing.T) {
	var seenSession string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenSession = getSessionIDFromContext(r.Context())
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)

	SessionMiddleware(next).ServeHTTP(recorder, request)

	if seenSession == "" {
		t.Fatal("Expected a session ID in the handler context")
	}

	cookies := recorder.Result().Cookies()
	var found *http.Cookie
	for _, c := range cookies {
		if c.Name == SessionCookieName {
			found = c
		}
	}
	if found == nil {
		t.Fatal("Expected a Set-Cookie for the session")
	}
	if found.Value != seenSession {
		t.Errorf("Cookie value %q does not match context session %q", found.Value, seenSession)
	}
	if !found.HttpOnly {
		t.Error("Expected the session cookie to be HttpOnly")
	}
}

func TestSessionMiddleware_ReusesExistingCookie(t *testing.T) {
	var seenSession string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenSession = getSessionIDFromContext(r.Context())
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-existing"})

	SessionMiddleware(next).ServeHTTP(recorder, request)

	if seenSession != "sess-existing" {
		t.Errorf("Expected existing session to be reused, got %q", seenSession)
	}
	if len(recorder.Result().Cookies()) != 0 {
		t.Error("Expected no Set-Cookie when the session cookie is already present")
	}
}

func TestAuthMiddleware_Success(t *testing.T) {
	var seenUser *identity.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = getUserFromContext(r.Context())
	})

	mw := AuthMiddleware(verifierMock{user: &identity.User{ID: "user-123"}})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("Authorization", "Bearer token-abc")

	mw(next).ServeHTTP(recorder, request)

	if seenUser == nil || seenUser.ID != "user-123" {
		t.Errorf("Expected verified user in context, got %+v", seenUser)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	mw := AuthMiddleware(verifierMock{user: &identity.User{ID: "user-123"}})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)

	mw(next).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
	if called {
		t.Error("Expected the next handler to be skipped")
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	mw := AuthMiddleware(verifierMock{err: identity.ErrInvalidSession})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("Authorization", "Bearer expired")

	mw(next).ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("Expected status code %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestRequestIDMiddleware_EchoesHeader(t *testing.T) {
	var seenID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = getRequestID(r.Context())
	})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/", nil)
	request.Header.Set("X-Request-ID", "req-fixed")

	RequestIDMiddleware(next).ServeHTTP(recorder, request)

	if seenID != "req-fixed" {
		t.Errorf("Expected request ID from header, got %q", seenID)
	}
	if got := recorder.Header().Get("X-Request-ID"); got != "req-fixed" {
		t.Errorf("Expected X-Request-ID echoed on the response, got %q", got)
	}
}
