package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mealbridge/mealbridge-backend/pkg/logger"
)

func TestLoggingRecordsExplicitStatus(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/anything", nil))

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status to pass through, got %d", rr.Code)
	}
}

func TestLoggingDefaultsImplicitStatusToOK(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/anything", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected implicit 200, got %d", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Fatalf("body not forwarded: %q", rr.Body.String())
	}
}
