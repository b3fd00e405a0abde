package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHashAndVerifyKey(t *testing.T) {
	hash, err := HashKey("secret-key")
	if err != nil {
		t.Fatalf("HashKey failed: %v", err)
	}
	if !VerifyKey(hash, "secret-key") {
		t.Error("Expected key to verify against its own hash")
	}
	if VerifyKey(hash, "wrong-key") {
		t.Error("Expected wrong key to fail verification")
	}
}

func TestRequireKey(t *testing.T) {
	hash, _ := HashKey("secret-key")
	ok := func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) }

	t.Run("read passes without key", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireKey(hash, ok)(w, httptest.NewRequest("GET", "/api/v1/workorders", nil))
		if w.Code != 200 {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("write without key rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireKey(hash, ok)(w, httptest.NewRequest("POST", "/api/v1/workorders", nil))
		if w.Code != 401 {
			t.Errorf("Expected 401, got %d", w.Code)
		}
	})

	t.Run("write with valid key passes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/workorders", nil)
		req.Header.Set("X-API-Key", "secret-key")
		w := httptest.NewRecorder()
		RequireKey(hash, ok)(w, req)
		if w.Code != 200 {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("no hash configured disables the check", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireKey("", ok)(w, httptest.NewRequest("POST", "/api/v1/workorders", nil))
		if w.Code != 200 {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})
}
