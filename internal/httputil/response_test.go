package httputil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var env map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestWriteJSONSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 200, "Posts retrieved", map[string]int{"count": 3})

	if rec.Code != 200 {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	env := decodeEnvelope(t, rec)
	if env["statusCode"].(float64) != 200 {
		t.Errorf("statusCode = %v", env["statusCode"])
	}
	if env["message"] != "Posts retrieved" {
		t.Errorf("message = %v", env["message"])
	}
	if env["success"] != true {
		t.Errorf("success = %v", env["success"])
	}
	if env["data"].(map[string]interface{})["count"].(float64) != 3 {
		t.Errorf("data = %v", env["data"])
	}
}

func TestWriteJSONNilDataStaysPresent(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 200, "OK", nil)

	env := decodeEnvelope(t, rec)
	if _, present := env["data"]; !present {
		t.Error("data field must be present even when nil")
	}
}

func TestErrorHelpers(t *testing.T) {
	cases := []struct {
		name  string
		write func(rec *httptest.ResponseRecorder)
		code  int
	}{
		{"bad request", func(rec *httptest.ResponseRecorder) { WriteBadRequest(rec, "bad") }, 400},
		{"unauthorized", func(rec *httptest.ResponseRecorder) { WriteUnauthorized(rec, "no") }, 401},
		{"forbidden", func(rec *httptest.ResponseRecorder) { WriteForbidden(rec, "stop") }, 403},
		{"not found", func(rec *httptest.ResponseRecorder) { WriteNotFound(rec, "gone") }, 404},
		{"conflict", func(rec *httptest.ResponseRecorder) { WriteConflict(rec, "taken") }, 409},
		{"internal", func(rec *httptest.ResponseRecorder) { WriteInternalError(rec, "boom") }, 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)

			if rec.Code != tc.code {
				t.Errorf("status = %d, want %d", rec.Code, tc.code)
			}
			env := decodeEnvelope(t, rec)
			if env["success"] != false {
				t.Errorf("success = %v, want false", env["success"])
			}
			if env["statusCode"].(float64) != float64(tc.code) {
				t.Errorf("statusCode = %v, want %d", env["statusCode"], tc.code)
			}
			if env["data"] != nil {
				t.Errorf("error data = %v, want null", env["data"])
			}
		})
	}
}
