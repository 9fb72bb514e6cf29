package response

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fieldcrew/marketplace-api/internal/domain"
)

// ---------- helpers ----------

func mustDecodeJSONLine(t *testing.T, b []byte, dst any) {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(dst); err != nil {
		t.Fatalf("decode json: %v, body=%q", err, string(b))
	}
}

func newReqWithBody(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ---------- DecodeJSON tests ----------

type decodeDst struct {
	A string `json:"a"`
	B int    `json:"b"`
}

func TestDecodeJSON_OK_SingleObject(t *testing.T) {
	req := newReqWithBody(t, `{"a":"x","b":1}`)

	var dst decodeDst
	if err := DecodeJSON(req, &dst); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	if dst.A != "x" || dst.B != 1 {
		t.Fatalf("unexpected dst: %+v", dst)
	}
}

func TestDecodeJSON_ToleratesUnknownFields(t *testing.T) {
	req := newReqWithBody(t, `{"a":"x","b":1,"c":"extra"}`)

	var dst decodeDst
	if err := DecodeJSON(req, &dst); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if dst.A != "x" {
		t.Fatalf("unexpected dst: %+v", dst)
	}
}

func TestDecodeJSON_InvalidJSON_ReturnsInvalidJSON(t *testing.T) {
	req := newReqWithBody(t, `{"a":"x",`)

	var dst decodeDst
	err := DecodeJSON(req, &dst)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.Is(err, "invalid_json") {
		t.Fatalf("expected invalid_json, got %v", err)
	}
}

func TestDecodeJSON_MultipleJSONValues_ReturnsInvalidJSON(t *testing.T) {
	req := newReqWithBody(t, `{}`+`{}`)

	var dst map[string]any
	err := DecodeJSON(req, &dst)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.Is(err, "invalid_json") {
		t.Fatalf("expected invalid_json, got %v", err)
	}
}

// ---------- WriteError / status mapping tests ----------

func TestWriteError_SingleCause_WritesErrorField(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()

	WriteError(rr, req, domain.ErrInvalidCredentials())

	res := rr.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("expected content-type json, got %q", ct)
	}

	var body ErrorBody
	mustDecodeJSONLine(t, rr.Body.Bytes(), &body)

	if body.Error != "invalid email or password" {
		t.Fatalf("unexpected error message: %q", body.Error)
	}
}

func TestWriteError_ValidationFailed_WritesFieldMap(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()

	WriteError(rr, req, domain.ErrValidationFailed(map[string]string{
		"email":    "must be a valid email address",
		"password": "must be at least 8 characters",
	}))

	res := rr.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}

	var body FieldErrorBody
	mustDecodeJSONLine(t, rr.Body.Bytes(), &body)

	if body.Message == "" {
		t.Fatalf("expected summary message")
	}
	if body.Errors["email"] != "must be a valid email address" {
		t.Fatalf("unexpected errors map: %+v", body.Errors)
	}
	if body.Errors["password"] != "must be at least 8 characters" {
		t.Fatalf("unexpected errors map: %+v", body.Errors)
	}
}

func TestWriteError_AccountLocked_MessageCarriesMinutes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()

	WriteError(rr, req, domain.ErrAccountLocked(90*time.Minute))

	res := rr.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.StatusCode)
	}

	var body ErrorBody
	mustDecodeJSONLine(t, rr.Body.Bytes(), &body)

	if !strings.Contains(body.Error, "90") {
		t.Fatalf("expected remaining minutes in message, got %q", body.Error)
	}
}

func TestWriteError_NonDomainError_HidesDetailsAndReturns500(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()

	WriteError(rr, req, assertErr("boom"))

	res := rr.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.StatusCode)
	}

	var body ErrorBody
	mustDecodeJSONLine(t, rr.Body.Bytes(), &body)

	if body.Error != "internal error" {
		t.Fatalf("expected generic message, got %q", body.Error)
	}
	if strings.Contains(rr.Body.String(), "boom") {
		t.Fatalf("leaked internal error detail: %q", rr.Body.String())
	}
}

func TestStatusFromKind_Mapping(t *testing.T) {
	cases := []struct {
		kind domain.ErrKind
		want int
	}{
		{domain.KindValidation, http.StatusBadRequest},
		{domain.KindAuth, http.StatusUnauthorized},
		{domain.KindForbidden, http.StatusForbidden},
		{domain.KindNotFound, http.StatusNotFound},
		{domain.KindConflict, http.StatusConflict},
		{domain.KindRateLimited, http.StatusTooManyRequests},
		{domain.KindInfrastructure, http.StatusServiceUnavailable},
		{domain.KindInternal, http.StatusInternalServerError},
		{"unknown", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := statusFromKind(tc.kind); got != tc.want {
			t.Fatalf("kind=%q expected %d got %d", tc.kind, tc.want, got)
		}
	}
}

// ---------- Success helpers tests ----------

func TestWriteJSON_SetsDefaultContentType(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteJSON(rr, http.StatusOK, map[string]any{"ok": true})

	res := rr.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("expected json content-type, got %q", ct)
	}
	var m map[string]any
	mustDecodeJSONLine(t, rr.Body.Bytes(), &m)
	if m["ok"] != true {
		t.Fatalf("expected ok=true, got %+v", m)
	}
}

func TestWriteJSON_DoesNotOverrideExistingContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	rr.Header().Set("Content-Type", "application/custom")

	WriteJSON(rr, http.StatusCreated, map[string]any{"x": 1})

	if ct := rr.Result().Header.Get("Content-Type"); ct != "application/custom" {
		t.Fatalf("expected preserve content-type, got %q", ct)
	}
}

func TestCreated_Writes201(t *testing.T) {
	rr := httptest.NewRecorder()

	Created(rr, map[string]any{"y": "z"})

	if rr.Result().StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Result().StatusCode)
	}

	var m map[string]any
	mustDecodeJSONLine(t, rr.Body.Bytes(), &m)
	if m["y"] != "z" {
		t.Fatalf("expected y=z, got %+v", m)
	}
}

func TestNoContent_Writes204AndNoBody(t *testing.T) {
	rr := httptest.NewRecorder()
	NoContent(rr)

	res := rr.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.StatusCode)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rr.Body.String())
	}
}

// ---------- tiny helper error type ----------

type assertErr string

func (e assertErr) Error() string { return string(e) }
