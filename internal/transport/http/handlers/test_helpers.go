package http_handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/fieldcrew/marketplace-api/internal/application/auth"
	"github.com/fieldcrew/marketplace-api/internal/infrastructure/memory"
	"github.com/fieldcrew/marketplace-api/internal/infrastructure/security"
	"github.com/fieldcrew/marketplace-api/internal/transport/http/middleware"
)

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// mustReadJSON decodes JSON from r into out.
func mustReadJSON(t *testing.T, r io.Reader, out any) {
	t.Helper()

	raw, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode json failed; body=%s err=%v", string(raw), err)
	}
}

// withIdentityCtx injects an authenticated identity into the request context,
// standing in for the session guard.
func withIdentityCtx(req *http.Request, accountID, role string) *http.Request {
	ctx := middleware.WithIdentity(req.Context(), middleware.Identity{
		AccountID: accountID,
		Role:      role,
	})
	return req.WithContext(ctx)
}

// newTestService builds a service on the in-memory repo with a real (cheap)
// bcrypt hasher and a real JWT signer, so handler tests exercise the same
// crypto paths production does.
func newTestService(t *testing.T) (*auth.Service, *memory.AccountRepo, *security.JWTSigner) {
	t.Helper()

	repo := memory.NewAccountRepo()
	hasher := security.NewBcryptHasher(4)
	signer := security.NewJWTSigner("handler-test-secret", "marketplace-api-test")
	svc := auth.NewService(repo, hasher, signer, memory.NewNoopPublisher(), auth.Config{})
	return svc, repo, signer
}

func registerBody() map[string]any {
	return map[string]any{
		"name":       "Jane Mason",
		"phone":      "+14155552671",
		"email":      "jane@x.com",
		"password":   "Sup3rSecret",
		"address":    "12 Brick Lane",
		"isBusiness": false,
	}
}
