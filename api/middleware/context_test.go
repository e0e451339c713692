package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestActorContextParsesHeaders(t *testing.T) {
	t.Parallel()

	actorID := uuid.New()

	var gotID uuid.UUID
	var gotRole string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = ActorIDFromContext(r.Context())
		gotRole = ActorRoleFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set(actorIDHeader, actorID.String())
	req.Header.Set(actorRoleHeader, "store")

	ActorContext(nil)(inner).ServeHTTP(httptest.NewRecorder(), req)

	if gotID != actorID {
		t.Fatalf("actor id = %s, want %s", gotID, actorID)
	}
	if gotRole != "store" {
		t.Fatalf("actor role = %q, want store", gotRole)
	}
}

func TestActorContextIgnoresMalformedID(t *testing.T) {
	t.Parallel()

	var gotID uuid.UUID
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = ActorIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set(actorIDHeader, "not-a-uuid")

	ActorContext(nil)(inner).ServeHTTP(httptest.NewRecorder(), req)

	if gotID != uuid.Nil {
		t.Fatalf("actor id = %s, want nil uuid", gotID)
	}
}
