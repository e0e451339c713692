package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/agrimandi/agrimandi-backend/api/responses"
	"github.com/agrimandi/agrimandi-backend/pkg/config"
	pkgerrors "github.com/agrimandi/agrimandi-backend/pkg/errors"
	"github.com/agrimandi/agrimandi-backend/pkg/logger"
	pkgredis "github.com/agrimandi/agrimandi-backend/pkg/redis"
)

const (
	idempotencyHeader   = "Idempotency-Key"
	idempotencyReplayed = "X-Idempotency-Replayed"
)

// idempotencyRule marks a mutating route as requiring an Idempotency-Key.
// Orders and payments use the longer critical TTL so a client retrying a
// day-old request still gets the stored response instead of a double charge.
type idempotencyRule struct {
	method   string
	scope    string
	critical bool
	match    func(segments []string) bool
}

var idempotencyRules = []idempotencyRule{
	{
		method:   http.MethodPost,
		scope:    "orders.place",
		critical: true,
		match:    func(s []string) bool { return len(s) == 1 && s[0] == "orders" },
	},
	{
		method:   http.MethodPost,
		scope:    "orders.cancel",
		critical: true,
		match:    func(s []string) bool { return len(s) == 3 && s[0] == "orders" && s[2] == "cancel" },
	},
	{
		method:   http.MethodPost,
		scope:    "orders.payment",
		critical: true,
		match:    func(s []string) bool { return len(s) == 3 && s[0] == "orders" && s[2] == "payment" },
	},
	{
		method: http.MethodPost,
		scope:  "inventory.acquire",
		match:  func(s []string) bool { return len(s) == 1 && s[0] == "inventory" },
	},
	{
		method: http.MethodPost,
		scope:  "inventory.cancel",
		match:  func(s []string) bool { return len(s) == 3 && s[0] == "inventory" && s[2] == "cancel" },
	},
}

type idempotencyRecord struct {
	RequestHash string          `json:"request_hash"`
	Status      int             `json:"status"`
	ContentType string          `json:"content_type,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
}

func (rec idempotencyRecord) inFlight() bool { return rec.Status == 0 }

type responseCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (c *responseCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(p []byte) (int, error) {
	c.buf.Write(p)
	return c.ResponseWriter.Write(p)
}

// Idempotency replays stored responses for retried mutating requests.
// The first request under a key stores an in-flight marker, runs the
// handler and persists the response. Retries with the same key and body
// get the stored response back; retries with a different body are rejected.
func Idempotency(store pkgredis.IdempotencyStore, cfg config.IdempotencyConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchRule(r)
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header is required"))
				return
			}

			hash, err := hashRequest(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading request body"))
				return
			}

			storeKey := store.IdempotencyKey(rule.scope, key)
			ttl := cfg.TTL
			if rule.critical {
				ttl = cfg.CriticalTTL
			}

			if raw, err := store.Get(ctx, storeKey); err == nil {
				replayStored(ctx, logg, w, raw, hash)
				return
			} else if !errors.Is(err, redis.Nil) {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency store unavailable"))
				return
			}

			marker, _ := json.Marshal(idempotencyRecord{RequestHash: hash})
			acquired, err := store.SetNX(ctx, storeKey, string(marker), ttl)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency store unavailable"))
				return
			}
			if !acquired {
				// lost the race to a concurrent request with the same key
				if raw, err := store.Get(ctx, storeKey); err == nil {
					replayStored(ctx, logg, w, raw, hash)
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is in progress"))
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			if capture.status == 0 {
				capture.status = http.StatusOK
			}

			if capture.status >= http.StatusInternalServerError {
				// let the client retry server failures under the same key
				if err := store.Del(ctx, storeKey); err != nil && logg != nil {
					logg.Error(ctx, "idempotency.release_failed", err)
				}
				return
			}

			stored, err := json.Marshal(idempotencyRecord{
				RequestHash: hash,
				Status:      capture.status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        json.RawMessage(capture.buf.Bytes()),
			})
			if err == nil {
				err = store.Set(ctx, storeKey, string(stored), ttl)
			}
			if err != nil && logg != nil {
				logg.Error(ctx, "idempotency.persist_failed", err)
			}
		})
	}
}

func matchRule(r *http.Request) (idempotencyRule, bool) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
	if path == r.URL.Path {
		return idempotencyRule{}, false
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for _, rule := range idempotencyRules {
		if rule.method == r.Method && rule.match(segments) {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

func hashRequest(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(append([]byte(r.Method+" "+r.URL.Path+"\n"), body...))
	return hex.EncodeToString(sum[:]), nil
}

func replayStored(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, raw, hash string) {
	var rec idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding idempotency record"))
		return
	}

	if rec.RequestHash != hash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different request"))
		return
	}

	if rec.inFlight() {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this idempotency key is in progress"))
		return
	}

	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.Header().Set(idempotencyReplayed, "true")
	w.WriteHeader(rec.Status)
	_, _ = w.Write(rec.Body)
}
