package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/josh-kwaku/accounting-service/internal/auth"
	"github.com/josh-kwaku/accounting-service/internal/handler"
	"github.com/josh-kwaku/accounting-service/internal/logging"
	"github.com/josh-kwaku/accounting-service/internal/repository"
)

type IdempotencyStore interface {
	Get(ctx context.Context, key, subject string) (*repository.IdempotencyCacheEntry, error)
	Claim(ctx context.Context, entry *repository.IdempotencyCacheEntry) (bool, error)
	Complete(ctx context.Context, entry *repository.IdempotencyCacheEntry) error
	Release(ctx context.Context, key, subject string) error
}

const (
	idempotencyTTL   = 24 * time.Hour
	anonymousSubject = "anonymous"
)

// Idempotency replays the stored response for a repeated Idempotency-Key on
// write requests. The key is claimed before the handler runs, so concurrent
// requests with one key execute it once; the others get 409 until the first
// finishes. Requests without the header pass through untouched. Server errors
// are not stored so the client can retry them.
func Idempotency(repo IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("Idempotency-Key")
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			subject, ok := auth.SubjectFromContext(r.Context())
			if !ok {
				subject = anonymousSubject
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			reqHash := computeHash(r.Method, r.URL.Path, body)
			log := logging.FromContext(r.Context())

			now := time.Now().UTC()
			entry := &repository.IdempotencyCacheEntry{
				Key:         key,
				Subject:     subject,
				RequestHash: reqHash,
				CreatedAt:   now,
				ExpiresAt:   now.Add(idempotencyTTL),
			}
			claimed, err := repo.Claim(r.Context(), entry)
			if err != nil {
				log.Error("idempotency claim failed", "error", err, "idempotency_key", key)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}
			if !claimed {
				replay(w, r, repo, entry)
				return
			}

			// The claim is dropped unless a response gets stored, including
			// when the handler panics.
			storeCtx := context.WithoutCancel(r.Context())
			stored := false
			defer func() {
				if stored {
					return
				}
				if err := repo.Release(storeCtx, key, subject); err != nil {
					log.Error("idempotency release failed", "error", err, "idempotency_key", key)
				}
			}()

			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.statusCode >= http.StatusInternalServerError {
				return
			}

			entry.StatusCode = rec.statusCode
			entry.ResponseBody = rec.body.Bytes()
			if err := repo.Complete(storeCtx, entry); err != nil {
				log.Error("idempotency cache store failed", "error", err, "idempotency_key", key)
				return
			}
			stored = true
		})
	}
}

// replay answers a request whose key is already held by another request.
func replay(w http.ResponseWriter, r *http.Request, repo IdempotencyStore, claim *repository.IdempotencyCacheEntry) {
	log := logging.FromContext(r.Context())

	cached, err := repo.Get(r.Context(), claim.Key, claim.Subject)
	if err != nil {
		log.Error("idempotency cache lookup failed", "error", err, "idempotency_key", claim.Key)
		handler.RespondAppError(w, handler.ErrInternalError, nil)
		return
	}

	switch {
	case cached == nil:
		// Released between the claim and the lookup; the client may retry.
		handler.RespondAppError(w, handler.ErrIdempotencyInProgress, nil)
	case cached.RequestHash != claim.RequestHash:
		handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
	case cached.Pending():
		handler.RespondAppError(w, handler.ErrIdempotencyInProgress, nil)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Idempotent-Replayed", "true")
		w.WriteHeader(cached.StatusCode)
		if _, err := w.Write(cached.ResponseBody); err != nil {
			log.Error("failed to write idempotent replay", "error", err, "idempotency_key", claim.Key)
		}
	}
}

func computeHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return fmt.Sprintf("%x", h.Sum(nil))
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
