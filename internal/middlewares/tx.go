package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-user-accounts/internal/logger"
)

// Transactor runs fn inside a single database transaction.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

var errRollback = errors.New("handler answered with an error status")

// TxMiddleware runs the handler in one transaction. The transaction is rolled back
// when the handler answers with a status >= 400 or panics. The response is held
// back until the transaction has finished.
func TxMiddleware(tx Transactor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bw := &bufferedWriter{header: w.Header(), statusCode: http.StatusOK}

			err := tx.Do(r.Context(), func(ctx context.Context) error {
				next.ServeHTTP(bw, r.WithContext(ctx))
				if bw.statusCode >= http.StatusBadRequest {
					return errRollback
				}
				return nil
			})
			if err != nil && !errors.Is(err, errRollback) {
				logger.Log.Errorw("transaction failed", "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Internal server error"})
				return
			}

			w.WriteHeader(bw.statusCode)
			_, _ = w.Write(bw.body.Bytes())
		})
	}
}

// bufferedWriter collects status and body. Headers go straight to the real
// writer's map since nothing is sent before WriteHeader.
type bufferedWriter struct {
	header     http.Header
	statusCode int
	body       bytes.Buffer
}

func (bw *bufferedWriter) Header() http.Header {
	return bw.header
}

func (bw *bufferedWriter) WriteHeader(code int) {
	bw.statusCode = code
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	return bw.body.Write(b)
}
