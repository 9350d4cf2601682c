package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_RecordsStatusAndBytes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("User already exist"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/signup", nil))

	out := buf.String()
	assert.Contains(t, out, "msg=\"request completed\"")
	assert.Contains(t, out, "method=POST")
	assert.Contains(t, out, "path=/api/signup")
	assert.Contains(t, out, "status=409")
	assert.Contains(t, out, "bytes=18")
}
