package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/binamite/internal/handler"
)

type fixedCount int

func (c fixedCount) Len() int { return int(c) }

func TestHandleHealth(t *testing.T) {
	h := handler.NewHealthHandler(fixedCount(3))

	rr := httptest.NewRecorder()
	h.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok","stores":3}`, rr.Body.String())
}
