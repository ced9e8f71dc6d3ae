package reasoning

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerQueryRejectsEmptyQuestion(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(NewEngine(nil, nil, log))

	body, _ := json.Marshal(queryRequest{Question: ""})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/reasoning/query", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Query(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError")
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}
