package reasoning

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Sportinger/argus/domain/intel"
	"github.com/Sportinger/argus/pkg/apperror"
)

// Handler serves the natural-language reasoning endpoint.
type Handler struct {
	engine *Engine
}

// NewHandler builds a reasoning Handler over the shared Engine.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

type queryRequest struct {
	Question string  `json:"question"`
	Context  *string `json:"context,omitempty"`
	MaxHops  *uint32 `json:"max_hops,omitempty"`
}

// Query runs the 5-phase reasoning engine over a natural-language question.
func (h *Handler) Query(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body").WithInternal(err).ToEchoError()
	}
	if req.Question == "" {
		return apperror.NewBadRequest("question must not be empty").ToEchoError()
	}

	resp, err := h.engine.Query(c.Request().Context(), &intel.ReasoningQuery{
		Question: req.Question,
		Context:  req.Context,
		MaxHops:  req.MaxHops,
	})
	if err != nil {
		return intel.ToAppError(err).ToEchoError()
	}

	return c.JSON(http.StatusOK, resp)
}
