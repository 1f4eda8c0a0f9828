package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var errSentinel = errors.New("sentinel")

func serve(t *testing.T, ctx context.Context, handler gin.HandlerFunc) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/orders/x", handler)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orders/x", nil).WithContext(ctx)
	router.ServeHTTP(rec, req)
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, problem
}

func TestChainedResponder_UsesFirstMatchingMapper(t *testing.T) {
	responder := NewChainedResponder("",
		func(err error) (ProblemDetail, bool) {
			if errors.Is(err, errSentinel) {
				return NewConcurrencyConflictProblem("stale"), true
			}
			return ProblemDetail{}, false
		},
	)

	rec, problem := serve(t, context.Background(), func(c *gin.Context) { responder.RespondError(c, errSentinel) })

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, TypeConflict, problem.Type)
	assert.Equal(t, "/api/orders/x", problem.Instance)
	assert.Equal(t, true, problem.Extensions["retryable"])
	assert.NotContains(t, problem.Extensions, "traceId")
}

func TestChainedResponder_HidesAndLogsUnmappedErrors(t *testing.T) {
	var logs bytes.Buffer
	responder := NewChainedResponder("https://example.test").
		WithLogger(slog.New(slog.NewJSONHandler(&logs, nil)))

	rec, problem := serve(t, context.Background(), func(c *gin.Context) {
		responder.RespondError(c, errors.New("pq: connection refused"))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "https://example.test"+TypeInternal, problem.Type)
	assert.Equal(t, internalDetail, problem.Detail)
	assert.Contains(t, logs.String(), "pq: connection refused")
	assert.Contains(t, logs.String(), `"status":500`)
}

func TestChainedResponder_PassesProblemsThroughWithoutLogging(t *testing.T) {
	var logs bytes.Buffer
	responder := NewChainedResponder("").WithLogger(slog.New(slog.NewJSONHandler(&logs, nil)))

	rec, problem := serve(t, context.Background(), func(c *gin.Context) {
		responder.RespondError(c, ErrBadRequest.WithDetail("bad json"))
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad json", problem.Detail)
	assert.Empty(t, logs.String())
}

func TestResponder_AttachesTraceID(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	defer span.End()

	_, problem := serve(t, ctx, func(c *gin.Context) { Respond(c, NewNotFoundProblem("order")) })

	assert.Equal(t, TypeNotFound, problem.Type)
	assert.Equal(t, "order not found", problem.Detail)
	assert.Equal(t, span.SpanContext().TraceID().String(), problem.Extensions["traceId"])
}

func TestWithExtension_DoesNotMutateReceiver(t *testing.T) {
	base := ErrConflict.WithExtension("retryable", true)
	derived := base.WithExtension("traceId", "abc")

	assert.Len(t, base.Extensions, 1)
	assert.Len(t, derived.Extensions, 2)
	assert.Nil(t, ErrConflict.Extensions)
}

func TestNewInvalidTransitionProblem(t *testing.T) {
	problem := NewInvalidTransitionProblem("PENDING", "SHIPPED", []string{"CONFIRMED", "CANCELLED"})
	assert.Equal(t, http.StatusConflict, problem.Status)
	assert.Equal(t, TypeInvalidState, problem.Type)
	assert.Equal(t, "PENDING", problem.Extensions["from"])
	assert.Equal(t, "SHIPPED", problem.Extensions["to"])
	assert.Equal(t, "Invalid State: cannot transition from PENDING to SHIPPED", problem.Error())

	terminal := NewInvalidTransitionProblem("DELIVERED", "CANCELLED", nil)
	assert.Equal(t, []string{}, terminal.Extensions["allowed"])
}
