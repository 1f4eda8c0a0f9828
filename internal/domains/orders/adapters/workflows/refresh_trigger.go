package workflows

import (
	"context"
	"errors"

	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-orders-cqrs/internal/domains/orders/ports"
	orderworkflows "github.com/Apurer/go-gin-orders-cqrs/internal/platform/temporal/workflows/orders"
)

var _ ports.ViewRebuilder = (*TemporalRefreshTrigger)(nil)

// TemporalRefreshTrigger hands refreshes to the durable refresh workflow.
// Rebuild returns once Temporal has accepted the request; the workflow then
// owns retries until the view is rebuilt.
type TemporalRefreshTrigger struct {
	client    client.Client
	taskQueue string
}

func NewTemporalRefreshTrigger(c client.Client) *TemporalRefreshTrigger {
	return &TemporalRefreshTrigger{client: c, taskQueue: orderworkflows.OrderSummaryRefreshTaskQueue}
}

// Rebuild signals the running refresh execution, starting one if none is open.
func (t *TemporalRefreshTrigger) Rebuild(ctx context.Context) error {
	if t == nil || t.client == nil {
		return errors.New("temporal refresh trigger not configured")
	}
	options := client.StartWorkflowOptions{
		ID:                    orderworkflows.OrderSummaryRefreshWorkflowID,
		TaskQueue:             t.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}
	_, err := t.client.SignalWithStartWorkflow(
		ctx,
		orderworkflows.OrderSummaryRefreshWorkflowID,
		orderworkflows.RefreshRequestedSignal,
		orderworkflows.RefreshRequest{TraceID: workflowTraceID(ctx)},
		options,
		orderworkflows.OrderSummaryRefreshWorkflowName,
		orderworkflows.OrderSummaryRefreshWorkflowInput{},
	)
	return err
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
