package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-orders-cqrs/internal/platform/temporal/sequences"
)

const (
	// OrderSummaryRefreshWorkflowName is the public identifier for registering the workflow.
	OrderSummaryRefreshWorkflowName = "orders.workflows.SummaryRefresh"
	// OrderSummaryRefreshTaskQueue is the queue consumed by the worker hosting the refresh workflow.
	OrderSummaryRefreshTaskQueue = "ORDER_SUMMARY_REFRESH"
	// OrderSummaryRefreshWorkflowID is fixed so concurrent requests land on one execution.
	OrderSummaryRefreshWorkflowID = "order-summary-refresh"
	// RefreshRequestedSignal asks the running execution for another refresh.
	RefreshRequestedSignal = "orders.signals.RefreshRequested"

	maxRefreshesPerRun = 200
)

// RefreshRequest is the signal payload.
type RefreshRequest struct {
	TraceID string
}

// OrderSummaryRefreshWorkflowInput is the workflow argument.
type OrderSummaryRefreshWorkflowInput struct{}

// OrderSummaryRefreshWorkflow refreshes the summary view once per burst of
// requests. Signals that arrive while a refresh runs are coalesced into a
// single follow-up refresh. Long bursts continue as new to bound history.
func OrderSummaryRefreshWorkflow(ctx workflow.Context, input OrderSummaryRefreshWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	requests := workflow.GetSignalChannel(ctx, RefreshRequestedSignal)

	for runs := 1; ; runs++ {
		traceID := drain(requests)
		logger.Info("OrderSummaryRefreshWorkflow refreshing", withTraceID(traceID, "run", runs)...)
		if err := sequences.RunOrderSummaryRefreshSequence(ctx); err != nil {
			logger.Error("OrderSummaryRefreshWorkflow failed", "run", runs, "error", err)
			return err
		}
		if requests.Len() == 0 {
			logger.Info("OrderSummaryRefreshWorkflow completed", "runs", runs)
			return nil
		}
		if runs >= maxRefreshesPerRun {
			logger.Info("OrderSummaryRefreshWorkflow continuing as new", "runs", runs)
			return workflow.NewContinueAsNewError(ctx, OrderSummaryRefreshWorkflowName, input)
		}
	}
}

// drain consumes every buffered request and returns the last trace id seen.
func drain(ch workflow.ReceiveChannel) string {
	var traceID string
	for {
		var req RefreshRequest
		if !ch.ReceiveAsync(&req) {
			return traceID
		}
		if req.TraceID != "" {
			traceID = req.TraceID
		}
	}
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
