package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	orderactivities "github.com/Apurer/go-gin-orders-cqrs/internal/platform/temporal/activities/orders"
)

type countingRebuilder struct {
	calls    int
	failures int
}

func (r *countingRebuilder) Rebuild(context.Context) error {
	r.calls++
	if r.calls <= r.failures {
		return errors.New("view locked")
	}
	return nil
}

func newRefreshEnv(t *testing.T, rebuilder *countingRebuilder) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(OrderSummaryRefreshWorkflow, workflow.RegisterOptions{Name: OrderSummaryRefreshWorkflowName})
	activities := orderactivities.NewActivities(rebuilder)
	env.RegisterActivityWithOptions(activities.RefreshOrderSummary, activity.RegisterOptions{Name: orderactivities.RefreshOrderSummaryActivityName})
	return env
}

func TestOrderSummaryRefreshWorkflow_RefreshesOnce(t *testing.T) {
	rebuilder := &countingRebuilder{}
	env := newRefreshEnv(t, rebuilder)

	env.ExecuteWorkflow(OrderSummaryRefreshWorkflowName, OrderSummaryRefreshWorkflowInput{})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, 1, rebuilder.calls)
}

func TestOrderSummaryRefreshWorkflow_RetriesFailedRefresh(t *testing.T) {
	rebuilder := &countingRebuilder{failures: 2}
	env := newRefreshEnv(t, rebuilder)

	env.ExecuteWorkflow(OrderSummaryRefreshWorkflowName, OrderSummaryRefreshWorkflowInput{})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, 3, rebuilder.calls)
}

func TestRefreshActivity_NotInitialized(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	var activities *orderactivities.Activities
	env.RegisterActivityWithOptions(activities.RefreshOrderSummary, activity.RegisterOptions{Name: orderactivities.RefreshOrderSummaryActivityName})

	_, err := env.ExecuteActivity(orderactivities.RefreshOrderSummaryActivityName)
	assert.Error(t, err)
}
