package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type schedulerTestConfig struct {
	url string
}

func (c schedulerTestConfig) GetRedisURL() string       { return c.url }
func (c schedulerTestConfig) GetRedisTLSInsecure() bool { return false }
func (c schedulerTestConfig) GetAsynqQueueName() string { return "automation" }
func (c schedulerTestConfig) GetAsynqConcurrency() int  { return 1 }

func TestClientEnqueuesDelayedWorkflowRun(t *testing.T) {
	srv := miniredis.RunT(t)

	c, err := NewClient(schedulerTestConfig{url: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer func() {
		_ = c.Close()
	}()

	leadID := uuid.New()
	workflowID := uuid.New()
	if err := c.EnqueueWorkflowRun(context.Background(), leadID, workflowID, "lead.created", 5*time.Minute); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: srv.Addr()})
	defer func() {
		_ = inspector.Close()
	}()

	tasks, err := inspector.ListScheduledTasks("automation")
	if err != nil {
		t.Fatalf("list scheduled: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskWorkflowRun {
		t.Errorf("task type: got %q", tasks[0].Type)
	}

	payload, err := ParseWorkflowRunPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if payload.LeadID != leadID.String() || payload.WorkflowID != workflowID.String() {
		t.Errorf("payload ids: got %+v", payload)
	}
	if payload.Trigger != "lead.created" {
		t.Errorf("trigger: got %q", payload.Trigger)
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(schedulerTestConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}
