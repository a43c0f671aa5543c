package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskWorkflowRun = "automation.workflow.run"

const TaskDailySweep = "automation.cron.daily"

// WorkflowRunPayload identifies one deferred workflow execution.
type WorkflowRunPayload struct {
	LeadID     string `json:"leadId"`
	WorkflowID string `json:"workflowId"`
	Trigger    string `json:"trigger"`
}

func NewWorkflowRunTask(payload WorkflowRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWorkflowRun, data), nil
}

func ParseWorkflowRunPayload(task *asynq.Task) (WorkflowRunPayload, error) {
	var payload WorkflowRunPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return WorkflowRunPayload{}, err
	}
	return payload, nil
}

func NewDailySweepTask() *asynq.Task {
	return asynq.NewTask(TaskDailySweep, nil)
}
