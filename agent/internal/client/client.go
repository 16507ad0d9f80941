package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Task status values mirrored from the server.
const (
	StatusSucceeded = "Succeeded"
	StatusFailed    = "Failed"
)

// TaskEnvelope is a task descriptor received from the server.
type TaskEnvelope struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Params   map[string]any `json:"params"`
	Priority int            `json:"priority"`
}

type getTaskRequest struct {
	User         string `json:"user"`
	Device       string `json:"device"`
	AgentVersion string `json:"agentVersion,omitempty"`
}

type getTaskResponse struct {
	Tasks        []TaskEnvelope `json:"tasks"`
	PollInterval float64        `json:"pollInterval,omitempty"`
}

// Report is the execution outcome sent back for one task.
type Report struct {
	User   string         `json:"user"`
	Device string         `json:"device"`
	TaskID string         `json:"taskId"`
	Status string         `json:"status"`
	Log    string         `json:"log,omitempty"`
	Result map[string]any `json:"result,omitempty"`
}

// Client speaks the dispatch protocol over HTTP.
type Client struct {
	base       string
	getPath    string
	reportPath string
	httpc      *http.Client
}

func New(serverBase, getTaskPath, reportStatusPath string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{base: serverBase, getPath: getTaskPath, reportPath: reportStatusPath, httpc: httpc}
}

// GetTask polls the server for pending tasks. The server hands out at most
// one task per poll.
func (c *Client) GetTask(ctx context.Context, user, device, agentVersion string) ([]TaskEnvelope, error) {
	var resp getTaskResponse
	err := c.post(ctx, c.getPath, getTaskRequest{User: user, Device: device, AgentVersion: agentVersion}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// ReportStatus sends a task's execution outcome.
func (c *Client) ReportStatus(ctx context.Context, report Report) error {
	return c.post(ctx, c.reportPath, report, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, string(snippet))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
