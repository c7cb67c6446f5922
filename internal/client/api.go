package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	api "github.com/GriffinCanCode/AgentOS/pipecore/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/pipe"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/task"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/shared/id"
)

func taskPath(t id.TaskID) string {
	return "/tasks/" + url.PathEscape(string(t))
}

func pipePath(t id.TaskID, p pipe.ID, op string) string {
	return fmt.Sprintf("%s/pipes/%d/%s", taskPath(t), p, op)
}

func sizeQuery(n int) map[string]string {
	return map[string]string{"n": strconv.Itoa(n)}
}

func parseStatus(s string) (pipe.Status, error) {
	st, ok := pipe.ParseStatus(s)
	if !ok {
		return 0, fmt.Errorf("pipecore: unexpected pipe status %q", s)
	}
	return st, nil
}

// Version returns the runtime version string
func (c *Client) Version(ctx context.Context) (string, error) {
	var out struct {
		Version string `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "/version", nil, &out, nil); err != nil {
		return "", err
	}
	return out.Version, nil
}

// Constants returns the PIPE_* and LOG_* constant table
func (c *Client) Constants(ctx context.Context) (map[string]int, error) {
	var out struct {
		Constants map[string]int `json:"constants"`
	}
	if err := c.do(ctx, http.MethodGet, "/constants", nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Constants, nil
}

// CreateTask starts a task with an empty pipe registry
func (c *Client) CreateTask(ctx context.Context) (task.Info, error) {
	var info task.Info
	err := c.do(ctx, http.MethodPost, "/tasks", nil, &info, nil)
	return info, err
}

// ListTasks lists the live tasks in creation order
func (c *Client) ListTasks(ctx context.Context) ([]task.Info, error) {
	var out struct {
		Tasks []task.Info `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// GetTask returns a summary of one task
func (c *Client) GetTask(ctx context.Context, t id.TaskID) (task.Info, error) {
	var info task.Info
	err := c.do(ctx, http.MethodGet, taskPath(t), nil, &info, nil)
	return info, err
}

// FinalizeTask tears a task down together with its pipes
func (c *Client) FinalizeTask(ctx context.Context, t id.TaskID) error {
	return c.do(ctx, http.MethodDelete, taskPath(t), nil, nil, nil)
}

// Log sends one task log message
func (c *Client) Log(ctx context.Context, t id.TaskID, level logging.Level, msg string) error {
	body := api.LogRequest{Level: level.String(), Message: msg}
	return c.do(ctx, http.MethodPost, taskPath(t)+"/log", body, nil, nil)
}

// DefinePipe registers a pipe on a task and returns its id
func (c *Client) DefinePipe(ctx context.Context, t id.TaskID, name string, flags pipe.Flags, typ string) (pipe.ID, error) {
	body := api.DefineRequest{Name: name, Flags: api.NewFlagValue(flags), Type: typ}
	var out api.DefineResponse
	if err := c.do(ctx, http.MethodPost, taskPath(t)+"/pipes", body, &out, nil); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// ListPipes returns a snapshot of every pipe of a task
func (c *Client) ListPipes(ctx context.Context, t id.TaskID) ([]pipe.Stats, error) {
	var out struct {
		Pipes []pipe.Stats `json:"pipes"`
	}
	if err := c.do(ctx, http.MethodGet, taskPath(t)+"/pipes", nil, &out, nil); err != nil {
		return nil, err
	}
	return out.Pipes, nil
}

func (c *Client) read(ctx context.Context, path string, n int) ([]byte, pipe.Status, error) {
	var out api.ReadResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out, sizeQuery(n)); err != nil {
		return nil, 0, err
	}
	status, err := parseStatus(out.Status)
	return out.Data, status, err
}

func (c *Client) write(ctx context.Context, path string, data []byte, eof bool) (api.WriteResponse, error) {
	var out api.WriteResponse
	err := c.do(ctx, http.MethodPost, path, api.WriteRequest{Data: data, EOF: eof}, &out, nil)
	return out, err
}

func (c *Client) token(ctx context.Context, method, path string, token pipe.Token) (pipe.Token, bool, error) {
	var body interface{}
	if method == http.MethodPost {
		body = api.TokenRequest{Token: token}
	}
	var out api.TokenResponse
	if err := c.do(ctx, method, path, body, &out, nil); err != nil {
		return 0, false, err
	}
	return out.Token, out.Present, nil
}

func (c *Client) status(ctx context.Context, method, path string) (pipe.Status, error) {
	var out api.StatusResponse
	if err := c.do(ctx, method, path, nil, &out, nil); err != nil {
		return 0, err
	}
	return parseStatus(out.Status)
}

// Read reads up to n bytes from an INPUT pipe as the task. It also returns
// the status left after the read.
func (c *Client) Read(ctx context.Context, t id.TaskID, p pipe.ID, n int) ([]byte, pipe.Status, error) {
	return c.read(ctx, pipePath(t, p, "read"), n)
}

// Write writes to an OUTPUT pipe as the task and returns how many bytes
// were accepted
func (c *Client) Write(ctx context.Context, t id.TaskID, p pipe.ID, data []byte) (int, error) {
	out, err := c.write(ctx, pipePath(t, p, "write"), data, false)
	return out.Written, err
}

// WriteScopeToken marks a scope boundary on an OUTPUT pipe
func (c *Client) WriteScopeToken(ctx context.Context, t id.TaskID, p pipe.ID, token pipe.Token) error {
	_, _, err := c.token(ctx, http.MethodPost, pipePath(t, p, "token"), token)
	return err
}

// ReadScopeToken takes the token at the read cursor of an INPUT pipe
func (c *Client) ReadScopeToken(ctx context.Context, t id.TaskID, p pipe.ID) (pipe.Token, bool, error) {
	return c.token(ctx, http.MethodGet, pipePath(t, p, "token"), 0)
}

// EOF reports the end-of-stream status of any pipe
func (c *Client) EOF(ctx context.Context, t id.TaskID, p pipe.ID) (pipe.Status, error) {
	return c.status(ctx, http.MethodGet, pipePath(t, p, "eof"))
}

// Close ends the stream of an OUTPUT pipe
func (c *Client) Close(ctx context.Context, t id.TaskID, p pipe.ID) (pipe.Status, error) {
	return c.status(ctx, http.MethodPost, pipePath(t, p, "close"))
}

// Feed delivers bytes into an INPUT pipe from the framework side. With eof
// set the pipe is closed once every byte was accepted; closed reports
// whether that happened.
func (c *Client) Feed(ctx context.Context, t id.TaskID, p pipe.ID, data []byte, eof bool) (written int, closed bool, err error) {
	out, err := c.write(ctx, pipePath(t, p, "feed"), data, eof)
	return out.Written, out.Closed, err
}

// FeedAll feeds data until all of it was accepted, then optionally closes
// the pipe. A pipe that stays full past the retry budget fails with
// pipe.ErrPipeFull; written counts what got through before that.
func (c *Client) FeedAll(ctx context.Context, t id.TaskID, p pipe.ID, data []byte, eof bool) (written int, err error) {
	for {
		n, closed, err := c.Feed(ctx, t, p, data[written:], eof)
		written += n
		if err != nil || closed || (!eof && written == len(data)) {
			return written, err
		}
	}
}

// FeedScopeToken delivers a scope boundary into an INPUT pipe
func (c *Client) FeedScopeToken(ctx context.Context, t id.TaskID, p pipe.ID, token pipe.Token) error {
	_, _, err := c.token(ctx, http.MethodPost, pipePath(t, p, "feed/token"), token)
	return err
}

// Drain collects up to n bytes the task wrote to an OUTPUT pipe
func (c *Client) Drain(ctx context.Context, t id.TaskID, p pipe.ID, n int) ([]byte, pipe.Status, error) {
	return c.read(ctx, pipePath(t, p, "drain"), n)
}

// DrainScopeToken collects the token at the read cursor of an OUTPUT pipe
func (c *Client) DrainScopeToken(ctx context.Context, t id.TaskID, p pipe.ID) (pipe.Token, bool, error) {
	return c.token(ctx, http.MethodGet, pipePath(t, p, "drain/token"), 0)
}
