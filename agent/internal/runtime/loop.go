package runtime

import (
	"context"
	"time"

	"maa-remote/agent/internal/client"
	"maa-remote/agent/internal/command"
	"maa-remote/agent/internal/config"
	"maa-remote/agent/internal/executor"

	"github.com/rs/zerolog"
)

// Runner is the agent's polling loop: fetch one task, execute it, and always
// report the outcome, whichever path execution took.
type Runner struct {
	cfg      config.Config
	client   *client.Client
	exec     executor.Executor
	deviceID string
	log      zerolog.Logger
}

func New(cfg config.Config, c *client.Client, exec executor.Executor, deviceID string, log zerolog.Logger) *Runner {
	return &Runner{cfg: cfg, client: c, exec: exec, deviceID: deviceID, log: log}
}

// Run polls until ctx is cancelled. Poll and report failures are logged and
// retried on the next interval; they never stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info().Str("device", r.deviceID).Str("server", r.cfg.ServerBase).Msg("agent started")
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		tasks, err := r.fetchTasks(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.log.Warn().Err(err).Msg("poll failed, retrying after interval")
			if !sleep(ctx, r.cfg.PollInterval) {
				return ctx.Err()
			}
			continue
		}
		if len(tasks) == 0 {
			if !sleep(ctx, r.cfg.PollInterval) {
				return ctx.Err()
			}
			continue
		}
		for _, task := range tasks {
			r.processTask(ctx, task)
		}
	}
}

func (r *Runner) fetchTasks(ctx context.Context) ([]client.TaskEnvelope, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()
	return r.client.GetTask(reqCtx, r.cfg.UserKey, r.deviceID, r.cfg.AgentVersion)
}

// processTask executes one task and reports exactly once, regardless of
// which path execution took: builder rejection, executor failure, or success.
func (r *Runner) processTask(ctx context.Context, task client.TaskEnvelope) {
	r.log.Info().Str("task", task.ID).Str("type", task.Type).Msg("executing task")

	status := client.StatusFailed
	var logText string
	var result map[string]any

	cmdv, err := command.Build(r.cfg.MaaBinary, task.Type, task.Params)
	if err != nil {
		// Never handed to the executor; the reason is the whole log.
		logText = err.Error()
		r.log.Error().Str("task", task.ID).Err(err).Msg("cannot build command")
	} else {
		res, runErr := r.execute(ctx, cmdv)
		logText = res.Output
		result = map[string]any{"command": cmdv, "returnCode": res.ExitCode}
		switch {
		case runErr != nil:
			if logText != "" {
				logText += "\n"
			}
			logText += runErr.Error()
			r.log.Error().Str("task", task.ID).Err(runErr).Msg("executor invocation failed")
		case res.ExitCode != 0:
			r.log.Error().Str("task", task.ID).Int("code", res.ExitCode).Msg("task command failed")
		default:
			status = client.StatusSucceeded
		}
	}

	r.report(ctx, task.ID, status, logText, result)
}

func (r *Runner) execute(ctx context.Context, cmdv []string) (executor.Result, error) {
	execCtx := ctx
	if r.cfg.TaskTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.cfg.TaskTimeout)
		defer cancel()
	}
	return r.exec.Run(execCtx, cmdv, r.cfg.WorkDir, executor.MergedEnv(r.cfg.Env))
}

// report delivers the outcome even when ctx was cancelled mid-execution, so
// an interrupt never drops the result of work already done. A delivery
// failure is logged and the loop moves on.
func (r *Runner) report(ctx context.Context, taskID, status, logText string, result map[string]any) {
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.RequestTimeout)
	defer cancel()

	err := r.client.ReportStatus(reportCtx, client.Report{
		User:   r.cfg.UserKey,
		Device: r.deviceID,
		TaskID: taskID,
		Status: status,
		Log:    truncateTail(logText, r.cfg.ReportLogMaxChars),
		Result: result,
	})
	if err != nil {
		r.log.Error().Str("task", taskID).Err(err).Msg("report failed")
		return
	}
	r.log.Info().Str("task", taskID).Str("status", status).Msg("reported task")
}

// truncateTail keeps the last max characters; command failures explain
// themselves at the end of their output.
func truncateTail(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[len(r)-max:])
}

// sleep waits for d or until ctx is done; reports false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
