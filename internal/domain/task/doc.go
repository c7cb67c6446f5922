// Package task binds data-flow tasks to their pipes.
//
// An Environment holds what every task shares: the runtime version and the
// PIPE_* and LOG_* constants. A Context is one task instance, composed from
// the environment, its own pipe registry and the task-side and
// framework-side I/O views over that registry. The Manager hosts contexts in
// process and is what the HTTP API drives.
//
// Example Usage:
//
//	env := task.NewEnvironment("0.3.0")
//	tasks := task.NewManager(env, logger).WithMetrics(metrics)
//	ctx := tasks.Create()
//	out, err := ctx.Define("out", pipe.FlagOutput, "int32")
//	n, err := ctx.IO().PipeWrite(out, payload)
//	tasks.Finalize(ctx.TaskID())
package task
