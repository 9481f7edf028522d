package action

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/blockhost/rootagent/internal/audit"
	"github.com/blockhost/rootagent/internal/clog"
	"github.com/blockhost/rootagent/internal/executor"
	"github.com/blockhost/rootagent/internal/validate"
)

// Dispatcher validates requests against the registry, builds the command
// and runs it through an executor. It is safe for concurrent use.
type Dispatcher struct {
	registry *Registry
	exec     executor.Executor
	audit    *audit.Logger

	// grace extends the dispatcher's own deadline past the action timeout.
	grace time.Duration
	newID func() string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithAuditLogger records every dispatch to l.
func WithAuditLogger(l *audit.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.audit = l
	}
}

// WithGrace lets a dispatch wait up to timeout+grace for the executor
// before giving up on it.
func WithGrace(grace time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if grace >= 0 {
			d.grace = grace
		}
	}
}

// NewDispatcher creates a dispatcher over reg and exec.
func NewDispatcher(reg *Registry, exec executor.Executor, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		exec:     exec,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs req and folds the outcome into a Response.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	out, err := d.Run(ctx, req)
	if err != nil {
		return Failure(err)
	}
	return Success(out)
}

// Run executes one request and returns the tool's stdout.
//
// Errors are ErrUnknownAction (wrapped), *ParamError, *ExecError or
// *TimeoutError. No process is spawned unless every parameter passed
// validation and the command was built.
func (d *Dispatcher) Run(ctx context.Context, req Request) (string, error) {
	id := d.newID()
	d.logAudit(d.audit.LogRequest(id, req.Action))

	desc, err := d.registry.Describe(req.Action)
	if err != nil {
		d.reject(id, req.Action, "", err)
		return "", err
	}

	values, err := checkParams(desc, req.Params)
	if err != nil {
		d.reject(id, desc.Name, vmidOf(values), err)
		return "", err
	}
	vmid := vmidOf(values)

	cmd, err := Build(desc, values)
	if err != nil {
		d.reject(id, desc.Name, vmid, err)
		return "", err
	}

	clog.Debug("dispatch %s id=%s argv=%s timeout=%s", desc.Name, id, cmd, desc.Timeout)

	start := time.Now()
	res, err := d.execute(ctx, desc, cmd)
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	switch {
	case errors.As(err, &timeoutErr):
		clog.Warn("action %s id=%s timed out after %s", desc.Name, id, desc.Timeout)
		d.logAudit(d.audit.LogTimeout(id, desc.Name, vmid, cmd.String(), elapsed))
		return "", err
	case err != nil:
		clog.Warn("action %s id=%s abandoned: %v", desc.Name, id, err)
		d.logAudit(d.audit.LogFail(id, desc.Name, vmid, cmd.String(), executor.TimeoutExitCode, err.Error(), elapsed))
		return "", err
	}

	out, err := mapResult(desc, res)
	if err != nil {
		var execErr *ExecError
		code := executor.TimeoutExitCode
		if errors.As(err, &execErr) {
			code = execErr.ExitCode
		}
		clog.Info("action %s id=%s failed: exit=%d", desc.Name, id, code)
		d.logAudit(d.audit.LogFail(id, desc.Name, vmid, cmd.String(), code, err.Error(), elapsed))
		return "", err
	}

	clog.Info("action %s id=%s completed in %s", desc.Name, id, elapsed.Round(time.Millisecond))
	d.logAudit(d.audit.LogComplete(id, desc.Name, vmid, cmd.String(), elapsed))
	return out, nil
}

// execute runs cmd with the descriptor's timeout. The dispatcher holds its
// own deadline so an executor that ignores its context cannot stall the
// caller; the executor's result is then discarded.
func (d *Dispatcher) execute(ctx context.Context, desc *Descriptor, cmd Command) (executor.ExecuteResponse, error) {
	runCtx, cancel := context.WithTimeout(ctx, desc.Timeout+d.grace)
	defer cancel()

	done := make(chan executor.ExecuteResponse, 1)
	go func() {
		done <- d.exec.Execute(runCtx, executor.ExecuteRequest{
			Argv:    cmd.Argv,
			Timeout: desc.Timeout,
		})
	}()

	select {
	case res := <-done:
		return res, nil
	case <-runCtx.Done():
		if err := ctx.Err(); err != nil {
			return executor.ExecuteResponse{}, fmt.Errorf("dispatch canceled: %w", err)
		}
		return executor.ExecuteResponse{}, &TimeoutError{Timeout: desc.Timeout}
	}
}

// mapResult turns an executor response into stdout or a typed error.
func mapResult(desc *Descriptor, res executor.ExecuteResponse) (string, error) {
	switch {
	case res.TimedOut():
		return "", &TimeoutError{Timeout: desc.Timeout}
	case res.Status == executor.StatusError:
		return "", &ExecError{ExitCode: res.ExitCode, Message: res.Error}
	case res.ExitCode != 0:
		msg := res.Stderr
		if msg == "" {
			msg = res.Stdout
		}
		return "", &ExecError{ExitCode: res.ExitCode, Message: msg}
	}
	return res.Stdout, nil
}

// checkParams validates params against the descriptor in parameter-spec
// order and returns the normalized values. It stops at the first failure.
func checkParams(desc *Descriptor, params validate.Object) (Values, error) {
	if key, dup := params.Duplicate(); dup {
		return nil, &ParamError{Field: key, Reason: "given more than once"}
	}
	for _, m := range params {
		if _, ok := desc.param(m.Key); !ok {
			return nil, &ParamError{Field: m.Key, Reason: "not accepted by " + desc.Name}
		}
	}

	values := make(Values, len(desc.Params))
	for _, spec := range desc.Params {
		raw, present := params.Get(spec.Key)
		if !present || raw == nil {
			if spec.Required {
				return values, &ParamError{Field: spec.Key, Missing: true}
			}
			continue
		}
		v, err := spec.Validator.Validate(raw)
		if err != nil {
			return values, &ParamError{Field: spec.Key, Reason: reasonOf(err)}
		}
		values[spec.Key] = v
	}
	return values, nil
}

func reasonOf(err error) string {
	var ve *validate.Error
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return err.Error()
}

// vmidOf returns the validated VMID for audit lines, or "".
func vmidOf(v Values) string {
	if id, ok := v[ParamVMID].(int); ok {
		return strconv.Itoa(id)
	}
	return ""
}

func (d *Dispatcher) reject(id, name, vmid string, err error) {
	clog.Info("rejected %q id=%s: %v", name, id, err)
	d.logAudit(d.audit.LogReject(id, name, vmid, err.Error()))
}

func (d *Dispatcher) logAudit(err error) {
	if err != nil {
		clog.Warn("audit: %v", err)
	}
}
