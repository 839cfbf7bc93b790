package gitsync

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/shashiranjanraj/polystore/pkg/workerpool"
)

// runner hides the concrete Git invocation mechanism (CLI subprocess today,
// a library-backed implementation conceivable later) behind one adapter,
// and serializes every call through a single-slot pool so at most one Git
// invocation is in flight per repository.
type runner struct {
	dir  string
	pool *workerpool.Pool
}

func newRunner(dir string) *runner {
	return &runner{dir: dir, pool: workerpool.New(1)}
}

// run executes `git <args...>` in the repository directory and returns
// trimmed stdout. Non-zero exit is reported with stderr folded into the
// error message.
func (r *runner) run(ctx context.Context, args ...string) (string, error) {
	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)

	submitErr := r.pool.SubmitWait(func() {
		cmd := exec.CommandContext(ctx, "git", args...)
		cmd.Dir = r.dir
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()
		if err != nil {
			err = fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
		}
		done <- result{out: strings.TrimSpace(stdout.String()), err: err}
	})
	if submitErr != nil {
		return "", submitErr
	}
	res := <-done
	return res.out, res.err
}

func (r *runner) close() {
	r.pool.Shutdown()
}
