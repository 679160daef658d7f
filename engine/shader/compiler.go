package shader

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/brics-go/common"
)

// Request names one shader file to compile.
type Request struct {
	Path       string
	Stage      Stage
	EntryPoint string
}

// compiler is the implementation of Compiler.
type compiler struct {
	workers int
	format  Format
	pool    worker.DynamicWorkerPool
}

// Compiler compiles batches of shader files in parallel on a bounded worker pool.
type Compiler interface {
	// Format returns the descriptor format every compiled module carries.
	Format() Format

	// CompileFiles compiles every request concurrently and blocks until all are done.
	// The returned modules are in request order.
	//
	// Parameters:
	//   - reqs: the files to compile
	//
	// Returns:
	//   - []*Module: one module per request, nil where that request failed
	//   - error: the joined compile errors, or nil if every request succeeded
	CompileFiles(reqs []Request) ([]*Module, error)

	// CompileFile compiles a single request on the calling goroutine.
	//
	// Parameters:
	//   - req: the file to compile
	//
	// Returns:
	//   - *Module: the compiled module
	//   - error: ErrCompile wrapping the diagnostic
	CompileFile(req Request) (*Module, error)
}

var _ Compiler = &compiler{}

// NewCompiler creates a Compiler with all specified options applied.
//
// Parameters:
//   - options: a variadic list of CompilerBuilderOption functions
//
// Returns:
//   - Compiler: the configured compiler
func NewCompiler(options ...CompilerBuilderOption) Compiler {
	c := &compiler{
		workers: runtime.NumCPU(),
		format:  FormatSPIRV,
	}
	for _, opt := range options {
		opt(c)
	}
	c.workers = max(c.workers, 1)
	c.pool = worker.NewDynamicWorkerPool(c.workers, 64, 1*time.Second)
	return c
}

func (c *compiler) Format() Format {
	return c.format
}

func (c *compiler) CompileFile(req Request) (*Module, error) {
	opts := []CompileOption{WithFormat(c.format)}
	if req.EntryPoint != "" {
		opts = append(opts, WithEntryPoint(req.EntryPoint))
	}
	return CompileFile(req.Path, req.Stage, opts...)
}

func (c *compiler) CompileFiles(reqs []Request) ([]*Module, error) {
	start := time.Now()
	modules := make([]*Module, len(reqs))
	errs := make([]error, len(reqs))

	// pool.Wait() only returns once workers idle out, so a WaitGroup is the batch barrier.
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		c.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				m, err := c.CompileFile(req)
				if err != nil {
					errs[i] = fmt.Errorf("%s shader %q: %w", req.Stage, req.Path, err)
					return nil, err
				}
				modules[i] = m
				return m, nil
			},
		})
	}
	wg.Wait()

	err := errors.Join(errs...)
	common.Logger().Debug("shaders compiled", "count", len(reqs), "format", c.format, "elapsed", time.Since(start), "failed", err != nil)
	return modules, err
}
