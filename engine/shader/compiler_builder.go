package shader

// CompilerBuilderOption is a functional option used to configure a Compiler during construction.
type CompilerBuilderOption func(*compiler)

// WithWorkers sets the maximum number of concurrent compile workers. Defaults to the CPU count.
//
// Parameters:
//   - workers: the worker limit, clamped to at least 1
//
// Returns:
//   - CompilerBuilderOption: a function that sets the worker limit
func WithWorkers(workers int) CompilerBuilderOption {
	return func(c *compiler) {
		c.workers = workers
	}
}

// WithCompilerFormat sets the descriptor format of every module the compiler produces.
//
// Parameters:
//   - format: the descriptor format
//
// Returns:
//   - CompilerBuilderOption: a function that sets the format
func WithCompilerFormat(format Format) CompilerBuilderOption {
	return func(c *compiler) {
		c.format = format
	}
}
