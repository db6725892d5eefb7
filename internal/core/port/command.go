package port

import "context"

// Result is the normalized outcome of a command execution. A failed
// command carries no detail beyond the flag; errors are logged
// server-side.
type Result struct {
	Success bool
	Data    any
}

// CommandRunner executes a named action with its arguments. It is the
// sole entry point for every mutating operation; it never lets an error
// escape a single command execution.
type CommandRunner interface {
	Run(ctx context.Context, action string, args any) Result
}
