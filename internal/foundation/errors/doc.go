// Package errors provides the classified error primitives used across sitewrap.
//
// Every failure that reaches the command line is a ClassifiedError carrying a
// broad category, a severity, an optional ErrorCode from the tool's taxonomy
// and free-form context. Errors are returned as values all the way up to the
// CLI, where CLIErrorAdapter turns them into a message and an exit code.
//
// Example usage:
//
//	err := errors.NotFoundError("base template is missing").
//		WithCode(errors.CodeMissingBaseTemplate).
//		WithContext("path", basePath).
//		WithCause(statErr).
//		Build()
package errors
