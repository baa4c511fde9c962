// Package logger provides leveled, coloured logging for groupenc commands.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info messages
//   - --debug: Shows info and debug messages
//
// Every level is written to the error stream; warnings and errors are
// always shown.
//
// # Usage
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Infof("Opening vault %s", path)
//
// Workflows receive the Logger from the command layer. Tests set Err to a
// buffer to capture output.
package logger
