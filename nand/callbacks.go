package nand

import "time"

// Transfer operations reported in Progress.
const (
	OpRead  = "read"
	OpWrite = "write"
)

// Progress contains information about a running transfer.
// Passed to ProgressCallback once before the first chunk and after every chunk.
type Progress struct {
	// Operation is OpRead or OpWrite
	Operation string

	// StartSector is the first sector of the transfer
	StartSector int64

	// Sector is the next sector to be transferred
	Sector int64

	// BytesDone is the number of bytes transferred so far
	BytesDone int64

	// TotalBytes is the size of the whole transfer
	TotalBytes int64

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the transfer started
	ElapsedTime time.Duration
}

// ProgressCallback is called during transfers to report progress.
// BytesDone never decreases within a transfer.
// Implementations should return quickly; the next chunk waits for them.
//
// Example:
//
//	s := nand.New(obj,
//	    nand.WithProgressCallback(func(p nand.Progress) {
//	        fmt.Printf("%s %d/%d bytes\n", p.Operation, p.BytesDone, p.TotalBytes)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to a Session.
// *slog.Logger satisfies it.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
