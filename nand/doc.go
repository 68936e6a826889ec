// Package nand programs NAND flash through a DSMC device object.
//
// # Overview
//
// A Session enforces the device lifecycle and bridges byte-oriented
// requests to the sector-based native protocol:
//   - Checking the library's interface version (only version 3 is supported)
//   - Initializing the programmer on a port
//   - Opening and closing a programming session
//   - Reading and writing sector ranges in bounded chunks
//   - Retrieving the expected first-stage bootloader digest
//
// # Basic Usage
//
// Run handles the whole lifecycle and always releases the device object:
//
//	obj, err := dsmc.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = nand.Run(ctx, obj, func(ctx context.Context, s *nand.Session) error {
//	    span, err := s.Geometry().ReadSpan(0, 1<<20)
//	    if err != nil {
//	        return err
//	    }
//	    _, err = s.ReadTo(ctx, out, span.Start, span.Count)
//	    return err
//	})
//
// # Geometry
//
// Block size, chunk size and sector count come from a Geometry. The default
// is 512-byte sectors, 8 sectors per native call and 5056 MiB of NAND
// (10,354,688 sectors). Every range is checked against it before the first
// native call.
//
// # Progress Tracking
//
//	s := nand.New(obj,
//	    nand.WithProgressCallback(func(p nand.Progress) {
//	        fmt.Printf("\r%s %.1f%%", p.Operation, p.Percentage)
//	    }),
//	)
//
// # Error Handling
//
// The package provides structured error types:
//   - InvalidVersionError: the library implements another interface version
//   - OutOfRangeError: the sector range does not fit the device
//   - AlignmentError: a write is not a whole number of sectors
//   - StateError: an operation was called out of order
//   - dsmc.StatusError: the library returned a non-zero status
//   - dsmc.LoadError: the library could not be loaded (from dsmc.Open)
//
// IsUsageError separates caller mistakes (range, alignment) from device
// failures. Nothing is retried: the device state after a failed chunk is
// not assumed safe to resume.
//
// # Concurrency
//
// All calls are synchronous and a Session is not safe for concurrent use.
// Context cancellation is honored between chunks only.
package nand
