// Package dsmc binds the vendor DSMC programming library (dsmcdll.dll).
//
// # Object Layout
//
// The library exports a single factory, CreateDSmcObject, which returns a
// device object. The object's first word points at a fixed operation table:
//
//	0x00 GetInterfaceVersion   0x30 BlockRead
//	0x08 Release               0x38 EndProgramming
//	0x10 Initialize            0x40 PowerButton
//	0x18 BeginProgramming      0x48 SetSafeTransferMode
//	0x20 RegisterProgress      0x50 GetExpDigest1SMCBL
//	0x28 BlockWrite            0x58 SetExitEvent
//
// Every entry takes the object as its first argument. All entries except
// GetInterfaceVersion and Release return a status: 0 on success, otherwise
// a vendor code (usually an HRESULT) that is surfaced verbatim.
//
// # Objects
//
// The Object interface has one method per table entry. Open returns an
// Object backed by the vendor library (Windows only); NewSimulator returns
// an in-memory Object for tests and dry runs:
//
//	obj, err := dsmc.Open()
//	if err != nil {
//	    // err is a *dsmc.LoadError; errors.Is(err, dsmc.ErrLoad) is true
//	}
//
//	sim := dsmc.NewSimulator(dsmc.WithSectors(512, 4096))
//
// # Error Handling
//
// Use Check to turn a status into an error:
//
//	if err := dsmc.Check("begin programming", obj.BeginProgramming()); err != nil {
//	    // err.Error() returns: "begin programming failed: unexpected call (0x8000FFFF)"
//	}
//
// # Tracing
//
// Trace wraps an Object and logs every native call at debug level.
//
// An Object is not safe for concurrent use; the nand package layers the
// session ordering rules on top of it.
package dsmc
