package dsmc

// InterfaceVersion is the only DSMC interface version this library can drive.
// The operation table layout changes between versions, so any other value
// must be treated as fatal.
const InterfaceVersion = 3

// Native library constants.
const (
	// LibraryName is the vendor library loaded by Open
	LibraryName = "dsmcdll.dll"

	// FactoryExport is the single export used to create a device object
	FactoryExport = "CreateDSmcObject"
)

// Transfer and buffer sizes expected by the native entries.
const (
	// BlockSize is the NAND sector size in bytes (0x200)
	BlockSize = 0x200

	// DigestSize is the size of the expected 1SMCBL digest
	DigestSize = 16

	// DigestScratchSize is the size of the opaque scratch buffer passed to
	// GetExpDigest1SMCBL. Its contents are defined by the native library.
	DigestScratchSize = 100
)

// Status codes. Zero means success; everything else is a vendor defined
// code, usually an HRESULT. The HRESULT constants below are the ones the
// library is known to return; their values are the signed form of the
// 32-bit code shown in the comment.
const (
	// StatusSuccess indicates the call completed
	StatusSuccess Status = 0

	// StatusNotImpl is E_NOTIMPL (0x80004001)
	StatusNotImpl Status = -0x7FFFBFFF

	// StatusPointer is E_POINTER (0x80004003)
	StatusPointer Status = -0x7FFFBFFD

	// StatusAbort is E_ABORT (0x80004004)
	StatusAbort Status = -0x7FFFBFFC

	// StatusFail is E_FAIL (0x80004005)
	StatusFail Status = -0x7FFFBFFB

	// StatusUnexpected is E_UNEXPECTED (0x8000FFFF), returned when entries
	// are called out of order
	StatusUnexpected Status = -0x7FFF0001

	// StatusAccessDenied is E_ACCESSDENIED (0x80070005)
	StatusAccessDenied Status = -0x7FF8FFFB

	// StatusHandle is E_HANDLE (0x80070006), returned for a released object
	StatusHandle Status = -0x7FF8FFFA

	// StatusOutOfMemory is E_OUTOFMEMORY (0x8007000E)
	StatusOutOfMemory Status = -0x7FF8FFF2

	// StatusInvalidArg is E_INVALIDARG (0x80070057)
	StatusInvalidArg Status = -0x7FF8FFA9
)
