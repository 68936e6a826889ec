package dsmc

import "fmt"

// Status is the raw return code of a native entry.
type Status int32

// Code returns the status as the unsigned 32-bit value vendors document.
func (s Status) Code() uint32 {
	return uint32(s)
}

// Entry identifies a slot in the device object's operation table.
// Entries are declared in table order.
type Entry int

// Operation table entries.
const (
	EntryGetInterfaceVersion Entry = iota
	EntryRelease
	EntryInitialize
	EntryBeginProgramming
	EntryRegisterProgress
	EntryBlockWrite
	EntryBlockRead
	EntryEndProgramming
	EntryPowerButton
	EntrySetSafeTransferMode
	EntryGetExpDigest1SMCBL
	EntrySetExitEvent

	entryCount
)

// EntrySize is the width of one operation table slot (a 64-bit pointer).
const EntrySize = 8

// Byte offsets of the entries within the operation table.
const (
	OffsetGetInterfaceVersion = uintptr(EntryGetInterfaceVersion) * EntrySize // 0x00
	OffsetRelease             = uintptr(EntryRelease) * EntrySize             // 0x08
	OffsetInitialize          = uintptr(EntryInitialize) * EntrySize          // 0x10
	OffsetBeginProgramming    = uintptr(EntryBeginProgramming) * EntrySize    // 0x18
	OffsetRegisterProgress    = uintptr(EntryRegisterProgress) * EntrySize    // 0x20
	OffsetBlockWrite          = uintptr(EntryBlockWrite) * EntrySize          // 0x28
	OffsetBlockRead           = uintptr(EntryBlockRead) * EntrySize           // 0x30
	OffsetEndProgramming      = uintptr(EntryEndProgramming) * EntrySize      // 0x38
	OffsetPowerButton         = uintptr(EntryPowerButton) * EntrySize         // 0x40
	OffsetSetSafeTransferMode = uintptr(EntrySetSafeTransferMode) * EntrySize // 0x48
	OffsetGetExpDigest1SMCBL  = uintptr(EntryGetExpDigest1SMCBL) * EntrySize  // 0x50
	OffsetSetExitEvent        = uintptr(EntrySetExitEvent) * EntrySize        // 0x58
)

var entryNames = [entryCount]string{
	"GetInterfaceVersion",
	"Release",
	"Initialize",
	"BeginProgramming",
	"RegisterProgress",
	"BlockWrite",
	"BlockRead",
	"EndProgramming",
	"PowerButton",
	"SetSafeTransferMode",
	"GetExpDigest1SMCBL",
	"SetExitEvent",
}

func (e Entry) String() string {
	if e < 0 || e >= entryCount {
		return fmt.Sprintf("Entry(%d)", int(e))
	}
	return entryNames[e]
}

// Offset returns the byte offset of the entry within the operation table.
func (e Entry) Offset() uintptr {
	return uintptr(e) * EntrySize
}

// Object is the DSMC device object: one method per operation table entry.
// The native binding implements it on top of the vendor library; Simulator
// implements it in memory.
//
// An Object is not safe for concurrent use. Callers must serialize access,
// and must not call any method after Release.
type Object interface {
	// GetInterfaceVersion returns the interface version the library implements
	GetInterfaceVersion() int32

	// Release frees native-side resources
	Release()

	// Initialize binds to the physical programmer on the given port
	Initialize(port int32) Status

	// BeginProgramming opens a programming session
	BeginProgramming() Status

	// RegisterProgress registers a native progress callback and its state
	RegisterProgress(callback, state uintptr) Status

	// BlockWrite writes sectorCount sectors from buf starting at startSector
	BlockWrite(startSector int32, buf []byte, sectorCount int32) Status

	// BlockRead reads sectorCount sectors into buf starting at startSector
	BlockRead(startSector int32, buf []byte, sectorCount int32) Status

	// EndProgramming closes the programming session
	EndProgramming() Status

	// PowerButton simulates a press of the device power button
	PowerButton() Status

	// SetSafeTransferMode toggles per-transfer verification
	SetSafeTransferMode(safe bool) Status

	// GetExpDigest1SMCBL fills digest (DigestSize bytes) with the expected
	// first-stage bootloader digest. scratch (DigestScratchSize bytes) is
	// owned by the library.
	GetExpDigest1SMCBL(digest, scratch []byte) Status

	// SetExitEvent signals the native side to exit
	SetExitEvent() Status
}
