//go:build windows

package dsmc

import (
	"errors"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Native is a device object created by the vendor library.
// The object's first word points at its operation table; each method
// loads the matching slot and calls it with the object as first argument.
type Native struct {
	dll      *windows.DLL
	obj      unsafe.Pointer
	released bool
}

// OpenLibrary loads the named vendor library, resolves FactoryExport and
// calls it to create a device object.
func OpenLibrary(name string) (Object, error) {
	dll, err := windows.LoadDLL(name)
	if err != nil {
		return nil, &LoadError{Library: name, Step: "load library", Err: err}
	}

	proc, err := dll.FindProc(FactoryExport)
	if err != nil {
		return nil, &LoadError{Library: name, Step: "resolve " + FactoryExport, Err: err}
	}

	var obj unsafe.Pointer
	r1, _, _ := proc.Call(uintptr(unsafe.Pointer(&obj)))
	if err := Check(FactoryExport, Status(int32(r1))); err != nil {
		return nil, &LoadError{Library: name, Step: "create object", Err: err}
	}
	if obj == nil {
		return nil, &LoadError{Library: name, Step: "create object", Err: errors.New("factory returned a nil object")}
	}

	// The library stays loaded for the life of the process: the
	// operation table points into it.
	return &Native{dll: dll, obj: obj}, nil
}

// entry returns the address stored in the given operation table slot.
func (n *Native) entry(off uintptr) uintptr {
	vtbl := *(*unsafe.Pointer)(n.obj)
	return *(*uintptr)(unsafe.Add(vtbl, off))
}

func (n *Native) call0(off uintptr) Status {
	if n.released {
		return StatusHandle
	}
	r1, _, _ := syscall.SyscallN(n.entry(off), uintptr(n.obj))
	return Status(int32(r1))
}

func (n *Native) GetInterfaceVersion() int32 {
	if n.released {
		return 0
	}
	r1, _, _ := syscall.SyscallN(n.entry(OffsetGetInterfaceVersion), uintptr(n.obj))
	return int32(r1)
}

// Release calls the native Release entry. Later calls are no-ops.
func (n *Native) Release() {
	if n.released {
		return
	}
	syscall.SyscallN(n.entry(OffsetRelease), uintptr(n.obj))
	n.released = true
}

func (n *Native) Initialize(port int32) Status {
	if n.released {
		return StatusHandle
	}
	r1, _, _ := syscall.SyscallN(n.entry(OffsetInitialize), uintptr(n.obj), uintptr(port))
	return Status(int32(r1))
}

func (n *Native) BeginProgramming() Status {
	return n.call0(OffsetBeginProgramming)
}

func (n *Native) RegisterProgress(callback, state uintptr) Status {
	if n.released {
		return StatusHandle
	}
	r1, _, _ := syscall.SyscallN(n.entry(OffsetRegisterProgress), uintptr(n.obj), callback, state)
	return Status(int32(r1))
}

func (n *Native) BlockWrite(startSector int32, buf []byte, sectorCount int32) Status {
	if n.released {
		return StatusHandle
	}
	if len(buf) < int(sectorCount)*BlockSize || len(buf) == 0 {
		return StatusInvalidArg
	}
	r1, _, _ := syscall.SyscallN(n.entry(OffsetBlockWrite),
		uintptr(n.obj),
		uintptr(startSector),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(sectorCount),
	)
	runtime.KeepAlive(buf)
	return Status(int32(r1))
}

func (n *Native) BlockRead(startSector int32, buf []byte, sectorCount int32) Status {
	if n.released {
		return StatusHandle
	}
	if len(buf) < int(sectorCount)*BlockSize || len(buf) == 0 {
		return StatusInvalidArg
	}
	r1, _, _ := syscall.SyscallN(n.entry(OffsetBlockRead),
		uintptr(n.obj),
		uintptr(startSector),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(sectorCount),
	)
	runtime.KeepAlive(buf)
	return Status(int32(r1))
}

func (n *Native) EndProgramming() Status {
	return n.call0(OffsetEndProgramming)
}

func (n *Native) PowerButton() Status {
	return n.call0(OffsetPowerButton)
}

func (n *Native) SetSafeTransferMode(safe bool) Status {
	if n.released {
		return StatusHandle
	}
	var flag uintptr
	if safe {
		flag = 1
	}
	r1, _, _ := syscall.SyscallN(n.entry(OffsetSetSafeTransferMode), uintptr(n.obj), flag)
	return Status(int32(r1))
}

func (n *Native) GetExpDigest1SMCBL(digest, scratch []byte) Status {
	if n.released {
		return StatusHandle
	}
	if len(digest) < DigestSize || len(scratch) < DigestScratchSize {
		return StatusInvalidArg
	}
	r1, _, _ := syscall.SyscallN(n.entry(OffsetGetExpDigest1SMCBL),
		uintptr(n.obj),
		uintptr(unsafe.Pointer(&digest[0])),
		uintptr(unsafe.Pointer(&scratch[0])),
	)
	runtime.KeepAlive(digest)
	runtime.KeepAlive(scratch)
	return Status(int32(r1))
}

func (n *Native) SetExitEvent() Status {
	return n.call0(OffsetSetExitEvent)
}
