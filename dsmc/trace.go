package dsmc

import (
	"fmt"
	"time"
)

// Logger receives one debug record per native call from a traced Object.
// The nand package's Logger and *slog.Logger both satisfy it.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
}

// tracedObject wraps an Object and logs every call with its result and duration.
type tracedObject struct {
	impl Object
	log  Logger
}

// Trace returns an Object that forwards to obj and logs each call to logger.
// A nil logger returns obj unchanged.
func Trace(obj Object, logger Logger) Object {
	if logger == nil {
		return obj
	}
	return &tracedObject{impl: obj, log: logger}
}

func (t *tracedObject) status(entry Entry, start time.Time, st Status, kv ...interface{}) Status {
	kv = append(kv,
		"status", fmt.Sprintf("0x%08X", st.Code()),
		"elapsed", time.Since(start).String(),
	)
	t.log.Debug("dsmc "+entry.String(), kv...)
	return st
}

func (t *tracedObject) GetInterfaceVersion() int32 {
	start := time.Now()
	v := t.impl.GetInterfaceVersion()
	t.log.Debug("dsmc "+EntryGetInterfaceVersion.String(), "version", v, "elapsed", time.Since(start).String())
	return v
}

func (t *tracedObject) Release() {
	start := time.Now()
	t.impl.Release()
	t.log.Debug("dsmc "+EntryRelease.String(), "elapsed", time.Since(start).String())
}

func (t *tracedObject) Initialize(port int32) Status {
	start := time.Now()
	return t.status(EntryInitialize, start, t.impl.Initialize(port), "port", port)
}

func (t *tracedObject) BeginProgramming() Status {
	start := time.Now()
	return t.status(EntryBeginProgramming, start, t.impl.BeginProgramming())
}

func (t *tracedObject) RegisterProgress(callback, state uintptr) Status {
	start := time.Now()
	return t.status(EntryRegisterProgress, start, t.impl.RegisterProgress(callback, state),
		"callback", fmt.Sprintf("%#x", callback))
}

func (t *tracedObject) BlockWrite(startSector int32, buf []byte, sectorCount int32) Status {
	start := time.Now()
	return t.status(EntryBlockWrite, start, t.impl.BlockWrite(startSector, buf, sectorCount),
		"start_sector", startSector, "sectors", sectorCount)
}

func (t *tracedObject) BlockRead(startSector int32, buf []byte, sectorCount int32) Status {
	start := time.Now()
	return t.status(EntryBlockRead, start, t.impl.BlockRead(startSector, buf, sectorCount),
		"start_sector", startSector, "sectors", sectorCount)
}

func (t *tracedObject) EndProgramming() Status {
	start := time.Now()
	return t.status(EntryEndProgramming, start, t.impl.EndProgramming())
}

func (t *tracedObject) PowerButton() Status {
	start := time.Now()
	return t.status(EntryPowerButton, start, t.impl.PowerButton())
}

func (t *tracedObject) SetSafeTransferMode(safe bool) Status {
	start := time.Now()
	return t.status(EntrySetSafeTransferMode, start, t.impl.SetSafeTransferMode(safe), "safe", safe)
}

func (t *tracedObject) GetExpDigest1SMCBL(digest, scratch []byte) Status {
	start := time.Now()
	return t.status(EntryGetExpDigest1SMCBL, start, t.impl.GetExpDigest1SMCBL(digest, scratch))
}

func (t *tracedObject) SetExitEvent() Status {
	start := time.Now()
	return t.status(EntrySetExitEvent, start, t.impl.SetExitEvent())
}
