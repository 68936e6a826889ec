package dsmc

import (
	"errors"
	"runtime"
	"strings"
	"testing"
)

type recordingLogger struct {
	msgs []string
}

func (l *recordingLogger) Debug(msg string, kv ...interface{}) {
	l.msgs = append(l.msgs, msg)
}

func TestTrace(t *testing.T) {
	sim := NewSimulator(WithSectors(BlockSize, 16))
	logger := &recordingLogger{}
	obj := Trace(sim, logger)

	obj.GetInterfaceVersion()
	obj.Initialize(0)
	obj.BeginProgramming()
	obj.BlockRead(0, make([]byte, BlockSize), 1)
	obj.EndProgramming()
	obj.Release()

	want := []string{
		"dsmc GetInterfaceVersion",
		"dsmc Initialize",
		"dsmc BeginProgramming",
		"dsmc BlockRead",
		"dsmc EndProgramming",
		"dsmc Release",
	}
	if len(logger.msgs) != len(want) {
		t.Fatalf("got %d log records, want %d: %v", len(logger.msgs), len(want), logger.msgs)
	}
	for i := range want {
		if logger.msgs[i] != want[i] {
			t.Errorf("record %d = %q, want %q", i, logger.msgs[i], want[i])
		}
	}

	if sim.Calls(EntryBlockRead) != 1 {
		t.Error("traced call was not forwarded")
	}
}

func TestTraceNilLogger(t *testing.T) {
	sim := NewSimulator()
	if obj := Trace(sim, nil); obj != Object(sim) {
		t.Error("Trace with nil logger should return the object unchanged")
	}
}

func TestOpenUnsupported(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("vendor library may be installed on windows")
	}

	obj, err := Open()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if obj != nil {
		t.Error("Open() returned an object with an error")
	}
	if !errors.Is(err, ErrLoad) || !errors.Is(err, ErrUnsupportedPlatform) {
		t.Errorf("error = %v, want ErrLoad wrapping ErrUnsupportedPlatform", err)
	}
	if !strings.Contains(err.Error(), LibraryName) {
		t.Errorf("error should name %s, got: %s", LibraryName, err)
	}
}
