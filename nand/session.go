package nand

import (
	"context"
	"fmt"

	"github.com/moffa90/go-dsmc/dsmc"
)

// State is the lifecycle state of a Session.
type State int

// Session states. Transitions are strictly linear:
// Unopened → VersionChecked → Initialized ⇄ Programming → Closed.
const (
	StateUnopened State = iota
	StateVersionChecked
	StateInitialized
	StateProgramming
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateVersionChecked:
		return "version-checked"
	case StateInitialized:
		return "initialized"
	case StateProgramming:
		return "programming"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session drives one DSMC device object through its lifecycle and owns it
// until Release. Operations called out of order fail with *StateError
// without reaching the library.
//
// A Session is not safe for concurrent use: at most one operation may be
// in flight at a time.
type Session struct {
	obj    dsmc.Object
	config Config
	state  State

	version      int32
	safeModeSet  bool
	transferring bool
}

// New creates a Session for obj. The session takes ownership of obj and
// releases it in Release or Close.
//
// Example:
//
//	obj, err := dsmc.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s := nand.New(obj, nand.WithSafeTransferMode(true))
//	defer s.Close()
func New(obj dsmc.Object, opts ...Option) *Session {
	if obj == nil {
		panic("device object cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		obj:    obj,
		config: cfg,
		state:  StateUnopened,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Geometry returns the address space the session transfers against.
func (s *Session) Geometry() Geometry {
	return s.config.Geometry
}

// Version returns the interface version seen by CheckVersion, or 0 before it ran.
func (s *Session) Version() int32 {
	return s.version
}

// require returns a *StateError unless the session is in one of states.
func (s *Session) require(op string, states ...State) error {
	for _, st := range states {
		if s.state == st {
			return nil
		}
	}
	return &StateError{Op: op, State: s.state}
}

// InterfaceVersion returns the interface version implemented by the library.
// The native call has no status and cannot fail.
func (s *Session) InterfaceVersion() (int32, error) {
	if err := s.require("get interface version",
		StateUnopened, StateVersionChecked, StateInitialized, StateProgramming); err != nil {
		return 0, err
	}
	return s.obj.GetInterfaceVersion(), nil
}

// CheckVersion confirms that the library implements the supported interface
// version. It must succeed before Initialize.
func (s *Session) CheckVersion() error {
	if err := s.require("check version", StateUnopened); err != nil {
		return err
	}

	version := s.obj.GetInterfaceVersion()
	s.logInfo("dsmc interface version", "version", version)

	if version != s.config.SupportedVersion {
		return &InvalidVersionError{Got: version, Want: s.config.SupportedVersion}
	}

	s.version = version
	s.state = StateVersionChecked
	return nil
}

// Initialize binds the library to the programmer on port.
func (s *Session) Initialize(port int32) error {
	if err := s.require("initialize", StateVersionChecked); err != nil {
		return err
	}
	if err := dsmc.Check("initialize", s.obj.Initialize(port)); err != nil {
		return err
	}

	s.logDebug("programmer initialized", "port", port)
	s.state = StateInitialized
	return nil
}

// BeginProgramming opens a programming session. Transfers are only legal
// between BeginProgramming and EndProgramming.
func (s *Session) BeginProgramming() error {
	if err := s.require("begin programming", StateInitialized); err != nil {
		return err
	}
	if err := dsmc.Check("begin programming", s.obj.BeginProgramming()); err != nil {
		return err
	}

	s.state = StateProgramming
	return nil
}

// SetSafeTransferMode enables or disables per-transfer verification inside
// the library. It may be called once per session, after Initialize and
// before the first transfer.
func (s *Session) SetSafeTransferMode(safe bool) error {
	const op = "set safe transfer mode"
	if err := s.require(op, StateInitialized, StateProgramming); err != nil {
		return err
	}
	if s.safeModeSet || s.transferring {
		return &StateError{Op: op, State: s.state}
	}
	if err := dsmc.Check(op, s.obj.SetSafeTransferMode(safe)); err != nil {
		return err
	}

	s.logDebug("safe transfer mode set", "safe", safe)
	s.safeModeSet = true
	return nil
}

// EndProgramming closes the programming session.
func (s *Session) EndProgramming() error {
	if err := s.require("end programming", StateProgramming); err != nil {
		return err
	}
	if err := dsmc.Check("end programming", s.obj.EndProgramming()); err != nil {
		return err
	}

	s.state = StateInitialized
	return nil
}

// PowerButton simulates a press of the device power button.
func (s *Session) PowerButton() error {
	if err := s.require("power button", StateInitialized, StateProgramming); err != nil {
		return err
	}
	return dsmc.Check("power button", s.obj.PowerButton())
}

// SetExitEvent signals the library's worker to exit.
func (s *Session) SetExitEvent() error {
	if err := s.require("set exit event", StateInitialized, StateProgramming); err != nil {
		return err
	}
	return dsmc.Check("set exit event", s.obj.SetExitEvent())
}

// Release releases the device object. It is valid in any state and is
// a no-op once the session is closed.
func (s *Session) Release() {
	if s.state == StateClosed {
		return
	}
	s.obj.Release()
	s.state = StateClosed
}

// Close ends the programming session if one is open and releases the
// device object. A failure to end programming is logged and returned;
// the object is released either way.
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}

	var err error
	if s.state == StateProgramming {
		if err = s.EndProgramming(); err != nil {
			s.logError("end programming during close", "error", err)
		}
	}

	s.Release()
	return err
}

// Start brings a new session from Unopened to Programming: version check,
// Initialize on the configured port, BeginProgramming, then the configured
// safe transfer mode.
func (s *Session) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}
	if err := s.CheckVersion(); err != nil {
		return err
	}
	if err := s.Initialize(s.config.Port); err != nil {
		return err
	}
	if err := s.BeginProgramming(); err != nil {
		return err
	}
	if err := s.SetSafeTransferMode(s.config.SafeTransferMode); err != nil {
		return err
	}
	return nil
}

// Run opens a session on obj, calls fn with it while programming, and
// always ends programming and releases obj afterwards, including when
// Start or fn fail or fn panics. A cleanup failure is only returned when
// everything else succeeded; otherwise it is logged.
//
// Example:
//
//	err := nand.Run(ctx, obj, func(ctx context.Context, s *nand.Session) error {
//	    digest, err := s.ExpectedBootloaderDigest(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(digest)
//	    return nil
//	}, nand.WithSafeTransferMode(true))
func Run(ctx context.Context, obj dsmc.Object, fn func(context.Context, *Session) error, opts ...Option) (err error) {
	s := New(obj, opts...)
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close session: %w", cerr)
		}
	}()

	if err := s.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, s)
}

// reportProgress calls the progress callback if configured.
func (s *Session) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Session) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
