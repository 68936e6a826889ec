package nand

import "github.com/moffa90/go-dsmc/dsmc"

// Config holds the session configuration.
type Config struct {
	// ProgressCallback is called during transfers to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Geometry is the sector address space of the device
	Geometry Geometry

	// Port is the programmer port passed to Initialize
	Port int32

	// SafeTransferMode enables per-transfer verification in the library
	SafeTransferMode bool

	// SupportedVersion is the only interface version accepted by CheckVersion
	SupportedVersion int32
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Geometry:         DefaultGeometry(),
		Port:             0,
		SafeTransferMode: false,
		SupportedVersion: dsmc.InterfaceVersion,
	}
}

// Option is a functional option for configuring a Session.
type Option func(*Config)

// WithProgressCallback sets a callback function to track transfer progress.
//
// Example:
//
//	s := nand.New(obj,
//	    nand.WithProgressCallback(func(p nand.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for session operations.
//
// Example:
//
//	s := nand.New(obj, nand.WithLogger(slog.Default()))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithGeometry sets the device geometry. Invalid geometries are ignored.
//
// Example:
//
//	g := nand.GeometryForCapacity(256<<20, 512, 8)
//	s := nand.New(obj, nand.WithGeometry(g))
func WithGeometry(g Geometry) Option {
	return func(c *Config) {
		if g.Validate() == nil {
			c.Geometry = g
		}
	}
}

// WithPort sets the programmer port. Default is 0.
func WithPort(port int32) Option {
	return func(c *Config) {
		c.Port = port
	}
}

// WithSafeTransferMode enables or disables per-transfer verification.
// Default is false.
//
// Example:
//
//	s := nand.New(obj, nand.WithSafeTransferMode(true))
func WithSafeTransferMode(safe bool) Option {
	return func(c *Config) {
		c.SafeTransferMode = safe
	}
}

// WithSupportedVersion overrides the interface version accepted by CheckVersion.
// Only useful against simulators; the operation table layout is fixed to
// dsmc.InterfaceVersion.
func WithSupportedVersion(version int32) Option {
	return func(c *Config) {
		c.SupportedVersion = version
	}
}
