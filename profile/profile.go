package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"github.com/moffa90/go-dsmc/dsmc"
	"github.com/moffa90/go-dsmc/nand"
)

// BuiltinName is the name of the profile used when no file is given.
const BuiltinName = "default"

// ErrUnknownProfile is matched when Lookup cannot find the requested profile.
var ErrUnknownProfile = errors.New("unknown profile")

// GeometrySpec is the on-disk form of nand.Geometry. The sector count is
// given either as capacity_mib or as total_sectors, never both.
type GeometrySpec struct {
	BlockSize    int   `yaml:"block_size"`
	ChunkSectors int   `yaml:"chunk_sectors"`
	CapacityMiB  int64 `yaml:"capacity_mib"`
	TotalSectors int64 `yaml:"total_sectors"`
}

// Profile describes one device model.
type Profile struct {
	// Name is the key the profile was declared under
	Name string `yaml:"-"`

	// Library is the vendor library to load
	Library string `yaml:"library"`

	// Port is passed to Initialize
	Port int32 `yaml:"port"`

	// Safe enables safe transfer mode
	Safe bool `yaml:"safe"`

	Geometry GeometrySpec `yaml:"geometry"`
}

// File is a parsed profile file.
type File struct {
	// Default names the profile used when none is requested
	Default string `yaml:"default"`

	Profiles map[string]*Profile `yaml:"profiles"`
}

// ValidationError reports an invalid profile.
type ValidationError struct {
	Profile string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("profile %q: %v", e.Profile, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Builtin returns the profile for the stock 5056 MiB part on port 0.
func Builtin() *Profile {
	return &Profile{
		Name:    BuiltinName,
		Library: dsmc.LibraryName,
		Geometry: GeometrySpec{
			BlockSize:    nand.DefaultBlockSize,
			ChunkSectors: nand.DefaultChunkSectors,
			CapacityMiB:  nand.DefaultCapacity >> 20,
		},
	}
}

// Load parses a profile file from the given path.
//
// Example:
//
//	f, err := profile.Load("dsmc.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := f.Lookup("")
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile file: %w", err)
	}
	defer func() { _ = f.Close() }()

	pf, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pf, nil
}

// Parse parses a profile file from any io.Reader. Unknown keys are rejected.
// Missing profile fields take the builtin values.
func Parse(r io.Reader) (*File, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var f File
	if err := yaml.UnmarshalStrict(buf.Bytes(), &f); err != nil {
		return nil, fmt.Errorf("invalid profile file: %w", err)
	}

	if len(f.Profiles) == 0 {
		return nil, fmt.Errorf("no profiles found in file")
	}

	for name, p := range f.Profiles {
		if p == nil {
			p = &Profile{}
			f.Profiles[name] = p
		}
		p.Name = name
		p.applyDefaults()
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	if f.Default != "" {
		if _, ok := f.Profiles[f.Default]; !ok {
			return nil, fmt.Errorf("default profile %q is not defined", f.Default)
		}
	}

	return &f, nil
}

// Names returns the declared profile names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named profile. An empty name selects the file's
// default, or the only profile when the file declares exactly one.
func (f *File) Lookup(name string) (*Profile, error) {
	if name == "" {
		name = f.Default
	}
	if name == "" {
		if len(f.Profiles) != 1 {
			return nil, fmt.Errorf("%w: no default among %v", ErrUnknownProfile, f.Names())
		}
		name = f.Names()[0]
	}

	p, ok := f.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownProfile, name, f.Names())
	}
	return p, nil
}

func (p *Profile) applyDefaults() {
	def := Builtin()
	if p.Library == "" {
		p.Library = def.Library
	}
	if p.Geometry.BlockSize == 0 {
		p.Geometry.BlockSize = def.Geometry.BlockSize
	}
	if p.Geometry.ChunkSectors == 0 {
		p.Geometry.ChunkSectors = def.Geometry.ChunkSectors
	}
	if p.Geometry.CapacityMiB == 0 && p.Geometry.TotalSectors == 0 {
		p.Geometry.CapacityMiB = def.Geometry.CapacityMiB
	}
}

// Validate checks the port and the geometry.
func (p *Profile) Validate() error {
	if p.Port < 0 {
		return &ValidationError{Profile: p.Name, Err: fmt.Errorf("port must not be negative, got %d", p.Port)}
	}
	if p.Geometry.CapacityMiB != 0 && p.Geometry.TotalSectors != 0 {
		return &ValidationError{Profile: p.Name, Err: errors.New("geometry: set capacity_mib or total_sectors, not both")}
	}
	if p.Geometry.CapacityMiB < 0 {
		return &ValidationError{Profile: p.Name, Err: fmt.Errorf("geometry: capacity_mib must be positive, got %d", p.Geometry.CapacityMiB)}
	}
	if err := p.NANDGeometry().Validate(); err != nil {
		return &ValidationError{Profile: p.Name, Err: fmt.Errorf("geometry: %w", err)}
	}
	return nil
}

// NANDGeometry converts the profile geometry for use with nand.WithGeometry.
func (p *Profile) NANDGeometry() nand.Geometry {
	g := p.Geometry
	if g.TotalSectors != 0 {
		return nand.Geometry{BlockSize: g.BlockSize, ChunkSectors: g.ChunkSectors, TotalSectors: g.TotalSectors}
	}
	return nand.GeometryForCapacity(g.CapacityMiB<<20, g.BlockSize, g.ChunkSectors)
}

// Options returns the session options the profile implies.
func (p *Profile) Options() []nand.Option {
	return []nand.Option{
		nand.WithGeometry(p.NANDGeometry()),
		nand.WithPort(p.Port),
		nand.WithSafeTransferMode(p.Safe),
	}
}
