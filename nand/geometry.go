package nand

import (
	"fmt"
	"math"

	"github.com/moffa90/go-dsmc/dsmc"
)

// Default geometry of the supported NAND part.
const (
	// DefaultBlockSize is the sector size in bytes
	DefaultBlockSize = dsmc.BlockSize

	// DefaultChunkSectors is the number of sectors moved per native call.
	// 8 sectors (0x1000 bytes) is the largest transfer the programmer
	// handles reliably.
	DefaultChunkSectors = 8

	// DefaultCapacity is the NAND capacity in bytes (5056 MiB)
	DefaultCapacity = 5056 * 1024 * 1024

	// ToEnd requests a read up to the last sector of the device
	ToEnd = -1
)

// Geometry describes the sector address space of a device.
type Geometry struct {
	// BlockSize is the sector size in bytes
	BlockSize int

	// ChunkSectors is the maximum number of sectors per native transfer
	ChunkSectors int

	// TotalSectors is the number of addressable sectors
	TotalSectors int64
}

// Span is a range of sectors.
type Span struct {
	// Start is the first sector
	Start int64

	// Count is the number of sectors
	Count int64
}

// DefaultGeometry returns the 5056 MiB, 512-byte sector geometry
// (10,354,688 sectors) transferred 8 sectors at a time.
func DefaultGeometry() Geometry {
	return GeometryForCapacity(DefaultCapacity, DefaultBlockSize, DefaultChunkSectors)
}

// GeometryForCapacity derives the sector count from a capacity in bytes.
func GeometryForCapacity(capacity int64, blockSize, chunkSectors int) Geometry {
	g := Geometry{BlockSize: blockSize, ChunkSectors: chunkSectors}
	if blockSize > 0 {
		g.TotalSectors = capacity / int64(blockSize)
	}
	return g
}

// Validate checks that the geometry can be driven through the native interface.
func (g Geometry) Validate() error {
	if g.BlockSize <= 0 {
		return fmt.Errorf("block size must be positive, got %d", g.BlockSize)
	}
	if g.ChunkSectors <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d sectors", g.ChunkSectors)
	}
	if g.TotalSectors <= 0 {
		return fmt.Errorf("sector count must be positive, got %d", g.TotalSectors)
	}
	// Sector numbers and counts are 32-bit on the native side.
	if g.TotalSectors > math.MaxInt32 {
		return fmt.Errorf("sector count %d exceeds the native 32-bit sector range", g.TotalSectors)
	}
	if int64(g.ChunkSectors)*int64(g.BlockSize) > math.MaxInt32 {
		return fmt.Errorf("chunk of %d sectors is too large", g.ChunkSectors)
	}
	return nil
}

// Capacity returns the size of the address space in bytes.
func (g Geometry) Capacity() int64 {
	return g.TotalSectors * int64(g.BlockSize)
}

// ChunkBytes returns the number of bytes moved per native transfer.
func (g Geometry) ChunkBytes() int {
	return g.ChunkSectors * g.BlockSize
}

// SectorsFor returns the number of sectors needed to hold n bytes.
func (g Geometry) SectorsFor(n int64) int64 {
	bs := int64(g.BlockSize)
	return (n + bs - 1) / bs
}

// SpanBytes returns the size of a span in bytes.
func (g Geometry) SpanBytes(s Span) int64 {
	return s.Count * int64(g.BlockSize)
}

// CheckRange verifies that count sectors starting at start lie inside the
// address space. It returns an *OutOfRangeError otherwise.
func (g Geometry) CheckRange(start, count int64) error {
	if start < 0 || count < 0 || start >= g.TotalSectors || start+count > g.TotalSectors {
		return &OutOfRangeError{Start: start, Count: count, Total: g.TotalSectors}
	}
	return nil
}

// ReadSpan converts a byte offset and length into the sectors to read.
// The start sector is rounded down and the count rounded up, so the span
// covers at least length bytes starting inside the sector holding offset.
// A negative length (ToEnd) reads to the end of the device.
//
// Example:
//
//	g := nand.DefaultGeometry()
//	span, err := g.ReadSpan(0x1000, 100) // Span{Start: 8, Count: 1}
func (g Geometry) ReadSpan(offset, length int64) (Span, error) {
	if offset < 0 {
		return Span{}, &OutOfRangeError{Start: -1, Total: g.TotalSectors}
	}

	start := offset / int64(g.BlockSize)
	var count int64
	if length < 0 {
		count = g.TotalSectors - start
	} else {
		count = g.SectorsFor(length)
	}

	if err := g.CheckRange(start, count); err != nil {
		return Span{}, err
	}
	return Span{Start: start, Count: count}, nil
}

// WriteSpan converts a byte offset and data length into the sectors to write.
// The offset must be sector aligned.
func (g Geometry) WriteSpan(offset int64, n int) (Span, error) {
	if offset < 0 {
		return Span{}, &OutOfRangeError{Start: -1, Total: g.TotalSectors}
	}
	if offset%int64(g.BlockSize) != 0 {
		return Span{}, &AlignmentError{Field: "offset", Value: offset, BlockSize: g.BlockSize}
	}

	start := offset / int64(g.BlockSize)
	count := g.SectorsFor(int64(n))
	if err := g.CheckRange(start, count); err != nil {
		return Span{}, err
	}
	return Span{Start: start, Count: count}, nil
}

// PadToBlock returns data zero-filled up to the next multiple of blockSize.
// Data that is already aligned is returned as is.
func PadToBlock(data []byte, blockSize int) []byte {
	rem := len(data) % blockSize
	if rem == 0 {
		return data
	}
	padded := make([]byte, len(data)+blockSize-rem)
	copy(padded, data)
	return padded
}
