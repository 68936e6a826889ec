package nand

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-dsmc/dsmc"
)

// Read reads count sectors starting at start and returns them in ascending
// sector order. The range is checked before any native call.
//
// Example:
//
//	data, err := s.Read(ctx, 0, 16) // first 8 KiB of the device
func (s *Session) Read(ctx context.Context, start, count int64) ([]byte, error) {
	var buf bytes.Buffer
	if count > 0 {
		buf.Grow(int(count) * s.config.Geometry.BlockSize)
	}
	if _, err := s.ReadTo(ctx, &buf, start, count); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadTo reads count sectors starting at start and streams them to w,
// one chunk of at most Geometry.ChunkSectors sectors per native call.
// Progress is reported after each chunk. Cancellation is checked between
// chunks; a chunk already issued always completes.
// It returns the number of bytes written to w.
func (s *Session) ReadTo(ctx context.Context, w io.Writer, start, count int64) (int64, error) {
	if err := s.require("block read", StateProgramming); err != nil {
		return 0, err
	}
	g := s.config.Geometry
	if err := g.CheckRange(start, count); err != nil {
		return 0, err
	}

	s.transferring = true
	startTime := time.Now()
	total := count * int64(g.BlockSize)
	end := start + count
	chunk := make([]byte, g.ChunkBytes())

	s.logDebug("read started", "start_sector", start, "sectors", count)
	s.reportProgress(Progress{
		Operation:   OpRead,
		StartSector: start,
		Sector:      start,
		TotalBytes:  total,
	})

	var done int64
	for sector := start; sector < end; sector += int64(g.ChunkSectors) {
		if err := ctx.Err(); err != nil {
			return done, fmt.Errorf("cancelled at sector %d: %w", sector, err)
		}

		n := min(int64(g.ChunkSectors), end-sector)
		buf := chunk[:n*int64(g.BlockSize)]

		if err := dsmc.Check("block read", s.obj.BlockRead(int32(sector), buf, int32(n))); err != nil {
			return done, fmt.Errorf("read sectors %d-%d: %w", sector, sector+n-1, err)
		}
		if _, err := w.Write(buf); err != nil {
			return done, fmt.Errorf("write sectors %d-%d: %w", sector, sector+n-1, err)
		}

		done += int64(len(buf))
		s.reportProgress(Progress{
			Operation:   OpRead,
			StartSector: start,
			Sector:      sector + n,
			BytesDone:   done,
			TotalBytes:  total,
			Percentage:  percentage(done, total),
			ElapsedTime: time.Since(startTime),
		})
	}

	s.logInfo("read complete",
		"start_sector", start,
		"bytes", done,
		"elapsed", time.Since(startTime).String(),
	)
	return done, nil
}

// Write writes data starting at sector start, one chunk of at most
// Geometry.ChunkBytes bytes per native call. The range and the data length
// are checked before any native call: len(data) must be a whole number of
// sectors (see PadToBlock). Progress is reported after each chunk and
// cancellation is checked between chunks.
//
// Example:
//
//	image := nand.PadToBlock(raw, s.Geometry().BlockSize)
//	err := s.Write(ctx, 0, image)
func (s *Session) Write(ctx context.Context, start int64, data []byte) error {
	if err := s.require("block write", StateProgramming); err != nil {
		return err
	}
	g := s.config.Geometry
	if err := g.CheckRange(start, g.SectorsFor(int64(len(data)))); err != nil {
		return err
	}
	if len(data)%g.BlockSize != 0 {
		return &AlignmentError{Field: "length", Value: int64(len(data)), BlockSize: g.BlockSize}
	}

	s.transferring = true
	startTime := time.Now()
	total := int64(len(data))
	chunkBytes := g.ChunkBytes()

	s.logDebug("write started", "start_sector", start, "bytes", total)
	s.reportProgress(Progress{
		Operation:   OpWrite,
		StartSector: start,
		Sector:      start,
		TotalBytes:  total,
	})

	for off := 0; off < len(data); off += chunkBytes {
		sector := start + int64(off/g.BlockSize)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled at sector %d: %w", sector, err)
		}

		chunk := data[off:min(off+chunkBytes, len(data))]
		n := int64(len(chunk) / g.BlockSize)

		if err := dsmc.Check("block write", s.obj.BlockWrite(int32(sector), chunk, int32(n))); err != nil {
			return fmt.Errorf("write sectors %d-%d: %w", sector, sector+n-1, err)
		}

		done := int64(off + len(chunk))
		s.reportProgress(Progress{
			Operation:   OpWrite,
			StartSector: start,
			Sector:      sector + n,
			BytesDone:   done,
			TotalBytes:  total,
			Percentage:  percentage(done, total),
			ElapsedTime: time.Since(startTime),
		})
	}

	s.logInfo("write complete",
		"start_sector", start,
		"bytes", total,
		"elapsed", time.Since(startTime).String(),
	)
	return nil
}

func percentage(done, total int64) float64 {
	if total == 0 {
		return 100
	}
	return float64(done) / float64(total) * 100
}
