package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
)

// Image file formats.
const (
	formatAuto = "auto"
	formatBin  = "bin"
	formatHex  = "hex"
)

// erasedByte fills gaps between Intel HEX records.
const erasedByte = 0xFF

// resolveFormat picks the image format, guessing from the file extension
// for formatAuto.
func resolveFormat(format, path string) (string, error) {
	switch format {
	case formatBin, formatHex:
		return format, nil
	case formatAuto, "":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".hex", ".ihex":
			return formatHex, nil
		}
		return formatBin, nil
	default:
		return "", usagef("invalid --format %q (want auto, bin or hex)", format)
	}
}

// loadImage reads an image to write. Raw images start at base 0. Intel HEX
// images start at their lowest record address and gaps are filled with
// erasedByte.
func loadImage(path, format string) (data []byte, base int64, err error) {
	if format != formatHex {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read input file: %w", err)
		}
		return data, 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(f); err != nil {
		return nil, 0, fmt.Errorf("invalid Intel HEX image: %w", err)
	}

	segments := mem.GetDataSegments()
	if len(segments) == 0 {
		return nil, 0, fmt.Errorf("no data records in Intel HEX image")
	}

	start := segments[0].Address
	last := segments[len(segments)-1]
	end := uint64(last.Address) + uint64(len(last.Data))
	return mem.ToBinary(start, uint32(end-uint64(start)), erasedByte), int64(start), nil
}

// saveHex writes data as Intel HEX records starting at base.
func saveHex(w io.Writer, base int64, data []byte) error {
	if base < 0 || base+int64(len(data)) > math.MaxUint32+1 {
		return usagef("Intel HEX output is limited to the first 4 GiB")
	}

	mem := gohex.NewMemory()
	if err := mem.AddBinary(uint32(base), data); err != nil {
		return fmt.Errorf("failed to encode Intel HEX: %w", err)
	}
	return mem.DumpIntelHex(w, 16)
}
