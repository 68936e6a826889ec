package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-dsmc/nand"
	"github.com/moffa90/go-dsmc/profile"
)

func (a *app) readCmd() *cobra.Command {
	var (
		file   string
		offset int64
		length int64
		format string
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read flash to a file",
		Long: "Read NAND flash into a file. The offset is rounded down and the length rounded up " +
			"to whole sectors. Without --length the read continues to the end of the NAND.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return usagef("--file is required")
			}
			format, err := resolveFormat(format, file)
			if err != nil {
				return err
			}
			p, err := a.resolveProfile(cmd)
			if err != nil {
				return err
			}

			g := p.NANDGeometry()
			span, err := g.ReadSpan(offset, length)
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}
			if format == formatHex && (span.Start+span.Count)*int64(g.BlockSize) > 1<<32 {
				return usagef("read: Intel HEX output is limited to the first 4 GiB, use --format bin")
			}
			return a.read(cmd.Context(), p, file, format, span)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "output file path")
	cmd.Flags().Int64VarP(&offset, "offset", "o", 0, "start offset in bytes")
	cmd.Flags().Int64VarP(&length, "length", "l", nand.ToEnd, "number of bytes to read (defaults to the rest of the NAND)")
	cmd.Flags().StringVar(&format, "format", formatAuto, "output format: auto, bin or hex (Intel HEX)")
	return cmd
}

func (a *app) read(ctx context.Context, p *profile.Profile, path, format string, span nand.Span) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	g := p.NANDGeometry()
	w := bufio.NewWriterSize(f, g.ChunkBytes()*16)

	// Intel HEX needs the whole range before encoding.
	var sink io.Writer = w
	var hexBuf *bytes.Buffer
	if format == formatHex {
		hexBuf = new(bytes.Buffer)
		sink = hexBuf
	}

	bar := a.newProgressBar()
	defer bar.finish()

	err = a.session(ctx, p, bar.update, func(ctx context.Context, s *nand.Session) error {
		_, err := s.ReadTo(ctx, sink, span.Start, span.Count)
		return err
	})
	if err != nil {
		return err
	}

	if hexBuf != nil {
		if err := saveHex(w, span.Start*int64(g.BlockSize), hexBuf.Bytes()); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
