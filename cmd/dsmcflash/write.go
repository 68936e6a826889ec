package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-dsmc/nand"
	"github.com/moffa90/go-dsmc/profile"
)

func (a *app) writeCmd() *cobra.Command {
	var (
		file   string
		offset int64
		pad    bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write a file to flash",
		Long: "Write a file to NAND flash. The offset must be sector aligned and the file a whole " +
			"number of sectors; --pad zero-fills the last partial sector. Intel HEX images are " +
			"placed at their record address plus --offset.",
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

			data, base, err := loadImage(file, format)
			if err != nil {
				return err
			}

			g := p.NANDGeometry()
			span, err := g.WriteSpan(offset+base, len(data))
			if err != nil {
				return fmt.Errorf("write: %w", err)
			}
			if pad {
				data = nand.PadToBlock(data, g.BlockSize)
			} else if len(data)%g.BlockSize != 0 {
				err := &nand.AlignmentError{Field: "length", Value: int64(len(data)), BlockSize: g.BlockSize}
				return fmt.Errorf("write: %w (use --pad to zero-fill the last sector)", err)
			}

			return a.write(cmd.Context(), p, span, data)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "input file path")
	cmd.Flags().Int64VarP(&offset, "offset", "o", 0, "start offset in bytes (sector aligned)")
	cmd.Flags().BoolVar(&pad, "pad", false, "zero-fill the last partial sector")
	cmd.Flags().StringVar(&format, "format", formatAuto, "input format: auto, bin or hex (Intel HEX)")
	return cmd
}

func (a *app) write(ctx context.Context, p *profile.Profile, span nand.Span, data []byte) error {
	bar := a.newProgressBar()
	defer bar.finish()

	return a.session(ctx, p, bar.update, func(ctx context.Context, s *nand.Session) error {
		return s.Write(ctx, span.Start, data)
	})
}
