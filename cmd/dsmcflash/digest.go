package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moffa90/go-dsmc/nand"
)

func (a *app) digestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "digest",
		Short: "Print the expected 1SMCBL digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.resolveProfile(cmd)
			if err != nil {
				return err
			}
			return a.session(cmd.Context(), p, nil, func(ctx context.Context, s *nand.Session) error {
				d, err := s.ExpectedBootloaderDigest(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Expected 1SMCBL digest: %s\n", d)
				return nil
			})
		},
	}
}
