package main

import (
	"context"
	"fmt"
	"mpc-coordinator/internal/client"
	"mpc-coordinator/internal/dto"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// newEntityCmd uploads and fetches fingerprinted artifacts on a running
// coordinator, e.g. to seed entity info before a key generation.
func newEntityCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Store or fetch entity info on a running coordinator",
	}
	cmd.PersistentFlags().StringVar(&addr, "addr", "http://localhost:8080", "coordinator base URL")

	put := &cobra.Command{
		Use:   "put <fingerprint> <file>",
		Short: "Upload the contents of file under fingerprint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return errors.Wrap(err, "reading entity info")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return client.New(addr, nil).PutEntityInfo(ctx, args[0], data)
		},
	}

	get := &cobra.Command{
		Use:   "get <fingerprint>",
		Short: "Print the entity info stored under fingerprint as hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			data, found, err := client.New(addr, nil).GetEntityInfo(ctx, args[0])
			if err != nil {
				return err
			}
			if !found {
				return errors.Errorf("no entity info under %s", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), dto.HexBytes(data))
			return nil
		},
	}

	cmd.AddCommand(put, get)
	return cmd
}
