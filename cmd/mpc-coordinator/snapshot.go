package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mpc-coordinator/internal/client"
	"mpc-coordinator/internal/coordinator"
	"mpc-coordinator/internal/logger"
	"mpc-coordinator/internal/storage"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect and trigger state snapshots",
	}
	cmd.AddCommand(newInspectCmd(), newListCmd(), newTriggerCmd())
	return cmd
}

// groupSummary is one group's line in an inspect report.
type groupSummary struct {
	ID       string `json:"id"`
	Signers  int    `json:"signers"`
	Sessions int    `json:"sessions"`
}

// stateSummary describes a decoded snapshot without dumping its payloads.
type stateSummary struct {
	Blobs       int            `json:"blobs"`
	Messages    int            `json:"messages"`
	Memberships int            `json:"memberships"`
	Groups      []groupSummary `json:"groups"`
}

func summarize(st coordinator.State) stateSummary {
	out := stateSummary{
		Blobs:       len(st.Blobs),
		Messages:    len(st.Messages),
		Memberships: len(st.Memberships),
		Groups:      make([]groupSummary, 0, len(st.Groups)),
	}
	for id, g := range st.Groups {
		out.Groups = append(out.Groups, groupSummary{ID: id, Signers: len(g.Signatures), Sessions: len(g.Sessions)})
	}
	sort.Slice(out.Groups, func(i, j int) bool { return out.Groups[i].ID < out.Groups[j].ID })
	return out
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func openBackend() (storage.Backend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	backend, err := storage.Open(cfg)
	if err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, errors.New("snapshot backend is \"none\"")
	}
	return backend, nil
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Summarize the latest snapshot in the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend()
			if err != nil {
				return err
			}
			defer backend.Close()

			data, err := backend.Load(cmd.Context())
			if err != nil {
				return err
			}
			st, err := coordinator.DecodeState(data)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), summarize(st))
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List retained snapshots (database backends only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := openBackend()
			if err != nil {
				return err
			}
			defer backend.Close()

			db, ok := backend.(*storage.DBStore)
			if !ok {
				return errors.New("list needs a postgres or sqlite backend")
			}
			snaps, err := db.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range snaps {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d bytes\n", s.SnapshotID, s.CreatedAt.Format(time.RFC3339), s.Size)
			}
			return nil
		},
	}
}

func newTriggerCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Ask a running coordinator to save a snapshot now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			cl := client.New(addr, nil)
			if err := cl.Ping(ctx); err != nil {
				return errors.Wrapf(err, "coordinator at %s is unreachable", addr)
			}
			if err := cl.Snapshot(ctx); err != nil {
				return err
			}
			logger.Log.Infof("Snapshot saved by %s.", addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "coordinator base URL")
	return cmd
}
