package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/hdwhdw/pathmap/pkg/gnoi"
	"github.com/hdwhdw/pathmap/pkg/gnoi/server"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

// remoteFlags are shared by commands talking to a running server
type remoteFlags struct {
	address string
	timeout time.Duration
}

func (f *remoteFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.address, "address", server.DefaultAddress, "gNOI server address")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "Deadline for the request")
}

// withClient dials the server, runs fn and closes the connection
func (f *remoteFlags) withClient(ctx context.Context, fn func(ctx context.Context, c gnoi.Client) error) error {
	c, err := newClient(f.address)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			klog.V(2).InfoS("Failed to close gNOI client", "error", err)
		}
	}()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return fn(ctx, c)
}

func newStatCmd() *cobra.Command {
	var rf remoteFlags

	cmd := &cobra.Command{
		Use:   "stat <logical-path>",
		Short: "Show the file or directory a logical path maps to on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rf.withClient(cmd.Context(), func(ctx context.Context, c gnoi.Client) error {
				infos, err := c.File().Stat(ctx, args[0])
				if err != nil {
					return err
				}
				return printStat(cmd.OutOrStdout(), infos)
			})
		},
	}

	rf.bind(cmd)
	return cmd
}

func printStat(out io.Writer, infos []gnoi.FileInfo) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, info := range infos {
		fmt.Fprintf(w, "%04o\t%d\t%s\t%s\n",
			info.Permissions,
			info.Size,
			info.LastModified.UTC().Format(time.RFC3339),
			info.Path)
	}
	return w.Flush()
}

func newGetCmd() *cobra.Command {
	var (
		rf     remoteFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "get <logical-path>",
		Short: "Download the file a logical path maps to on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}

			return rf.withClient(cmd.Context(), func(ctx context.Context, c gnoi.Client) error {
				n, err := c.File().Get(ctx, args[0], out)
				if err != nil {
					return err
				}
				klog.InfoS("Downloaded file", "logicalPath", args[0], "size", n)
				return nil
			})
		},
	}

	rf.bind(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Write the file here instead of standard output")
	return cmd
}

func newTransferCmd() *cobra.Command {
	var rf remoteFlags

	cmd := &cobra.Command{
		Use:   "transfer <url> <logical-path>",
		Short: "Make the server download a URL to the file a logical path maps to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rf.withClient(cmd.Context(), func(ctx context.Context, c gnoi.Client) error {
				return c.File().TransferToRemote(ctx, args[0], args[1])
			})
		},
	}

	rf.bind(cmd)
	return cmd
}
