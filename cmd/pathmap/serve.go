package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hdwhdw/pathmap/pkg/config"
	"github.com/hdwhdw/pathmap/pkg/gnoi/server"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func newServeCmd() *cobra.Command {
	var (
		rf      ruleFlags
		address string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gNOI File service over logical paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, err := config.Resolve(cmd.Context(), rf.options())
			if err != nil {
				return err
			}

			// Log startup
			klog.InfoS("Starting pathmap server",
				"version", version,
				"address", address,
				"logicalBase", rule.LogicalBase,
				"fsBase", rule.FSBase)

			srv, err := server.NewServer(server.Config{
				Address: address,
				Rule:    rule,
			})
			if err != nil {
				return err
			}

			// Setup signal handling
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			go func() {
				select {
				case sig := <-sigCh:
					klog.InfoS("Received signal", "signal", sig)
					cancel()
				case <-ctx.Done():
				}
			}()

			if err := srv.Start(ctx); err != nil {
				klog.ErrorS(err, "Server failed")
				return err
			}

			klog.InfoS("Server stopped")
			return nil
		},
	}

	rf.bind(cmd.Flags())
	cmd.Flags().StringVar(&address, "address", server.DefaultAddress, "gRPC listen address")
	return cmd
}
