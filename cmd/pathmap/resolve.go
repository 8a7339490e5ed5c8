package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/hdwhdw/pathmap/pkg/config"
	"github.com/hdwhdw/pathmap/pkg/pathutil"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func newResolveCmd() *cobra.Command {
	var (
		rf      ruleFlags
		workers int
	)

	cmd := &cobra.Command{
		Use:   "resolve [logical-path...]",
		Short: "Print the file-system path of each logical path",
		Long: `Print the file-system path of each logical path given as an argument,
or read from standard input one per line when no arguments are given.
Paths outside the rule are reported on standard error.`,
		Example: `  pathmap resolve --logical-base '\Acme\Blog' --fs-base /src --file-ext .php '\Acme\Blog\ShowController'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			rule, err := config.Resolve(ctx, rf.options())
			if err != nil {
				return err
			}

			sources := args
			if len(sources) == 0 {
				sources, err = readSources(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			return runResolve(ctx, rule, sources, workers, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	rf.bind(cmd.Flags())
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Number of concurrent translations")
	return cmd
}

// runResolve writes one mapped path per applicable source to out.
// Sources the rule does not cover are listed on errOut and make the run fail.
func runResolve(ctx context.Context, rule pathutil.Rule, sources []string, workers int, out, errOut io.Writer) error {
	translator, err := pathutil.NewTranslator(rule)
	if err != nil {
		return err
	}

	results, err := translator.TranslateAll(ctx, sources, workers)
	if err != nil {
		return fmt.Errorf("translation interrupted: %w", err)
	}

	notApplicable := 0
	for _, r := range results {
		if !r.OK {
			notApplicable++
			fmt.Fprintf(errOut, "%s: not applicable\n", r.Source)
			continue
		}
		fmt.Fprintln(out, r.Path)
	}

	klog.V(2).InfoS("Resolved logical paths",
		"total", len(results),
		"notApplicable", notApplicable)

	if notApplicable > 0 {
		return fmt.Errorf("%d of %d paths are not under logical base %s", notApplicable, len(results), rule.LogicalBase)
	}
	return nil
}

// readSources reads one logical path per non-blank line.
// Lines are not length limited.
func readSources(r io.Reader) ([]string, error) {
	var sources []string
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read logical paths: %w", err)
		}
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			sources = append(sources, line)
		}
		if err != nil {
			return sources, nil
		}
	}
}
