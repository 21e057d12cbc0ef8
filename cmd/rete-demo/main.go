// Package main runs a small blocks-world demonstration of the rete
// package: it loads a handful of facts, registers a rule with a
// negated condition, and prints the rule's activations as facts are
// added and retracted.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitrdm/gorete/pkg/rete"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "rete-demo",
		Short: "Run a small worked example against the rete matcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := zap.NewNop()
			if verbose {
				var err error
				log, err = zap.NewDevelopment()
				if err != nil {
					return err
				}
			}
			return runBlocksWorld(cmd.OutOrStdout(), log)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable structured debug logging")
	return cmd
}

func runBlocksWorld(out io.Writer, log *zap.Logger) error {
	n := rete.New(rete.WithLogger(log))

	x, y := rete.V("x"), rete.V("y")
	cond := rete.And(
		rete.Cond(x, rete.C("on"), y),
		rete.Neg(y, rete.C("color"), rete.C("red")),
	)
	if err := n.AddProduction("clear-stack", cond); err != nil {
		return err
	}

	facts := [][3]rete.Value{
		{"b1", "on", "b2"},
		{"b2", "color", "green"},
		{"b3", "on", "b4"},
		{"b4", "color", "red"},
	}
	if err := n.LoadWMEs(facts); err != nil {
		return err
	}

	matches, err := n.Matches("clear-stack")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "activations before retraction: %d\n", len(matches))
	for _, m := range matches {
		fmt.Fprintf(out, "  %v\n", m.Bind.Map())
	}

	if err := n.RemoveWME("b4", "color", "red"); err != nil {
		return err
	}

	matches, err = n.Matches("clear-stack")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "activations after retracting (b4 color red): %d\n", len(matches))
	for _, m := range matches {
		fmt.Fprintf(out, "  %v\n", m.Bind.Map())
	}

	return nil
}
