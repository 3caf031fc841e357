package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sourceplane/liteprov/internal/confirm"
	"github.com/sourceplane/liteprov/internal/model"
	"github.com/sourceplane/liteprov/internal/provision"
	"github.com/sourceplane/liteprov/internal/render"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what provision would find and create",
	Long:  "Look up the identities and role assignments of the environment without prompting or changing anything.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(cmd)
	},
}

func registerPlanCommand(root *cobra.Command) {
	root.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text/json/yaml)")
}

type inspector interface {
	Inspect(ctx context.Context) (*model.Inspection, error)
}

func runPlan(cmd *cobra.Command) error {
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}

	status := statusWriter(os.Stdout, os.Stderr, outputFormat)
	p := provision.NewProvisioner(
		s.store,
		s.registryClient(status),
		&confirm.Static{},
		render.NewPrinter(status),
		provision.Options{Environment: environmentName, Roles: s.cfg.Roles},
		s.logger,
	)

	return writePlan(cmd.Context(), p, os.Stdout, os.Stderr, outputFormat)
}

// writePlan prints the inspection to stdout. Status lines go to stderr unless format is text.
func writePlan(ctx context.Context, p inspector, stdout, stderr io.Writer, format string) error {
	fmt.Fprintln(statusWriter(stdout, stderr, format), "□ Looking up identities...")
	inspection, err := p.Inspect(ctx)
	if err != nil {
		return err
	}

	if format != "text" {
		return render.Encode(stdout, inspection, format)
	}
	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, render.Inspection(inspection))
	return nil
}

// statusWriter keeps progress and prompts out of encoded output
func statusWriter(stdout, stderr io.Writer, format string) io.Writer {
	if format == "text" {
		return stdout
	}
	return stderr
}
