package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sourceplane/liteprov/internal/model"
	"github.com/sourceplane/liteprov/internal/platform"
	"github.com/spf13/cobra"
)

var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "Print the resource names derived for an environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printNames(cmd)
	},
}

func registerNamesCommand(root *cobra.Command) {
	root.AddCommand(namesCmd)

	namesCmd.Flags().StringVarP(&templatePath, "template", "t", "", "Platform environment template (default: .azure/dataverse.json)")
}

func printNames(cmd *cobra.Command) error {
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}

	env, err := s.environment()
	if err != nil {
		return err
	}

	writeNames(os.Stdout, env, s.loadTemplate, s.logger)
	return nil
}

// writeNames lists the derived names. A missing template only omits the platform line.
func writeNames(w io.Writer, env string, load func() (*model.PlatformTemplate, error), logger *slog.Logger) {
	fmt.Fprintf(w, "Environment: %s\n", env)
	for _, role := range model.Roles {
		fmt.Fprintf(w, "  %-10s %s\n", role, model.DisplayName(env, role))
	}

	tmpl, err := load()
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("no platform template", "error", err)
	case err != nil:
		logger.Warn("could not load platform template", "error", err)
		fmt.Fprintf(w, "  %-10s template error: %v\n", "platform", err)
	default:
		spec := platform.Derive(tmpl, env)
		fmt.Fprintf(w, "  %-10s %s (%s)\n", "platform", spec.Name, spec.Domain)
	}
}
