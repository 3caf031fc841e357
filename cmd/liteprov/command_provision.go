package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sourceplane/liteprov/internal/confirm"
	"github.com/sourceplane/liteprov/internal/git"
	"github.com/sourceplane/liteprov/internal/logging"
	"github.com/sourceplane/liteprov/internal/model"
	"github.com/sourceplane/liteprov/internal/provision"
	"github.com/sourceplane/liteprov/internal/render"
	"github.com/spf13/cobra"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Reconcile identities, roles and the platform environment",
	Long: "Find or create the deployment and integration service principals, assign the deployment roles on the " +
		"subscription, select or create the platform environment and save the results to the environment. " +
		"Every step that creates or changes a resource is confirmed first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProvision(cmd)
	},
}

func registerProvisionCommand(root *cobra.Command) {
	root.AddCommand(provisionCmd)

	provisionCmd.Flags().StringVarP(&templatePath, "template", "t", "", "Platform environment template (default: .azure/dataverse.json)")
	provisionCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Summary format (text/json/yaml)")
}

func runProvision(cmd *cobra.Command) error {
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}

	if !logging.IsInteractive(os.Stdin) {
		s.logger.Warn("stdin is not a terminal; checkpoints read answers from the input stream")
	}

	status := statusWriter(os.Stdout, os.Stderr, outputFormat)
	printer := render.NewPrinter(status)
	p := provision.NewProvisioner(
		s.store,
		s.registryClient(status),
		confirm.NewTerminal(os.Stdin, status),
		printer,
		provision.Options{
			Environment:  environmentName,
			Roles:        s.cfg.Roles,
			Template:     s.loadTemplate,
			TemplatePath: s.cfg.Template,
		},
		s.logger,
	)

	result, runErr := p.Run(cmd.Context())
	if result != nil {
		if err := writeResult(os.Stdout, result, outputFormat); err != nil {
			return err
		}
		if len(result.Persisted) > 0 {
			warnIfExposed(cmd, s, printer, result.Environment)
		}
	}
	if runErr != nil {
		return runErr
	}

	printer.Done("Provisioning complete")
	return nil
}

// writeResult prints the summary of a run, or encodes it when format is json or yaml
func writeResult(stdout io.Writer, result *model.Result, format string) error {
	if format != "text" {
		return render.Encode(stdout, result, format)
	}
	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, render.Summary(result))
	return nil
}

// warnIfExposed flags a variables file holding a secret that git would commit
func warnIfExposed(cmd *cobra.Command, s *session, printer *render.Printer, env string) {
	path := s.store.Path(env)
	exposed, err := git.NewExposureChecker(s.root).IsExposed(cmd.Context(), path)
	if err != nil {
		s.logger.Debug("could not check git status of variables file", "path", path, "error", err)
		return
	}
	if exposed {
		printer.Warn(fmt.Sprintf("%s holds %s but is not ignored by git; add it to .gitignore", path, model.VarDataverseClientSecret))
	}
}
