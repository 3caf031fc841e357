package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sourceplane/liteprov/internal/platform"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the environment registry, config and platform template",
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateFiles(cmd)
	},
}

func registerValidateCommand(root *cobra.Command) {
	root.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&templatePath, "template", "t", "", "Platform environment template (default: .azure/dataverse.json)")
}

func validateFiles(cmd *cobra.Command) error {
	fmt.Println("□ Validating config...")
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Println("✓ Config is valid")

	fmt.Println("□ Validating environment registry...")
	env, err := s.store.DefaultEnvironment()
	if err != nil {
		return err
	}
	fmt.Printf("✓ Default environment: %s\n", env)

	fmt.Println("□ Validating platform template...")
	tmpl, err := s.loadTemplate()
	if errors.Is(err, os.ErrNotExist) {
		fmt.Printf("  No template at %s; provision will require an existing platform environment URL\n", s.templateFile())
		fmt.Println("✓ All validation passed")
		return nil
	}
	if err != nil {
		return fmt.Errorf("template validation failed: %w", err)
	}

	spec := platform.Derive(tmpl, env)
	fmt.Printf("✓ Template is valid (%s → %s)\n", spec.Name, spec.Domain)

	fmt.Println("✓ All validation passed")
	return nil
}
