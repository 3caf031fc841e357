package main

import (
	"fmt"
	"os"

	"github.com/sourceplane/liteprov/internal/render"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect environment variables",
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List initialized environments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listEnvironments(cmd)
	},
}

var envValuesCmd = &cobra.Command{
	Use:   "get-values",
	Short: "Print the variables of an environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printValues(cmd)
	},
}

func registerEnvCommand(root *cobra.Command) {
	root.AddCommand(envCmd)
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envValuesCmd)

	envValuesCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print secret values instead of masking them")
	envValuesCmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text/json/yaml)")
}

func listEnvironments(cmd *cobra.Command) error {
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}

	names, err := s.store.Environments()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No environments found")
		return nil
	}

	def, _ := s.store.DefaultEnvironment()
	for _, name := range names {
		marker := "  "
		if name == def {
			marker = "* "
		}
		fmt.Printf("%s%s\n", marker, name)
	}
	return nil
}

func printValues(cmd *cobra.Command) error {
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}

	env, err := s.environment()
	if err != nil {
		return err
	}
	values, err := s.store.Values(env)
	if err != nil {
		return err
	}

	if outputFormat != "text" {
		if !showSecrets {
			values = render.MaskSecrets(values)
		}
		return render.Encode(os.Stdout, values, outputFormat)
	}
	fmt.Print(render.Variables(values, showSecrets))
	return nil
}
