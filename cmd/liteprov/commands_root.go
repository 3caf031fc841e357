package main

import "github.com/spf13/cobra"

var (
	environmentName string
	projectDir      string
	templatePath    string
	outputFormat    string
	verbose         bool
	showSecrets     bool
)

var rootCmd = &cobra.Command{
	Use:   "liteprov",
	Short: "Post-init provisioning: identities, roles and platform environment",
	Long: "liteprov reconciles the directory identities, subscription role assignments and platform environment " +
		"of a deployment environment, and saves the resulting identifiers into the environment's variables.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&environmentName, "environment", "e", "", "Environment to act on (default: the project's default environment)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "cwd", "C", ".", "Directory inside the project")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every external command")

	registerProvisionCommand(rootCmd)
	registerPlanCommand(rootCmd)
	registerEnvCommand(rootCmd)
	registerValidateCommand(rootCmd)
	registerNamesCommand(rootCmd)
}
