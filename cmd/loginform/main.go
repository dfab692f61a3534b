package main

import (
	"os"

	"remoting-login/internal/config"
	"remoting-login/internal/observability"

	"github.com/spf13/cobra"
)

var (
	envFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "loginform",
	Short: "Login form that calls calc.sum on a remoting gateway",
	Long: `loginform collects a username and password, sends them as a one-shot
Credentials header to a remoting gateway and calls calc.sum(1, 2).
The gateway address comes from GATEWAY_URL (default http://localhost:8000).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		return observability.InitLogger(cfg.LogLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		observability.SyncLogger()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.AddCommand(serveCmd, submitCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
