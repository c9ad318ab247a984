package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/garrettladley/marine/internal/version"
)

func main() {
	_ = godotenv.Load()

	a := &app{stdout: os.Stdout, stderr: os.Stderr}

	rootCmd := &cobra.Command{
		Use:               "marine",
		Short:             "Marine species observations from your terminal",
		Version:           version.Get(),
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	rootCmd.AddCommand(
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		registerCmd(a),
		passwordResetCmd(a),
		passwordResetConfirmCmd(a),
		verifyEmailCmd(a),
		observationsCmd(a),
		mapCmd(a),
		gatewayCmd(a),
	)
	explainErrors(rootCmd)

	if err := fang.Execute(context.Background(), rootCmd, fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM)); err != nil {
		os.Exit(1)
	}
}
