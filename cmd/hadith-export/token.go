package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hadithexport/internal/auth"
	"hadithexport/pkg/utils"
)

var tokenCmd = &cobra.Command{
	Use:   "token <operator>",
	Short: "Print a token allowed to start exports over HTTP",
	Long:  "Print a token allowed to start exports over HTTP",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func tokenService(cfg utils.Config) auth.TokenService {
	return auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := utils.LoadConfig(utils.DefaultConfigFile)
	if err != nil {
		return err
	}
	token, exp, err := tokenService(cfg).Sign(args[0], auth.ScopeExport)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
	return nil
}
