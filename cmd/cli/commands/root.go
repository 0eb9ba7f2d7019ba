// Package commands implements presalectl, the command line client of the presale API
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/lamports"
	"github.com/talentpad/presale/pkg/api/v1/client"
	"github.com/talentpad/presale/pkg/api/v1/routes"
)

// flag names
const (
	flagServerAddress = "server-address"
	flagTimeout       = "timeout"
	flagPage          = "page"
	flagLimit         = "limit"
)

// environment variable names
const (
	envServerAddress = "PRESALE_SERVER_ADDRESS"
)

// apiClient is the shared API client instance, set by PersistentPreRunE
var apiClient client.Client

// NewRootCmd builds the presalectl command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "presalectl",
		Short:         "presalectl - A command line interface for the presale API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			serverAddress, err := cmd.Flags().GetString(flagServerAddress)
			if err != nil {
				return err
			}
			// Flag > Env Var > Default
			if !cmd.Flags().Changed(flagServerAddress) {
				if envAddr := os.Getenv(envServerAddress); envAddr != "" {
					serverAddress = envAddr
				}
			}
			if serverAddress == "" {
				return fmt.Errorf("server address cannot be empty")
			}
			timeout, err := cmd.Flags().GetDuration(flagTimeout)
			if err != nil {
				return err
			}

			apiClient, err = client.NewClient(&client.Options{
				BaseURL: serverAddress,
				Timeout: timeout,
			})
			return err
		},
	}

	root.PersistentFlags().StringP(flagServerAddress, "s", routes.DefaultBaseURL,
		"Address of the presale API server (env: "+envServerAddress+")")
	root.PersistentFlags().Duration(flagTimeout, client.DefaultTimeout, "API request timeout")

	root.AddCommand(newTalentsCmd())
	root.AddCommand(newPresalesCmd())
	root.AddCommand(newDepositsCmd())
	return root
}

// Execute loads .env when present and runs the root command
func Execute() error {
	_ = godotenv.Load()
	return NewRootCmd().Execute()
}

// printJSON pretty prints v to the command output
func printJSON(cmd *cobra.Command, v interface{}) error {
	prettyJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting response: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(prettyJSON))
	return err
}

// addPageFlags adds the pagination flags to cmd
func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().IntP(flagPage, "p", 1, "Page number for pagination")
	cmd.Flags().IntP(flagLimit, "l", models.DefaultLimit, "Rows per page")
}

// getListOptions converts the pagination flags to list options
func getListOptions(cmd *cobra.Command) (*models.ListOptions, error) {
	page, err := cmd.Flags().GetInt(flagPage)
	if err != nil {
		return nil, fmt.Errorf("error getting page flag: %w", err)
	}
	limit, err := cmd.Flags().GetInt(flagLimit)
	if err != nil {
		return nil, fmt.Errorf("error getting limit flag: %w", err)
	}
	if page < 1 {
		return nil, fmt.Errorf("page must be at least 1")
	}
	if limit < 1 {
		return nil, fmt.Errorf("limit must be at least 1")
	}
	return &models.ListOptions{Limit: limit, Offset: (page - 1) * limit}, nil
}

// getSOLFlag reads a SOL amount flag and returns it in lamports
func getSOLFlag(cmd *cobra.Command, name string) (int64, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return 0, fmt.Errorf("error getting %s flag: %w", name, err)
	}
	amount, err := lamports.FromSOL(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return amount.Int64()
}

// mustMarkRequired marks flags as required on cmd
func mustMarkRequired(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Errorf("failed to mark %s flag as required for %s command: %w", name, cmd.Name(), err))
		}
	}
}
