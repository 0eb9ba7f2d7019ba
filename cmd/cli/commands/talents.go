package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/types"
)

// Flag names
const (
	flagID      = "id"
	flagHandle  = "handle"
	flagName    = "name"
	flagLogline = "logline"
	flagWallet  = "wallet"
	flagStatus  = "status"
)

func newTalentsCmd() *cobra.Command {
	talentsCmd := &cobra.Command{
		Use:   "talents",
		Short: "Manage talents",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new talent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := types.CreateTalentRequest{}
			var err error
			if req.Handle, err = cmd.Flags().GetString(flagHandle); err != nil {
				return fmt.Errorf("error getting handle flag: %w", err)
			}
			if req.Name, err = cmd.Flags().GetString(flagName); err != nil {
				return fmt.Errorf("error getting name flag: %w", err)
			}
			if req.Logline, err = cmd.Flags().GetString(flagLogline); err != nil {
				return fmt.Errorf("error getting logline flag: %w", err)
			}
			if req.Status, err = cmd.Flags().GetString(flagStatus); err != nil {
				return fmt.Errorf("error getting status flag: %w", err)
			}
			wallet, err := cmd.Flags().GetString(flagWallet)
			if err != nil {
				return fmt.Errorf("error getting wallet flag: %w", err)
			}
			if wallet != "" {
				req.WalletAddress = &wallet
			}

			talent, err := apiClient.CreateTalent(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("error creating talent: %w", err)
			}
			return printJSON(cmd, talent)
		},
	}
	createCmd.Flags().String(flagHandle, "", "Unique handle (lowercase letters, digits, underscore)")
	createCmd.Flags().StringP(flagName, "n", "", "Display name")
	createCmd.Flags().String(flagLogline, "", "Short pitch")
	createCmd.Flags().StringP(flagWallet, "w", "", "Wallet receiving deposits")
	createCmd.Flags().String(flagStatus, "", "Career tier (Rising, Breakout, A-List)")
	mustMarkRequired(createCmd, flagHandle, flagName)

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Get a talent by ID or handle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := cmd.Flags().GetString(flagID)
			if err != nil {
				return fmt.Errorf("error getting id flag: %w", err)
			}
			handle, err := cmd.Flags().GetString(flagHandle)
			if err != nil {
				return fmt.Errorf("error getting handle flag: %w", err)
			}

			var talent models.Talent
			switch {
			case id != "":
				talent, err = apiClient.GetTalent(cmd.Context(), id)
			case handle != "":
				talent, err = apiClient.GetTalentByHandle(cmd.Context(), handle)
			default:
				return fmt.Errorf("one of --%s or --%s is required", flagID, flagHandle)
			}
			if err != nil {
				return fmt.Errorf("error getting talent: %w", err)
			}
			return printJSON(cmd, talent)
		},
	}
	getCmd.Flags().String(flagID, "", "Talent ID")
	getCmd.Flags().String(flagHandle, "", "Talent handle")
	getCmd.MarkFlagsMutuallyExclusive(flagID, flagHandle)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List talents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := getListOptions(cmd)
			if err != nil {
				return err
			}
			resp, err := apiClient.ListTalents(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("error listing talents: %w", err)
			}
			return printJSON(cmd, resp)
		},
	}
	addPageFlags(listCmd)

	setWalletCmd := &cobra.Command{
		Use:   "set-wallet",
		Short: "Set the wallet receiving a talent's deposits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := cmd.Flags().GetString(flagID)
			if err != nil {
				return fmt.Errorf("error getting id flag: %w", err)
			}
			wallet, err := cmd.Flags().GetString(flagWallet)
			if err != nil {
				return fmt.Errorf("error getting wallet flag: %w", err)
			}
			talent, err := apiClient.UpdateTalentWallet(cmd.Context(), id, types.UpdateWalletRequest{WalletAddress: wallet})
			if err != nil {
				return fmt.Errorf("error updating wallet: %w", err)
			}
			return printJSON(cmd, talent)
		},
	}
	setWalletCmd.Flags().String(flagID, "", "Talent ID")
	setWalletCmd.Flags().StringP(flagWallet, "w", "", "Wallet address")
	mustMarkRequired(setWalletCmd, flagID, flagWallet)

	talentsCmd.AddCommand(createCmd, getCmd, listCmd, setWalletCmd)
	return talentsCmd
}
