package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/talentpad/presale/internal/types"
)

// Flag names
const (
	flagTalentID     = "talent-id"
	flagSoftCap      = "soft-cap"
	flagHardCap      = "hard-cap"
	flagMinDeposit   = "min-deposit"
	flagMaxDeposit   = "max-deposit"
	flagStart        = "start"
	flagEnd          = "end"
	flagDurationDays = "duration-days"
	flagMint         = "mint"
	flagWhitelist    = "whitelist"
)

func newPresalesCmd() *cobra.Command {
	presalesCmd := &cobra.Command{
		Use:   "presales",
		Short: "Manage presales",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a presale for a talent",
		Long: `Open a presale for a talent. Amounts are given in SOL, times in RFC 3339.
Either --end or --duration-days must be set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := presaleRequestFromFlags(cmd)
			if err != nil {
				return err
			}
			presale, err := apiClient.CreatePresale(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("error creating presale: %w", err)
			}
			return printJSON(cmd, presale)
		},
	}
	createCmd.Flags().String(flagTalentID, "", "Talent ID")
	createCmd.Flags().String(flagSoftCap, "", "Soft cap in SOL")
	createCmd.Flags().String(flagHardCap, "", "Hard cap in SOL")
	createCmd.Flags().String(flagMinDeposit, "", "Minimum deposit in SOL")
	createCmd.Flags().String(flagMaxDeposit, "", "Maximum deposit per wallet in SOL")
	createCmd.Flags().String(flagStart, "", "Start time (default now)")
	createCmd.Flags().String(flagEnd, "", "End time")
	createCmd.Flags().Int(flagDurationDays, 0, fmt.Sprintf("Length in days (at most %d)", types.MaxPresaleDays))
	createCmd.Flags().String(flagMint, "", "Token mint address")
	createCmd.Flags().Bool(flagWhitelist, false, "Restrict deposits to a whitelist")
	mustMarkRequired(createCmd, flagTalentID, flagSoftCap, flagHardCap, flagMinDeposit, flagMaxDeposit)

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Get a presale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString(flagID)
			presale, err := apiClient.GetPresale(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("error getting presale: %w", err)
			}
			return printJSON(cmd, presale)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List presales",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := getListOptions(cmd)
			if err != nil {
				return err
			}
			resp, err := apiClient.ListPresales(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("error listing presales: %w", err)
			}
			return printJSON(cmd, resp)
		},
	}
	addPageFlags(listCmd)

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the progress of a presale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString(flagID)
			summary, err := apiClient.GetPresaleSummary(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("error getting presale summary: %w", err)
			}
			return printJSON(cmd, summary)
		},
	}

	finalizeCmd := &cobra.Command{
		Use:   "finalize",
		Short: "Settle an ended presale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString(flagID)
			presale, err := apiClient.FinalizePresale(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("error finalizing presale: %w", err)
			}
			return printJSON(cmd, presale)
		},
	}

	positionsCmd := &cobra.Command{
		Use:   "positions",
		Short: "List the wallet positions of a presale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString(flagID)
			wallet, _ := cmd.Flags().GetString(flagWallet)
			if wallet != "" {
				pos, err := apiClient.GetPosition(cmd.Context(), id, wallet)
				if err != nil {
					return fmt.Errorf("error getting position: %w", err)
				}
				return printJSON(cmd, pos)
			}
			opts, err := getListOptions(cmd)
			if err != nil {
				return err
			}
			resp, err := apiClient.ListPositions(cmd.Context(), id, opts)
			if err != nil {
				return fmt.Errorf("error listing positions: %w", err)
			}
			return printJSON(cmd, resp)
		},
	}
	positionsCmd.Flags().StringP(flagWallet, "w", "", "Only show this wallet")
	addPageFlags(positionsCmd)

	transactionsCmd := &cobra.Command{
		Use:   "transactions",
		Short: "List the transactions credited to a presale",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString(flagID)
			opts, err := getListOptions(cmd)
			if err != nil {
				return err
			}
			resp, err := apiClient.ListTransactions(cmd.Context(), id, opts)
			if err != nil {
				return fmt.Errorf("error listing transactions: %w", err)
			}
			return printJSON(cmd, resp)
		},
	}
	addPageFlags(transactionsCmd)

	for _, c := range []*cobra.Command{getCmd, summaryCmd, finalizeCmd, positionsCmd, transactionsCmd} {
		c.Flags().String(flagID, "", "Presale ID")
		mustMarkRequired(c, flagID)
	}

	presalesCmd.AddCommand(createCmd, getCmd, listCmd, summaryCmd, finalizeCmd, positionsCmd, transactionsCmd)
	return presalesCmd
}

// presaleRequestFromFlags builds a creation request from the create flags
func presaleRequestFromFlags(cmd *cobra.Command) (types.CreatePresaleRequest, error) {
	var req types.CreatePresaleRequest
	var err error

	if req.TalentID, err = cmd.Flags().GetString(flagTalentID); err != nil {
		return req, fmt.Errorf("error getting talent-id flag: %w", err)
	}
	if req.SoftCapLamports, err = getSOLFlag(cmd, flagSoftCap); err != nil {
		return req, err
	}
	if req.HardCapLamports, err = getSOLFlag(cmd, flagHardCap); err != nil {
		return req, err
	}
	if req.MinDepositLamports, err = getSOLFlag(cmd, flagMinDeposit); err != nil {
		return req, err
	}
	if req.MaxDepositLamports, err = getSOLFlag(cmd, flagMaxDeposit); err != nil {
		return req, err
	}
	if req.StartTS, err = getTimeFlag(cmd, flagStart); err != nil {
		return req, err
	}
	if req.EndTS, err = getTimeFlag(cmd, flagEnd); err != nil {
		return req, err
	}
	if req.DurationDays, err = cmd.Flags().GetInt(flagDurationDays); err != nil {
		return req, fmt.Errorf("error getting duration-days flag: %w", err)
	}
	if req.WhitelistEnabled, err = cmd.Flags().GetBool(flagWhitelist); err != nil {
		return req, fmt.Errorf("error getting whitelist flag: %w", err)
	}
	mint, err := cmd.Flags().GetString(flagMint)
	if err != nil {
		return req, fmt.Errorf("error getting mint flag: %w", err)
	}
	if mint != "" {
		req.Mint = &mint
	}
	if req.EndTS == 0 && req.DurationDays == 0 {
		return req, fmt.Errorf("one of --%s or --%s is required", flagEnd, flagDurationDays)
	}
	return req, nil
}

// getTimeFlag parses an RFC 3339 flag into unix milliseconds. Empty is zero.
func getTimeFlag(cmd *cobra.Command, name string) (int64, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return 0, fmt.Errorf("error getting %s flag: %w", name, err)
	}
	if raw == "" {
		return 0, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return ts.UnixMilli(), nil
}
