package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/talentpad/presale/internal/types"
	"github.com/talentpad/presale/pkg/api/v1/client"
)

// Flag names
const (
	flagPresaleID = "presale-id"
	flagAmount    = "amount"
	flagSignature = "signature"
	flagReferral  = "referral"
)

func newDepositsCmd() *cobra.Command {
	depositsCmd := &cobra.Command{
		Use:   "deposits",
		Short: "Submit and check deposits",
	}

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Submit a confirmed transfer for verification",
		RunE: func(cmd *cobra.Command, _ []string) error {
			presaleID, _ := cmd.Flags().GetString(flagPresaleID)
			wallet, _ := cmd.Flags().GetString(flagWallet)
			signature, _ := cmd.Flags().GetString(flagSignature)
			referral, _ := cmd.Flags().GetString(flagReferral)
			amount, err := getSOLFlag(cmd, flagAmount)
			if err != nil {
				return err
			}

			req := types.DepositRequest{
				PresaleID:      presaleID,
				WalletAddress:  wallet,
				AmountLamports: json.Number(strconv.FormatInt(amount, 10)),
				TxSignature:    signature,
			}
			if referral != "" {
				req.ReferralCode = &referral
			}

			resp, err := apiClient.RecordDeposit(cmd.Context(), req)
			var derr *client.DepositError
			if errors.As(err, &derr) {
				// Rejections are printed as the API returned them
				if perr := printJSON(cmd, types.DepositErrorResponse{
					Error:   derr.Message,
					Actual:  derr.Actual,
					Claimed: derr.Claimed,
				}); perr != nil {
					return perr
				}
				return fmt.Errorf("deposit rejected: %s", derr.Message)
			}
			if err != nil {
				return fmt.Errorf("error recording deposit: %w", err)
			}
			return printJSON(cmd, resp)
		},
	}
	recordCmd.Flags().String(flagSignature, "", "Transaction signature")
	recordCmd.Flags().String(flagReferral, "", "Referral code")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check a planned deposit against the presale rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			presaleID, _ := cmd.Flags().GetString(flagPresaleID)
			wallet, _ := cmd.Flags().GetString(flagWallet)
			amount, err := getSOLFlag(cmd, flagAmount)
			if err != nil {
				return err
			}
			resp, err := apiClient.CheckDeposit(cmd.Context(), types.DepositCheckRequest{
				PresaleID:      presaleID,
				WalletAddress:  wallet,
				AmountLamports: amount,
			})
			if err != nil {
				return fmt.Errorf("error checking deposit: %w", err)
			}
			return printJSON(cmd, resp)
		},
	}

	for _, c := range []*cobra.Command{recordCmd, checkCmd} {
		c.Flags().String(flagPresaleID, "", "Presale ID")
		c.Flags().StringP(flagWallet, "w", "", "Depositing wallet")
		c.Flags().String(flagAmount, "", "Amount in SOL")
		mustMarkRequired(c, flagPresaleID, flagWallet, flagAmount)
	}
	mustMarkRequired(recordCmd, flagSignature)

	depositsCmd.AddCommand(recordCmd, checkCmd)
	return depositsCmd
}
