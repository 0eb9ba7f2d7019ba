package test_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/services"
	"github.com/talentpad/presale/internal/types"
	"github.com/talentpad/presale/pkg/api/v1/client"
	"github.com/talentpad/presale/pkg/api/v1/routes"
	"github.com/talentpad/presale/test"
)

const (
	fanWallet    = "7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2"
	talentWallet = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	otherWallet  = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"

	oneSOL = 1_000_000_000
)

// openPresale creates a talent with a wallet and a live presale for it
func openPresale(t *testing.T, suite *test.Suite, handle string) models.Presale {
	t.Helper()
	wallet := talentWallet
	talent, err := suite.APIClient.CreateTalent(suite.Context(), types.CreateTalentRequest{
		Handle:        handle,
		Name:          "Talent " + handle,
		WalletAddress: &wallet,
	})
	require.NoError(t, err)

	presale, err := suite.APIClient.CreatePresale(suite.Context(), types.CreatePresaleRequest{
		TalentID:           talent.ID,
		DurationDays:       30,
		SoftCapLamports:    5 * oneSOL,
		HardCapLamports:    100 * oneSOL,
		MinDepositLamports: oneSOL / 10,
		MaxDepositLamports: 50 * oneSOL,
	})
	require.NoError(t, err)
	return presale
}

func depositRequest(presaleID, wallet, sig string, amount int64) types.DepositRequest {
	return types.DepositRequest{
		PresaleID:      presaleID,
		WalletAddress:  wallet,
		AmountLamports: json.Number(strconv.FormatInt(amount, 10)),
		TxSignature:    sig,
	}
}

func requireDepositError(t *testing.T, err error, status int, msg string) *client.DepositError {
	t.Helper()
	var derr *client.DepositError
	require.True(t, errors.As(err, &derr), "expected a deposit rejection, got %v", err)
	assert.Equal(t, status, derr.Status)
	assert.Equal(t, msg, derr.Message)
	return derr
}

func TestRecordDeposit(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	presale := openPresale(t, suite, "two_sol")
	suite.MockLedger.ExpectTransfer("sig-two-sol", fanWallet, talentWallet, 2*oneSOL)

	resp, err := suite.APIClient.RecordDeposit(suite.Context(),
		depositRequest(presale.ID, fanWallet, "sig-two-sol", 2*oneSOL))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, services.MsgDepositRecorded, resp.Message)
	assert.Equal(t, "sig-two-sol", resp.TxSignature)

	pos, err := suite.APIClient.GetPosition(suite.Context(), presale.ID, fanWallet)
	require.NoError(t, err)
	assert.Equal(t, int64(2*oneSOL), pos.DepositedLamports)

	summary, err := suite.APIClient.GetPresaleSummary(suite.Context(), presale.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2*oneSOL), summary.RaisedLamports)
	assert.Equal(t, int64(1), summary.Contributors)
	assert.Equal(t, "live", summary.Status)
	assert.False(t, summary.SoftCapReached)

	txns, err := suite.APIClient.ListTransactions(suite.Context(), presale.ID, nil)
	require.NoError(t, err)
	require.Len(t, txns.Rows, 1)
	assert.Equal(t, "sig-two-sol", txns.Rows[0].Signature)
	assert.Equal(t, int64(2*oneSOL), txns.Rows[0].AmountLamports)
	assert.Equal(t, 1, txns.Pagination.Total)
}

func TestRecordDepositReplay(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	presale := openPresale(t, suite, "replay")
	suite.MockLedger.ExpectTransfer("sig-replay", fanWallet, talentWallet, 2*oneSOL)
	req := depositRequest(presale.ID, fanWallet, "sig-replay", 2*oneSOL)

	_, err := suite.APIClient.RecordDeposit(suite.Context(), req)
	require.NoError(t, err)

	_, err = suite.APIClient.RecordDeposit(suite.Context(), req)
	requireDepositError(t, err, http.StatusBadRequest, services.MsgAlreadyProcessed)

	// The replay is rejected before the chain is consulted
	suite.MockLedger.AssertNumberOfCalls(t, "GetTransaction", 1)

	got, err := suite.APIClient.GetPresale(suite.Context(), presale.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2*oneSOL), got.RaisedLamports)

	pos, err := suite.APIClient.GetPosition(suite.Context(), presale.ID, fanWallet)
	require.NoError(t, err)
	assert.Equal(t, int64(2*oneSOL), pos.DepositedLamports)
}

func TestRecordDepositConcurrentReplay(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	presale := openPresale(t, suite, "racer")
	suite.MockLedger.ExpectTransfer("sig-race", fanWallet, talentWallet, oneSOL)
	req := depositRequest(presale.ID, fanWallet, "sig-race", oneSOL)

	const attempts = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.APIClient.RecordDeposit(suite.Context(), req)
			mu.Lock()
			defer mu.Unlock()
			var derr *client.DepositError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &derr) && derr.Message == services.MsgAlreadyProcessed:
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)

	got, err := suite.APIClient.GetPresale(suite.Context(), presale.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(oneSOL), got.RaisedLamports)
}

func TestRecordDepositAmountMismatch(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	presale := openPresale(t, suite, "mismatch")
	suite.MockLedger.ExpectTransfer("sig-short", fanWallet, talentWallet, oneSOL)

	_, err := suite.APIClient.RecordDeposit(suite.Context(),
		depositRequest(presale.ID, fanWallet, "sig-short", 2*oneSOL))
	derr := requireDepositError(t, err, http.StatusBadRequest, services.MsgAmountMismatch)
	require.NotNil(t, derr.Actual)
	require.NotNil(t, derr.Claimed)
	assert.Equal(t, int64(oneSOL), *derr.Actual)
	assert.Equal(t, int64(2*oneSOL), *derr.Claimed)

	got, err := suite.APIClient.GetPresale(suite.Context(), presale.ID)
	require.NoError(t, err)
	assert.Zero(t, got.RaisedLamports)
}

func TestRecordDepositRejections(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	presale := openPresale(t, suite, "rejects")
	suite.MockLedger.ExpectTransfer("sig-elsewhere", fanWallet, otherWallet, oneSOL)
	suite.MockLedger.ExpectTransfer("sig-signer", otherWallet, talentWallet, oneSOL)
	suite.MockLedger.ExpectTransfer("sig-no-presale", fanWallet, talentWallet, oneSOL)
	suite.MockLedger.ExpectNotFound("sig-missing")

	tests := []struct {
		name   string
		req    types.DepositRequest
		status int
		msg    string
	}{
		{
			name:   "missing fields",
			req:    depositRequest(presale.ID, fanWallet, "", oneSOL),
			status: http.StatusBadRequest,
			msg:    services.MsgMissingFields,
		},
		{
			name:   "amount above limit",
			req:    depositRequest(presale.ID, fanWallet, "sig-huge", types.MaxDepositLamports+1),
			status: http.StatusBadRequest,
			msg:    services.MsgInvalidAmount,
		},
		{
			name:   "invalid wallet",
			req:    depositRequest(presale.ID, "not-a-wallet", "sig-wallet", oneSOL),
			status: http.StatusBadRequest,
			msg:    services.MsgInvalidWallet,
		},
		{
			name:   "unknown transaction",
			req:    depositRequest(presale.ID, fanWallet, "sig-missing", oneSOL),
			status: http.StatusBadRequest,
			msg:    services.MsgTxNotFound,
		},
		{
			name:   "signer mismatch",
			req:    depositRequest(presale.ID, fanWallet, "sig-signer", oneSOL),
			status: http.StatusBadRequest,
			msg:    services.MsgSignerMismatch,
		},
		{
			name:   "unknown presale",
			req:    depositRequest("no-such-presale", fanWallet, "sig-no-presale", oneSOL),
			status: http.StatusNotFound,
			msg:    services.MsgPresaleNotFound,
		},
		{
			name:   "destination mismatch",
			req:    depositRequest(presale.ID, fanWallet, "sig-elsewhere", oneSOL),
			status: http.StatusBadRequest,
			msg:    services.MsgDestinationMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := suite.APIClient.RecordDeposit(suite.Context(), tt.req)
			requireDepositError(t, err, tt.status, tt.msg)
		})
	}

	// Validation failures never reach the chain
	for _, sig := range []string{"sig-huge", "sig-wallet"} {
		suite.MockLedger.AssertNotCalled(t, "GetTransaction", mock.Anything, sig)
	}

	got, err := suite.APIClient.GetPresale(suite.Context(), presale.ID)
	require.NoError(t, err)
	assert.Zero(t, got.RaisedLamports)
}

func TestRecordDepositMalformedBody(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	for _, path := range []string{routes.RecordDepositURL(), routes.LegacyDepositPath} {
		resp, err := http.Post(suite.Server.URL+path, "application/json", bytes.NewBufferString(`{"presale_id": "x",`))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Invalid request body"}`, string(body))
	}
	suite.MockLedger.AssertNotCalled(t, "GetTransaction", mock.Anything, mock.Anything)
}

func TestRecordDepositEmptyAmount(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	for _, amount := range []string{`""`, `null`} {
		for _, path := range []string{routes.RecordDepositURL(), routes.LegacyDepositPath} {
			body := fmt.Sprintf(`{"presale_id":"p1","wallet_address":%q,"amount_lamports":%s,"tx_signature":"sig"}`,
				fanWallet, amount)
			resp, err := http.Post(suite.Server.URL+path, "application/json", bytes.NewBufferString(body))
			require.NoError(t, err)
			got, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "amount %s on %s", amount, path)
			assert.JSONEq(t, `{"error":"Missing required fields"}`, string(got), "amount %s on %s", amount, path)
		}
	}
	suite.MockLedger.AssertNotCalled(t, "GetTransaction", mock.Anything, mock.Anything)
}

func TestLegacyDepositPath(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	presale := openPresale(t, suite, "legacy")
	suite.MockLedger.ExpectTransfer("sig-legacy", fanWallet, talentWallet, oneSOL)

	body := fmt.Sprintf(`{"presale_id":%q,"wallet_address":%q,"amount_lamports":%d,"tx_signature":"sig-legacy","referral_code":"FRIEND"}`,
		presale.ID, fanWallet, oneSOL)
	resp, err := http.Post(suite.Server.URL+routes.LegacyDepositPath, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	pos, err := suite.APIClient.GetPosition(suite.Context(), presale.ID, fanWallet)
	require.NoError(t, err)
	require.NotNil(t, pos.ReferralCode)
	assert.Equal(t, "FRIEND", *pos.ReferralCode)

	// A referral code too long to store is dropped and the deposit still counts.
	suite.MockLedger.ExpectTransfer("sig-long-ref", otherWallet, talentWallet, oneSOL)
	long := strings.Repeat("r", types.MaxReferralCodeLength+1)
	req := depositRequest(presale.ID, otherWallet, "sig-long-ref", oneSOL)
	req.ReferralCode = &long
	_, err = suite.APIClient.RecordDeposit(suite.Context(), req)
	require.NoError(t, err)

	pos, err = suite.APIClient.GetPosition(suite.Context(), presale.ID, otherWallet)
	require.NoError(t, err)
	assert.Nil(t, pos.ReferralCode)
	assert.Equal(t, int64(oneSOL), pos.DepositedLamports)
}

func TestCheckDeposit(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	presale := openPresale(t, suite, "checker")

	ok, err := suite.APIClient.CheckDeposit(suite.Context(), types.DepositCheckRequest{
		PresaleID:      presale.ID,
		WalletAddress:  fanWallet,
		AmountLamports: oneSOL,
	})
	require.NoError(t, err)
	assert.True(t, ok.Allowed)
	assert.Empty(t, ok.Reasons)

	tooSmall, err := suite.APIClient.CheckDeposit(suite.Context(), types.DepositCheckRequest{
		PresaleID:      presale.ID,
		WalletAddress:  fanWallet,
		AmountLamports: 1000,
	})
	require.NoError(t, err)
	assert.False(t, tooSmall.Allowed)
	assert.NotEmpty(t, tooSmall.Reasons)
}

func TestFinalizePresale(t *testing.T) {
	suite := test.NewSuite(t)
	defer suite.Cleanup()

	wallet := talentWallet
	talent, err := suite.APIClient.CreateTalent(suite.Context(), types.CreateTalentRequest{
		Handle:        "closing",
		Name:          "Closing Act",
		WalletAddress: &wallet,
	})
	require.NoError(t, err)

	now := time.Now()
	presale, err := suite.APIClient.CreatePresale(suite.Context(), types.CreatePresaleRequest{
		TalentID:           talent.ID,
		StartTS:            now.Add(-48 * time.Hour).UnixMilli(),
		EndTS:              now.Add(-time.Hour).UnixMilli(),
		SoftCapLamports:    5 * oneSOL,
		HardCapLamports:    100 * oneSOL,
		MinDepositLamports: oneSOL / 10,
		MaxDepositLamports: 50 * oneSOL,
	})
	require.NoError(t, err)

	suite.MockLedger.ExpectTransfer("sig-fan", fanWallet, talentWallet, 3*oneSOL)
	suite.MockLedger.ExpectTransfer("sig-other", otherWallet, talentWallet, 3*oneSOL)
	_, err = suite.APIClient.RecordDeposit(suite.Context(), depositRequest(presale.ID, fanWallet, "sig-fan", 3*oneSOL))
	require.NoError(t, err)
	_, err = suite.APIClient.RecordDeposit(suite.Context(), depositRequest(presale.ID, otherWallet, "sig-other", 3*oneSOL))
	require.NoError(t, err)

	finalized, err := suite.APIClient.FinalizePresale(suite.Context(), presale.ID)
	require.NoError(t, err)
	assert.True(t, finalized.IsFinalized)
	assert.Equal(t, models.PresaleOutcomeSucceeded, finalized.Outcome)

	positions, err := suite.APIClient.ListPositions(suite.Context(), presale.ID, nil)
	require.NoError(t, err)
	require.Len(t, positions.Rows, 2)
	half := decimal.RequireFromString("0.5")
	for _, pos := range positions.Rows {
		share, err := decimal.NewFromString(pos.ProRataShare)
		require.NoError(t, err)
		assert.True(t, share.Equal(half), "share of %s is %s", pos.WalletAddress, pos.ProRataShare)
	}

	_, err = suite.APIClient.FinalizePresale(suite.Context(), presale.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finalized")
}
