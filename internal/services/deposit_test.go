package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/talentpad/presale/internal/ledger"
	"github.com/talentpad/presale/internal/types"
)

func depositReq(presaleID, sig string, amount int64) types.DepositRequest {
	return types.DepositRequest{
		PresaleID:      presaleID,
		WalletAddress:  fanWallet,
		AmountLamports: json.Number(fmt.Sprint(amount)),
		TxSignature:    sig,
	}
}

func (s *ServiceTestSuite) requireDepositError(err error, status int, msg string) *DepositError {
	var derr *DepositError
	s.Require().True(errors.As(err, &derr), "expected *DepositError, got %v", err)
	s.Equal(status, derr.Status)
	s.Equal(msg, derr.Message)
	return derr
}

func (s *ServiceTestSuite) TestRecordTwoSOLDeposit() {
	presale := s.createLivePresale()
	s.ledger.addTransfer("sig-1", fanWallet, talentWallet, 2_000_000_000)

	res, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-1", 2_000_000_000))
	s.Require().NoError(err)
	s.Equal(int64(2_000_000_000), res.AmountLamports)
	s.Equal(int64(2_000_000_000), res.PositionLamports)
	s.Equal(uint64(1234), res.Slot)

	s.Equal(int64(2_000_000_000), s.reloadPresale(presale.ID).RaisedLamports)
	pos, err := s.position.Get(s.ctx, presale.ID, fanWallet)
	s.Require().NoError(err)
	s.Equal(int64(2_000_000_000), pos.DepositedLamports)
	s.Equal("1", pos.ProRataShare)
}

func (s *ServiceTestSuite) TestRecordReplayIsRejected() {
	presale := s.createLivePresale()
	s.ledger.addTransfer("sig-1", fanWallet, talentWallet, 2_000_000_000)

	_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-1", 2_000_000_000))
	s.Require().NoError(err)
	calls := s.ledger.Calls()

	for _, amount := range []int64{2_000_000_000, 1_000_000_000} {
		_, err = s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-1", amount))
		s.requireDepositError(err, http.StatusBadRequest, MsgAlreadyProcessed)
	}
	s.Equal(calls, s.ledger.Calls(), "replays must not reach the chain")
	s.Equal(int64(2_000_000_000), s.reloadPresale(presale.ID).RaisedLamports)
}

func (s *ServiceTestSuite) TestRecordConcurrentReplayCreditsOnce() {
	presale := s.createLivePresale()
	s.ledger.addTransfer("sig-1", fanWallet, talentWallet, 1_000_000_000)

	var wg sync.WaitGroup
	results := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-1", 1_000_000_000))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		s.requireDepositError(err, http.StatusBadRequest, MsgAlreadyProcessed)
	}
	s.Equal(1, ok)
	s.Equal(int64(1_000_000_000), s.reloadPresale(presale.ID).RaisedLamports)
}

func (s *ServiceTestSuite) TestRecordSecondDepositIncrementsExactly() {
	presale := s.createLivePresale()
	s.ledger.addTransfer("sig-1", fanWallet, talentWallet, 1_000_000_000)
	s.ledger.addTransfer("sig-2", fanWallet, talentWallet, 333_333_333)

	_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-1", 1_000_000_000))
	s.Require().NoError(err)
	res, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-2", 333_333_333))
	s.Require().NoError(err)

	s.Equal(int64(1_333_333_333), res.PositionLamports)
	s.Equal(int64(1_333_333_333), s.reloadPresale(presale.ID).RaisedLamports)
}

func (s *ServiceTestSuite) TestRecordInputGuards() {
	presale := s.createLivePresale()

	tests := []struct {
		name string
		req  types.DepositRequest
		msg  string
	}{
		{name: "empty body", req: types.DepositRequest{}, msg: MsgMissingFields},
		{name: "zero amount", req: depositReq(presale.ID, "sig", 0), msg: MsgMissingFields},
		{name: "negative amount", req: depositReq(presale.ID, "sig", -1), msg: MsgInvalidAmount},
		{name: "above max", req: depositReq(presale.ID, "sig", types.MaxDepositLamports+1), msg: MsgInvalidAmount},
		{
			name: "fractional amount",
			req: types.DepositRequest{
				PresaleID: presale.ID, WalletAddress: fanWallet, AmountLamports: "1.5", TxSignature: "sig",
			},
			msg: MsgInvalidAmount,
		},
		{
			name: "bad wallet",
			req: types.DepositRequest{
				PresaleID: presale.ID, WalletAddress: "0xabc", AmountLamports: "1", TxSignature: "sig",
			},
			msg: MsgInvalidWallet,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.deposits.Record(s.ctx, tt.req)
			s.requireDepositError(err, http.StatusBadRequest, tt.msg)
		})
	}
	s.Zero(s.ledger.Calls(), "input guards run before any chain lookup")
}

func (s *ServiceTestSuite) TestRecordChainGuards() {
	presale := s.createLivePresale()

	s.Run("ledger unavailable", func() {
		s.ledger.err = errors.New("connection refused")
		defer func() { s.ledger.err = nil }()
		_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-x", 1_000_000_000))
		derr := s.requireDepositError(err, http.StatusBadRequest, MsgCouldNotVerify)
		s.ErrorContains(derr, "connection refused")
	})

	s.Run("invalid signature", func() {
		s.ledger.err = ledger.ErrInvalidSignature
		defer func() { s.ledger.err = nil }()
		_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-x", 1_000_000_000))
		s.requireDepositError(err, http.StatusBadRequest, MsgCouldNotVerify)
	})

	s.Run("not found", func() {
		_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "missing", 1_000_000_000))
		s.requireDepositError(err, http.StatusBadRequest, MsgTxNotFound)
	})

	s.Run("no metadata", func() {
		txn := s.ledger.addTransfer("no-meta", fanWallet, talentWallet, 1_000_000_000)
		txn.HasMeta = false
		_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "no-meta", 1_000_000_000))
		s.requireDepositError(err, http.StatusBadRequest, MsgTxNotFound)
	})

	s.Run("failed on chain", func() {
		txn := s.ledger.addTransfer("failed", fanWallet, talentWallet, 1_000_000_000)
		txn.Failed = true
		_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "failed", 1_000_000_000))
		s.requireDepositError(err, http.StatusBadRequest, MsgTxFailed)
	})

	s.Run("signer mismatch", func() {
		s.ledger.addTransfer("other-signer", otherWallet, talentWallet, 1_000_000_000)
		_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "other-signer", 1_000_000_000))
		s.requireDepositError(err, http.StatusBadRequest, MsgSignerMismatch)
	})

	s.Run("amount mismatch", func() {
		s.ledger.addTransfer("short", fanWallet, talentWallet, 1_000_000_000)
		_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "short", 3_000_000_000))
		derr := s.requireDepositError(err, http.StatusBadRequest, MsgAmountMismatch)
		s.Require().NotNil(derr.Actual)
		s.Require().NotNil(derr.Claimed)
		s.Equal(int64(1_000_000_000), *derr.Actual)
		s.Equal(int64(3_000_000_000), *derr.Claimed)
	})

	s.Run("within tolerance", func() {
		s.ledger.addTransfer("close", fanWallet, talentWallet, 1_000_000_000)
		_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "close", 1_000_010_000))
		s.Require().NoError(err)
	})

	s.Run("destination mismatch", func() {
		s.ledger.addTransfer("elsewhere", fanWallet, otherWallet, 1_000_000_000)
		_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "elsewhere", 1_000_000_000))
		s.requireDepositError(err, http.StatusBadRequest, MsgDestinationMismatch)
	})
}

func (s *ServiceTestSuite) TestRecordMissingRecords() {
	s.ledger.addTransfer("sig-1", fanWallet, talentWallet, 1_000_000_000)

	_, err := s.deposits.Record(s.ctx, depositReq("no-such-presale", "sig-1", 1_000_000_000))
	s.requireDepositError(err, http.StatusNotFound, MsgPresaleNotFound)

	presale := s.createLivePresale()
	s.Require().NoError(s.db.Exec("UPDATE talents SET wallet_address = NULL WHERE id = ?", presale.TalentID).Error)
	_, err = s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-1", 1_000_000_000))
	s.requireDepositError(err, http.StatusNotFound, MsgTalentWalletNotFound)

	s.Require().NoError(s.db.Exec("DELETE FROM talents WHERE id = ?", presale.TalentID).Error)
	_, err = s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-1", 1_000_000_000))
	s.requireDepositError(err, http.StatusNotFound, MsgTalentWalletNotFound)
}

func (s *ServiceTestSuite) TestRecordOutsideWindowStillCredits() {
	presale := s.createLivePresale()
	s.Require().NoError(s.db.Exec("UPDATE presales SET end_ts = ? WHERE id = ?",
		s.now.Add(-time.Minute).UnixMilli(), presale.ID).Error)
	s.ledger.addTransfer("late", fanWallet, talentWallet, 1_000_000_000)

	_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "late", 1_000_000_000))
	s.Require().NoError(err)
}

func (s *ServiceTestSuite) TestCheck() {
	presale := s.createLivePresale()
	s.ledger.addTransfer("sig-1", fanWallet, talentWallet, 9_000_000_000)
	_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-1", 9_000_000_000))
	s.Require().NoError(err)

	resp, err := s.deposits.Check(s.ctx, types.DepositCheckRequest{
		PresaleID: presale.ID, WalletAddress: fanWallet, AmountLamports: 1_000_000_000,
	})
	s.Require().NoError(err)
	s.True(resp.Allowed, "%v", resp.Reasons)
	s.Equal(int64(9_000_000_000), resp.CurrentLamports)
	s.Equal(int64(11_000_000_000), resp.RemainingCapLamports)

	resp, err = s.deposits.Check(s.ctx, types.DepositCheckRequest{
		PresaleID: presale.ID, WalletAddress: fanWallet, AmountLamports: 2_000_000_000,
	})
	s.Require().NoError(err)
	s.False(resp.Allowed)
	s.Require().Len(resp.Reasons, 1)
	s.Contains(resp.Reasons[0], "Maximum per wallet is 10.000000000 SOL")

	resp, err = s.deposits.Check(s.ctx, types.DepositCheckRequest{
		PresaleID: presale.ID, WalletAddress: otherWallet, AmountLamports: 1,
	})
	s.Require().NoError(err)
	s.False(resp.Allowed)
	s.Contains(resp.Reasons[0], "Minimum deposit is 0.100000000 SOL")

	_, err = s.deposits.Check(s.ctx, types.DepositCheckRequest{
		PresaleID: "missing", WalletAddress: fanWallet, AmountLamports: 1,
	})
	s.ErrorIs(err, ErrPresaleNotFound)

	_, err = s.deposits.Check(s.ctx, types.DepositCheckRequest{PresaleID: presale.ID})
	s.ErrorIs(err, ErrInvalidInput)
}

func (s *ServiceTestSuite) TestCheckClosedWindow() {
	presale := s.createLivePresale()
	s.now = s.now.Add(30 * 24 * time.Hour)

	resp, err := s.deposits.Check(s.ctx, types.DepositCheckRequest{
		PresaleID: presale.ID, WalletAddress: fanWallet, AmountLamports: 1_000_000_000,
	})
	s.Require().NoError(err)
	s.False(resp.Allowed)
	s.Equal("ended", resp.Status)
	s.Equal([]string{"Presale is ended"}, resp.Reasons)
}
