package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/events"
	"github.com/talentpad/presale/internal/lamports"
	"github.com/talentpad/presale/internal/types"
)

func (s *ServiceTestSuite) createTalent(handle string) *models.Talent {
	wallet := talentWallet
	talent, err := s.talents.Create(s.ctx, types.CreateTalentRequest{
		Handle:        handle,
		Name:          "Talent " + handle,
		WalletAddress: &wallet,
	})
	s.Require().NoError(err)
	return talent
}

func presaleReq(talentID string) types.CreatePresaleRequest {
	return types.CreatePresaleRequest{
		TalentID:           talentID,
		DurationDays:       14,
		SoftCapLamports:    5_000_000_000,
		HardCapLamports:    20_000_000_000,
		MinDepositLamports: 100_000_000,
		MaxDepositLamports: 10_000_000_000,
	}
}

func (s *ServiceTestSuite) TestCreatePresale() {
	talent := s.createTalent("ava")

	presale, err := s.presales.Create(s.ctx, presaleReq(talent.ID))
	s.Require().NoError(err)
	s.Equal(s.now.UnixMilli(), presale.StartTS)
	s.Equal(s.now.Add(14*24*time.Hour).UnixMilli(), presale.EndTS)
	s.Zero(presale.RaisedLamports)

	linked, err := s.talents.Get(s.ctx, talent.ID)
	s.Require().NoError(err)
	s.Require().NotNil(linked.PresaleID)
	s.Equal(presale.ID, *linked.PresaleID)

	_, err = s.presales.Create(s.ctx, presaleReq(talent.ID))
	s.ErrorIs(err, ErrTalentHasPresale)

	_, err = s.presales.Create(s.ctx, presaleReq("missing"))
	s.ErrorIs(err, ErrTalentNotFound)

	bad := presaleReq(talent.ID)
	bad.HardCapLamports = 1
	_, err = s.presales.Create(s.ctx, bad)
	s.ErrorIs(err, ErrInvalidInput)

	past := presaleReq(s.createTalent("bea").ID)
	past.DurationDays = 0
	past.EndTS = s.now.Add(-time.Hour).UnixMilli()
	_, err = s.presales.Create(s.ctx, past)
	s.ErrorIs(err, ErrInvalidInput)

	list, total, err := s.presales.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(list, 1)
	s.Equal(int64(1), total)
}

func (s *ServiceTestSuite) TestSummary() {
	presale := s.createLivePresale()
	s.ledger.addTransfer("sig-1", fanWallet, talentWallet, 5_000_000_000)
	_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-1", 5_000_000_000))
	s.Require().NoError(err)

	summary, err := s.presales.Summary(s.ctx, presale.ID)
	s.Require().NoError(err)
	s.Equal("live", summary.Status)
	s.Equal("pending", summary.Outcome)
	s.Equal("5.000000000 SOL", summary.RaisedSOL)
	s.Equal("20.000000000 SOL", summary.HardCapSOL)
	s.InDelta(25.0, summary.ProgressPercent, 0.001)
	s.True(summary.SoftCapReached)
	s.Equal(int64(1), summary.Contributors)
	s.Positive(summary.TimeLeftMS)

	_, err = s.presales.Summary(s.ctx, "missing")
	s.ErrorIs(err, ErrPresaleNotFound)
}

func (s *ServiceTestSuite) TestFinalizeSucceeded() {
	presale := s.createLivePresale()
	s.ledger.addTransfer("sig-1", fanWallet, talentWallet, 3_000_000_000)
	s.ledger.addTransfer("sig-2", otherWallet, talentWallet, 1_000_000_000)
	s.ledger.addTransfer("sig-3", otherWallet, talentWallet, 2_000_000_000)
	for _, d := range []struct {
		sig    string
		wallet string
		amount int64
	}{
		{"sig-1", fanWallet, 3_000_000_000},
		{"sig-2", otherWallet, 1_000_000_000},
		{"sig-3", otherWallet, 2_000_000_000},
	} {
		req := depositReq(presale.ID, d.sig, d.amount)
		req.WalletAddress = d.wallet
		_, err := s.deposits.Record(s.ctx, req)
		s.Require().NoError(err)
	}

	_, err := s.presales.Finalize(s.ctx, presale.ID)
	s.ErrorIs(err, ErrPresaleNotEnded)

	s.now = s.now.Add(8 * 24 * time.Hour)
	finalized, err := s.presales.Finalize(s.ctx, presale.ID)
	s.Require().NoError(err)
	s.True(finalized.IsFinalized)
	s.Equal(models.PresaleOutcomeSucceeded, finalized.Outcome)

	pos, err := s.position.Get(s.ctx, presale.ID, fanWallet)
	s.Require().NoError(err)
	s.Equal("0.5", pos.ProRataShare)

	rows, total, err := s.position.List(s.ctx, presale.ID, &models.ListOptions{Limit: 10})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Equal("0.5", rows[1].ProRataShare)

	_, err = s.presales.Finalize(s.ctx, presale.ID)
	s.ErrorIs(err, ErrAlreadyFinalized)

	txns, count, err := s.presales.ListTransactions(s.ctx, presale.ID, nil)
	s.Require().NoError(err)
	s.Len(txns, 3)
	s.Equal(int64(3), count)
}

func (s *ServiceTestSuite) TestLateDepositKeepsSharesWhole() {
	presale := s.createLivePresale()
	s.ledger.addTransfer("sig-1", fanWallet, talentWallet, 6_000_000_000)
	s.ledger.addTransfer("sig-2", otherWallet, talentWallet, 6_000_000_000)

	_, err := s.deposits.Record(s.ctx, depositReq(presale.ID, "sig-1", 6_000_000_000))
	s.Require().NoError(err)

	s.now = s.now.Add(8 * 24 * time.Hour)
	_, err = s.presales.Finalize(s.ctx, presale.ID)
	s.Require().NoError(err)

	late := depositReq(presale.ID, "sig-2", 6_000_000_000)
	late.WalletAddress = otherWallet
	_, err = s.deposits.Record(s.ctx, late)
	s.Require().NoError(err)

	rows, _, err := s.position.List(s.ctx, presale.ID, nil)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.requireSharesWhole(rows)
	for _, row := range rows {
		s.Equal("0.5", row.ProRataShare, "share of %s", row.WalletAddress)
	}
}

func (s *ServiceTestSuite) TestFinalizeDuringDeposits() {
	presale := s.createLivePresale()
	wallets := []string{fanWallet, otherWallet, "So11111111111111111111111111111111111111112"}
	for i := 0; i < 9; i++ {
		s.ledger.addTransfer(fmt.Sprintf("sig-%d", i), wallets[i%3], talentWallet, uint64(i+1)*100_000_000)
	}
	s.now = s.now.Add(8 * 24 * time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := depositReq(presale.ID, fmt.Sprintf("sig-%d", i), int64(i+1)*100_000_000)
			req.WalletAddress = wallets[i%3]
			_, err := s.deposits.Record(s.ctx, req)
			s.NoError(err)
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.presales.Finalize(s.ctx, presale.ID)
		s.NoError(err)
	}()
	wg.Wait()

	settled := s.reloadPresale(presale.ID)
	s.True(settled.IsFinalized)
	s.Equal(int64(4_500_000_000), settled.RaisedLamports)

	rows, _, err := s.position.List(s.ctx, presale.ID, nil)
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.requireSharesWhole(rows)
	for _, row := range rows {
		want := lamports.Share(lamports.Lamports(row.DepositedLamports), lamports.Lamports(settled.RaisedLamports), models.SharePlaces)
		s.Equal(want.String(), row.ProRataShare, "share of %s", row.WalletAddress)
	}
}

// requireSharesWhole asserts the pro-rata shares of a presale add up to at most one
func (s *ServiceTestSuite) requireSharesWhole(rows []types.PositionResponse) {
	sum := decimal.Zero
	for _, row := range rows {
		share, err := decimal.NewFromString(row.ProRataShare)
		s.Require().NoError(err)
		sum = sum.Add(share)
	}
	s.True(sum.LessThanOrEqual(decimal.NewFromInt(1)), "sum of shares is %s", sum)
	s.True(sum.GreaterThan(decimal.RequireFromString("0.999999")), "sum of shares is %s", sum)
}

func (s *ServiceTestSuite) TestCreatePresaleOpenPresaleLookup() {
	talent := s.createTalent("ava")

	s.Require().NoError(s.db.Model(&models.Talent{}).
		Where("id = ?", talent.ID).
		Update(models.TalentPresaleField, "gone").Error)
	_, err := s.presales.Create(s.ctx, presaleReq(talent.ID))
	s.Require().NoError(err, "a dangling presale link does not block a new presale")

	other := s.createTalent("bea")
	s.Require().NoError(s.db.Model(&models.Talent{}).
		Where("id = ?", other.ID).
		Update(models.TalentPresaleField, "gone").Error)
	s.Require().NoError(s.db.Migrator().DropTable(&models.Presale{}))
	_, err = s.presales.Create(s.ctx, presaleReq(other.ID))
	s.ErrorContains(err, "failed to check open presale")
}

func (s *ServiceTestSuite) TestFinalizeFailedWithoutDeposits() {
	presale := s.createLivePresale()
	s.now = s.now.Add(8 * 24 * time.Hour)

	finalized, err := s.presales.Finalize(s.ctx, presale.ID)
	s.Require().NoError(err)
	s.Equal(models.PresaleOutcomeFailed, finalized.Outcome)

	summary, err := s.presales.Summary(s.ctx, presale.ID)
	s.Require().NoError(err)
	s.Equal("finalized", summary.Status)
	s.Equal("failed", summary.Outcome)
	s.Zero(summary.TimeLeftMS)
}

func (s *ServiceTestSuite) TestPositionErrors() {
	presale := s.createLivePresale()

	_, err := s.position.Get(s.ctx, presale.ID, fanWallet)
	s.ErrorIs(err, ErrPositionNotFound)

	_, err = s.position.Get(s.ctx, "missing", fanWallet)
	s.ErrorIs(err, ErrPresaleNotFound)

	_, _, err = s.position.List(s.ctx, "missing", nil)
	s.ErrorIs(err, ErrPresaleNotFound)

	_, _, err = s.presales.ListTransactions(s.ctx, "missing", nil)
	s.ErrorIs(err, ErrPresaleNotFound)
}

func (s *ServiceTestSuite) TestHardCapWatcher() {
	presale := s.createLivePresale()
	watch := s.presales.HardCapWatcher()
	event := events.Event{Type: events.EventDepositRecorded, PresaleID: presale.ID}

	s.NoError(watch(s.ctx, event))

	s.Require().NoError(s.db.Model(&models.Presale{}).
		Where("id = ?", presale.ID).
		Update(models.PresaleRaisedField, presale.HardCapLamports+1).Error)
	s.NoError(watch(s.ctx, event))

	event.PresaleID = "missing"
	s.Error(watch(s.ctx, event))
}
