package services

import (
	"github.com/talentpad/presale/internal/db/models"
	"github.com/talentpad/presale/internal/types"
)

func (s *ServiceTestSuite) TestTalentLifecycle() {
	talent, err := s.talents.Create(s.ctx, types.CreateTalentRequest{
		Handle: "ava_k",
		Name:   "Ava K",
		Status: "Breakout",
	})
	s.Require().NoError(err)
	s.Equal(models.TalentStatusBreakout, talent.Status)
	s.Nil(talent.WalletAddress)

	_, err = s.talents.Create(s.ctx, types.CreateTalentRequest{Handle: "ava_k", Name: "Copy"})
	s.ErrorIs(err, ErrHandleTaken)

	_, err = s.talents.Create(s.ctx, types.CreateTalentRequest{Handle: "A", Name: "Bad"})
	s.ErrorIs(err, ErrInvalidInput)

	byHandle, err := s.talents.GetByHandle(s.ctx, "ava_k")
	s.Require().NoError(err)
	s.Equal(talent.ID, byHandle.ID)

	updated, err := s.talents.UpdateWallet(s.ctx, talent.ID, types.UpdateWalletRequest{WalletAddress: talentWallet})
	s.Require().NoError(err)
	s.Require().NotNil(updated.WalletAddress)
	s.Equal(talentWallet, *updated.WalletAddress)

	_, err = s.talents.UpdateWallet(s.ctx, talent.ID, types.UpdateWalletRequest{WalletAddress: "nope"})
	s.ErrorIs(err, ErrInvalidInput)

	_, err = s.talents.UpdateWallet(s.ctx, "missing", types.UpdateWalletRequest{WalletAddress: talentWallet})
	s.ErrorIs(err, ErrTalentNotFound)

	_, err = s.talents.Get(s.ctx, "missing")
	s.ErrorIs(err, ErrTalentNotFound)

	list, total, err := s.talents.List(s.ctx, &models.ListOptions{Limit: 10})
	s.Require().NoError(err)
	s.Len(list, 1)
	s.Equal(int64(1), total)
}
