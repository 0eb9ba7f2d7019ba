package services

import (
	"context"
	"sync"
	"time"

	"github.com/talentpad/presale/internal/db/models"
)

func (s *ServiceTestSuite) TestFinalizeDue() {
	ended := s.createLivePresale()
	live := s.createLivePresale()
	s.Require().NoError(s.db.Model(&models.Presale{}).Where("id = ?", ended.ID).
		Update(models.PresaleEndField, s.now.Add(-time.Minute).UnixMilli()).Error)

	s.Equal(1, finalizeDue(s.ctx, s.presales))
	s.True(s.reloadPresale(ended.ID).IsFinalized)
	s.False(s.reloadPresale(live.ID).IsFinalized)

	s.Zero(finalizeDue(s.ctx, s.presales))
}

func (s *ServiceTestSuite) TestLaunchFinalizerStopsOnCancel() {
	ended := s.createLivePresale()
	s.Require().NoError(s.db.Model(&models.Presale{}).Where("id = ?", ended.ID).
		Update(models.PresaleEndField, s.now.Add(-time.Minute).UnixMilli()).Error)

	ctx, cancel := context.WithCancel(s.ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go LaunchFinalizer(ctx, &wg, s.presales, 10*time.Millisecond)

	s.Eventually(func() bool {
		var p models.Presale
		if err := s.db.Where("id = ?", ended.ID).First(&p).Error; err != nil {
			return false
		}
		return p.IsFinalized
	}, time.Second, 10*time.Millisecond)

	cancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("finalizer did not stop")
	}
}
