// services/scheduler.go
package services

import (
	"time"

	"idea-feedback-system/models"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// StartPoolSweeper flips ended=true on pools whose deadline has passed, so
// the stored flag converges with the computed one. Every mutating check also
// recomputes from endsAt, so the sweeper keeps read paths honest rather than
// carrying correctness.
func (s *PrizeService) StartPoolSweeper() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: close expired prize pools
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			res := s.DB.Model(&models.PrizePool{}).
				Where("ended = ? AND ends_at <= ?", false, time.Now()).
				Update("ended", true)
			if res.Error != nil {
				zap.S().Errorf("[Sweeper] DB error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				zap.S().Infof("[Sweeper] Closed %d expired prize pool(s)", res.RowsAffected)
			}
		}),
	)
}
