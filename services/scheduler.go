// services/scheduler.go
package services

import (
	"log"
	"time"

	"league-management-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartMedicalExpiryScheduler flips VALID clearances whose expiry date has
// passed to EXPIRED, so the stored status matches what the eligibility engine
// would conclude from the dates.
func (s *PlayerService) StartMedicalExpiryScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			var players []models.Player
			now := time.Now()
			err := s.DB.Where("medical_clearance_status = ? AND medical_expiry_date <= ?",
				models.MedicalValid, now).
				Find(&players).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}

			for _, p := range players {
				p.MedicalClearanceStatus = models.MedicalExpired
				if err := s.DB.Save(&p).Error; err != nil {
					log.Printf("[Scheduler] Failed to expire medical clearance for %s: %v", p.UPID, err)
				} else {
					log.Printf("Medical clearance expired for player %s", p.UPID)
				}
			}
		}),
	)
}
