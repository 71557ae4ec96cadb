package services

import (
	"context"
	"time"

	"github.com/sahilchouksey/career-guidance-api/model"
	"gorm.io/gorm"
)

// RefreshAdmissionPeriodStatuses moves periods between upcoming, active and
// closed according to their dates. It returns the number of periods changed.
func RefreshAdmissionPeriodStatuses(ctx context.Context, db *gorm.DB, now time.Time) (int, error) {
	changed := 0
	var periods []model.AdmissionPeriod

	result := db.WithContext(ctx).FindInBatches(&periods, 200, func(tx *gorm.DB, batch int) error {
		for _, p := range periods {
			status := p.StatusAt(now)
			if status == p.Status {
				continue
			}
			if err := db.WithContext(ctx).Model(&model.AdmissionPeriod{}).
				Where("id = ?", p.ID).
				Update("status", status).Error; err != nil {
				return err
			}
			changed++
		}
		return nil
	})

	return changed, result.Error
}
