package billing

import (
	"time"

	"gorm.io/gorm"

	"github.com/TheKhanSoft/tks-prepify-sub000/models"
)

// ActivateOrder marks a pending order as completed and activates the
// plan subscription. The subscription start date becomes the quota
// anchor for the user. Free plans activate through here directly;
// paid plans arrive via the Stripe webhook or session confirmation.
// Idempotent: an already completed order is left alone.
func ActivateOrder(db *gorm.DB, reference string) error {
	var order models.Order
	if err := db.Where("reference = ?", reference).First(&order).Error; err != nil {
		return err
	}
	if order.Status == "completed" {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// End whatever subscription was active before.
		if err := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND status = ?", order.UserID, "active").
			Updates(map[string]interface{}{"status": "canceled", "end_date": now}).Error; err != nil {
			return err
		}

		subscription := models.Subscription{
			UserID:    order.UserID,
			PlanID:    order.PlanID,
			StartDate: now,
			Status:    "active",
		}
		if err := tx.Create(&subscription).Error; err != nil {
			return err
		}

		order.Status = "completed"
		return tx.Save(&order).Error
	})
}
