package di

import (
	"nena/internal/persistence"
	"nena/internal/services"
)

// NewReconciler hands the analytics service to the scheduler's periodic
// reconciliation job.
func NewReconciler(analytics services.AnalyticsServiceInterface) persistence.Reconciler {
	return analytics
}
