package internal

import (
	"net/http"

	"nena/internal/controllers"
	"nena/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/recordings", http.HandlerFunc(apiController.UploadRecording))
	routers.Get("/dashboard", http.HandlerFunc(apiController.GetDashboard))
	routers.Get("/analytics", http.HandlerFunc(apiController.GetAnalytics))
	routers.Post("/analytics/reconcile", http.HandlerFunc(apiController.ReconcileAnalytics))
	routers.Get("/badges", http.HandlerFunc(apiController.GetBadges))
	routers.Post("/badges", http.HandlerFunc(apiController.CreateBadge))
	routers.Get("/coaching/insights", http.HandlerFunc(apiController.GetCoachingInsight))
	routers.Get("/coaching/practice-ideas", http.HandlerFunc(apiController.GetPracticeIdeas))
	return routers
}
