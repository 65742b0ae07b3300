package router

import (
	"phoneGuide/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupSessionRoutes(api *echo.Group, handler *rest.SessionHandler) {
	sessions := api.Group("/sessions")

	sessions.POST("", handler.CreateSession)
}

func SetupAdvisorRoutes(api *echo.Group, handler *rest.AdvisorHandler, sessionRequired echo.MiddlewareFunc) {
	advisor := api.Group("/advisor", sessionRequired)

	advisor.POST("/search", handler.SubmitSearch)
	advisor.GET("/recommendations", handler.GetRecommendations)

	advisor.PUT("/filters", handler.SetFilter)
	advisor.DELETE("/filters", handler.ClearFilters)

	advisor.POST("/comparison", handler.AddToComparison)
	advisor.DELETE("/comparison/:model", handler.RemoveFromComparison)
	advisor.DELETE("/comparison", handler.ClearComparison)
	advisor.POST("/comparison/feature", handler.CompareFeature)

	advisor.POST("/favorites/toggle", handler.ToggleFavorite)
	advisor.GET("/favorites", handler.GetFavorites)

	advisor.POST("/similar", handler.ShowSimilar)
	advisor.GET("/similar", handler.GetSimilar)
	advisor.DELETE("/similar", handler.CloseSimilar)

	advisor.GET("/phones/:model/image", handler.PhoneImage)

	advisor.GET("/history", handler.SearchHistory)
}
