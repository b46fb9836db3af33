// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supplysight/sentinel/controller"
	"github.com/supplysight/sentinel/middleware"
	"github.com/supplysight/sentinel/model"
	"github.com/supplysight/sentinel/service"
)

func SetupRouter(
	controllers *controller.Controllers,
	authzService service.IAuthzService,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	api := router.Group("/api/v1")

	// Decision endpoints are open to any authenticated caller; guards
	// consume them, they are not guarded themselves.
	controllers.Authz.RegisterRoutes(api)

	// Directory mutations require write access to the directory resource.
	directory := api.Group("")
	directory.Use(middleware.RequirePermission(authzService, "directory", model.LevelWrite))

	controllers.User.RegisterRoutes(directory)
	controllers.Persona.RegisterRoutes(directory)

	return router
}
