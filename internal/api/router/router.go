package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"field-ops/backend/config"
	"field-ops/backend/internal/api/handler"
	"field-ops/backend/internal/api/middleware"
	"field-ops/backend/pkg/jwt"
	"field-ops/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录接口限流防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 作业模块
			operations := authorized.Group("/operations")
			{
				operations.GET("", h.Operation.ListOperations)
				operations.GET("/statistics", h.Operation.GetOperationStatistics)
				operations.GET("/:id", h.Operation.GetOperation)
				operations.POST("", middleware.RoleAuth("admin", "dispatcher"), h.Operation.CreateOperation)
				operations.PUT("/:id", middleware.RoleAuth("admin", "dispatcher"), h.Operation.UpdateOperation)
				operations.PUT("/:id/status", h.Operation.UpdateOperationStatus)
				operations.PUT("/:id/assign", middleware.RoleAuth("admin", "dispatcher"), h.Operation.AssignOperation)
				operations.DELETE("/:id", middleware.RoleAuth("admin", "dispatcher"), h.Operation.DeleteOperation)
			}

			// 班组模块
			teams := authorized.Group("/teams")
			{
				teams.GET("", h.Team.ListTeams)
				teams.GET("/:id", h.Team.GetTeam)
				teams.POST("", middleware.RoleAuth("admin", "dispatcher"), h.Team.CreateTeam)
				teams.PUT("/:id", middleware.RoleAuth("admin", "dispatcher"), h.Team.UpdateTeam)
				teams.DELETE("/:id", middleware.RoleAuth("admin"), h.Team.DeleteTeam)
				teams.GET("/:id/members", h.Team.ListTeamMembers)
				teams.POST("/:id/members", middleware.RoleAuth("admin", "dispatcher"), h.Team.AddTeamMember)
				teams.DELETE("/:id/members/:workerId", middleware.RoleAuth("admin", "dispatcher"), h.Team.RemoveTeamMember)
			}

			// 工人模块
			workers := authorized.Group("/workers")
			{
				workers.GET("", h.Worker.ListWorkers)
				workers.GET("/locations", h.Worker.ListWorkerLocations)
				workers.GET("/:id", h.Worker.GetWorker)
				workers.POST("", middleware.RoleAuth("admin", "dispatcher"), h.Worker.CreateWorker)
				workers.PUT("/:id", middleware.RoleAuth("admin", "dispatcher"), h.Worker.UpdateWorker)
				workers.DELETE("/:id", middleware.RoleAuth("admin"), h.Worker.DeleteWorker)
				workers.POST("/:id/location", h.Worker.UpdateWorkerLocation) // 现场 App 上报
				workers.GET("/:id/locations", h.Worker.ListWorkerLocationLogs)
				workers.POST("/:id/performance", middleware.RoleAuth("admin", "dispatcher"), h.Worker.CalculateWorkerPerformance)
				workers.GET("/:id/performance", h.Worker.ListWorkerPerformance)
			}

			// 工作包模块
			workPackages := authorized.Group("/work-packages")
			{
				workPackages.GET("", h.WorkPackage.ListWorkPackages)
				workPackages.GET("/:id", h.WorkPackage.GetWorkPackage)
				workPackages.POST("", middleware.RoleAuth("admin", "dispatcher"), h.WorkPackage.CreateWorkPackage)
				workPackages.PUT("/:id", middleware.RoleAuth("admin", "dispatcher"), h.WorkPackage.UpdateWorkPackage)
				workPackages.PUT("/:id/assign", middleware.RoleAuth("admin", "dispatcher"), h.WorkPackage.AssignWorkPackage)
				workPackages.PUT("/:id/start", h.WorkPackage.StartWorkPackage)
				workPackages.PUT("/:id/complete", h.WorkPackage.CompleteWorkPackage)
				workPackages.PUT("/:id/submit-inspection", h.WorkPackage.SubmitWorkPackageInspection)
				workPackages.PUT("/:id/inspect", middleware.RoleAuth("admin", "inspector"), h.WorkPackage.InspectWorkPackage)
				workPackages.DELETE("/:id", middleware.RoleAuth("admin", "dispatcher"), h.WorkPackage.DeleteWorkPackage)
				workPackages.POST("/:id/items", middleware.RoleAuth("admin", "dispatcher"), h.WorkPackage.AddWorkPackageItem)
				workPackages.DELETE("/:id/items/:itemId", middleware.RoleAuth("admin", "dispatcher"), h.WorkPackage.RemoveWorkPackageItem)
			}

			// 抄表模板模块
			readingTemplates := authorized.Group("/reading-templates")
			{
				readingTemplates.GET("", h.Reading.ListReadingTemplates)
				readingTemplates.GET("/:id", h.Reading.GetReadingTemplate)
				readingTemplates.POST("", middleware.RoleAuth("admin", "dispatcher"), h.Reading.CreateReadingTemplate)
				readingTemplates.PUT("/:id", middleware.RoleAuth("admin", "dispatcher"), h.Reading.UpdateReadingTemplate)
				readingTemplates.DELETE("/:id", middleware.RoleAuth("admin"), h.Reading.DeleteReadingTemplate)
			}

			// 抄表轮次模块
			readingRounds := authorized.Group("/reading-rounds")
			{
				readingRounds.GET("", h.Reading.ListReadingRounds)
				readingRounds.GET("/:id", h.Reading.GetReadingRound)
				readingRounds.POST("", middleware.RoleAuth("admin", "dispatcher"), h.Reading.CreateReadingRound)
				readingRounds.PUT("/:id/start", h.Reading.StartReadingRound)
				readingRounds.PUT("/:id/complete", h.Reading.CompleteReadingRound)
				readingRounds.POST("/:id/readings", h.Reading.RecordMeterReading) // 现场 App 录入
				readingRounds.GET("/:id/readings", h.Reading.ListMeterReadings)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/operations", middleware.RoleAuth("admin", "dispatcher"), h.Export.ExportOperations)
				export.GET("/calendar", h.Export.ExportCalendar)
			}
		}
	}

	return r
}
