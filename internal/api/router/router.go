package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ziyi127/TimeNest-sub000/config"
	"github.com/ziyi127/TimeNest-sub000/internal/api/handler"
	"github.com/ziyi127/TimeNest-sub000/internal/api/middleware"
	"github.com/ziyi127/TimeNest-sub000/internal/model"
	"github.com/ziyi127/TimeNest-sub000/pkg/jwt"
	"github.com/ziyi127/TimeNest-sub000/pkg/redis"
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
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录/注册限速）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/:id", h.Course.GetCourse)
				courses.POST("", middleware.RoleAuth(model.RoleAdmin), h.Course.CreateCourse)
				courses.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Course.UpdateCourse)
				courses.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Course.DeleteCourse)
			}

			// 排课模块
			placements := authorized.Group("/placements")
			{
				placements.GET("", h.Placement.ListPlacements)
				placements.GET("/:id", h.Placement.GetPlacement)
				placements.POST("", middleware.RoleAuth(model.RoleAdmin), h.Placement.CreatePlacement)
				placements.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Placement.UpdatePlacement)
				placements.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Placement.DeletePlacement)
			}

			// 调课模块
			overrides := authorized.Group("/overrides")
			{
				overrides.GET("", h.Override.ListOverrides)
				overrides.GET("/:id", h.Override.GetOverride)
				overrides.POST("", middleware.RoleAuth(model.RoleAdmin), h.Override.CreateOverride)
				overrides.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Override.UpdateOverride)
				overrides.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Override.DeleteOverride)
			}

			// 轮换模板模块
			rotations := authorized.Group("/rotations")
			{
				rotations.GET("", h.Rotation.ListRotationTemplates)
				rotations.GET("/:id", h.Rotation.GetRotationTemplate)
				rotations.GET("/:id/materialize", h.Rotation.MaterializeRotation)
				rotations.POST("", middleware.RoleAuth(model.RoleAdmin), h.Rotation.CreateRotationTemplate)
				rotations.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Rotation.UpdateRotationTemplate)
				rotations.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Rotation.DeleteRotationTemplate)
			}

			// 课表解析模块
			schedule := authorized.Group("/schedule")
			{
				schedule.GET("/resolve", h.Schedule.ResolveDay)
				schedule.GET("/resolve-week", h.Schedule.ResolveWeek)
				schedule.GET("/preview", h.Schedule.PreviewRange)
				schedule.POST("/course-with-placement", middleware.RoleAuth(model.RoleAdmin), h.Schedule.CreateCourseWithPlacement)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/ics", h.Export.ExportICS)
			}
		}
	}

	return r
}
