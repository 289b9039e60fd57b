package controller

import (
	"context"
	"net/http"
	"time"

	"mock_interview_backend/internal/service"
	"mock_interview_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
	Live  *service.LiveService
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, live *service.LiveService) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Live: live}
}

// @Summary 健康检查
// @Description 检查数据库与缓存状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	components := gin.H{"database": "up", "cache": "local"}
	if c.Redis != nil {
		// Redis 仅作缓存，不可用时降级而非报错
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			components["cache"] = "degraded"
		} else {
			components["cache"] = "redis"
		}
	}

	data := gin.H{
		"status":     "ok",
		"components": components,
	}
	if c.Live != nil {
		data["liveRuns"] = c.Live.OpenCount()
	}
	util.Success(ctx, data)
}
