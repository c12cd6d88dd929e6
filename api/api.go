package api

import (
	"fmt"
	"time"

	"stocktagger/internal/logger"
	l3_service "stocktagger/internal/service/l3"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	InferenceService l3_service.InferenceService
	Logger           *zap.SugaredLogger
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to stocktagger"})
	})
	router.GET("/predict", m.predict)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, 500)
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	if code >= 500 {
		logger.FromContext(c.Request.Context()).Error(err.Error())
	}
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m ApiHandler) baseLogger() *zap.SugaredLogger {
	if m.Logger != nil {
		return m.Logger
	}
	return zap.S()
}

// logRequestMiddleware tags every request with an id and carries a
// request-scoped logger on the request context
func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	requestID := uuid.New()
	start := time.Now()
	log := m.baseLogger().With("requestID", requestID.String())

	c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))
	c.Header("X-Request-ID", requestID.String())

	c.Next()

	log.Infow(
		"handled request",
		"method", c.Request.Method,
		"route", c.FullPath(),
		"status", c.Writer.Status(),
		"latencyMs", time.Since(start).Milliseconds(),
	)
}
