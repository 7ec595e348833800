package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "katydid-common-uid/internal/server/docs"
	"katydid-common-uid/pkg/idgen/registry"
)

const (
	// defaultGenerator 未指定generator参数时使用的名称
	defaultGenerator = "default"

	// defaultMaxBatch 单次请求默认最多生成的ID数量
	defaultMaxBatch = 1000
)

// Server 对外提供ID生成与解析的HTTP接口
type Server struct {
	engine    *gin.Engine
	registry  *registry.Registry
	logger    *zap.Logger
	jwtSecret []byte
	maxBatch  int
}

// Option 服务可选项
type Option func(*Server)

// WithLogger 注入日志器
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithJWTSecret 为 /v1 开启HS256令牌校验
func WithJWTSecret(secret string) Option {
	return func(s *Server) {
		if secret != "" {
			s.jwtSecret = []byte(secret)
		}
	}
}

// WithMaxBatch 设置单次请求的数量上限
func WithMaxBatch(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

// New 创建服务并注册路由
func New(reg *registry.Registry, opts ...Option) *Server {
	s := &Server{
		registry: reg,
		logger:   zap.NewNop(),
		maxBatch: defaultMaxBatch,
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(s.logger))

	engine.GET("/healthz", s.health)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := engine.Group("/v1")
	if s.jwtSecret != nil {
		v1.Use(bearerAuth(s.jwtSecret))
	}
	v1.GET("/ids/next", s.nextIDs)
	v1.GET("/ids/:id", s.parseID)
	v1.GET("/generators", s.listGenerators)

	s.engine = engine
	return s
}

// Handler 返回可挂载到 http.Server 的处理器
func (s *Server) Handler() http.Handler {
	return s.engine
}
