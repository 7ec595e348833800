package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"katydid-common-uid/pkg/idgen/core"
	"katydid-common-uid/pkg/idgen/domain"
)

// health 健康检查
// @Summary  Health check
// @Tags     system
// @Produce  json
// @Success  200 {object} HealthResponse
// @Router   /healthz [get]
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// nextIDs 生成一个或多个ID
// @Summary  Generate ids
// @Tags     ids
// @Produce  json
// @Param    generator query string false "generator name" default(default)
// @Param    count     query int    false "number of ids"  default(1)
// @Success  200 {object} NextIDsResponse
// @Failure  400 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  503 {object} ErrorResponse
// @Security BearerAuth
// @Router   /v1/ids/next [get]
func (s *Server) nextIDs(c *gin.Context) {
	name := c.DefaultQuery("generator", defaultGenerator)

	count, err := strconv.Atoi(c.DefaultQuery("count", "1"))
	if err != nil || count < 1 || count > s.maxBatch {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("count must be an integer in [1, %d]", s.maxBatch),
		})
		return
	}

	gen, err := s.registry.Get(name)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	ids, err := gen.NextIDBatch(count)
	if err != nil {
		var rewind *core.ClockRewindError
		if errors.As(err, &rewind) {
			s.logger.Error("clock moved backwards",
				zap.String("generator", name),
				zap.Int64("gap_ms", rewind.Gap()),
			)
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), GapMs: rewind.Gap()})
			return
		}
		s.logger.Error("generate ids failed", zap.String("generator", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, NextIDsResponse{Generator: name, IDs: domain.Int64sToIDs(ids)})
}

// parseID 解析ID
// @Summary  Parse an id
// @Tags     ids
// @Produce  json
// @Param    id path string true "decimal, 0x hex or 0b binary id"
// @Success  200 {object} core.IDInfo
// @Failure  400 {object} ErrorResponse
// @Security BearerAuth
// @Router   /v1/ids/{id} [get]
func (s *Server) parseID(c *gin.Context) {
	id, err := domain.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, id.Info())
}

// listGenerators 列出已注册的生成器
// @Summary  List generators
// @Tags     generators
// @Produce  json
// @Success  200 {array} GeneratorResponse
// @Security BearerAuth
// @Router   /v1/generators [get]
func (s *Server) listGenerators(c *gin.Context) {
	keys := s.registry.ListKeys()
	resp := make([]GeneratorResponse, 0, len(keys))
	for _, key := range keys {
		gen, err := s.registry.Get(key)
		if err != nil {
			// 列举与读取之间被移除
			continue
		}
		resp = append(resp, GeneratorResponse{
			Name:          key,
			WorkerID:      gen.GetWorkerID(),
			DatacenterID:  gen.GetDatacenterID(),
			LastTimestamp: gen.LastTimestamp(),
			Metrics:       gen.GetMetrics(),
		})
	}
	c.JSON(http.StatusOK, resp)
}
