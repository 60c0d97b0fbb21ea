package service

import (
	"context"

	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/models"
)

type appInfoService struct {
	buildInfo models.AppBuildInfo

	logger *logger.Logger
}

// NewAppInfoService constructs an AppInfoService reporting the given
// build metadata. buildInfo normalizes missing linker values itself, so
// there is nothing to validate here.
func NewAppInfoService(buildInfo models.AppBuildInfo, logger *logger.Logger) AppInfoService {
	return &appInfoService{
		buildInfo: buildInfo,
		logger:    logger,
	}
}

func (s *appInfoService) GetBuildInfo(ctx context.Context) models.AppBuildInfo {
	return s.buildInfo
}
