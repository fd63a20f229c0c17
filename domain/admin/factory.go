package admin

import (
	"github.com/stackos/landing/config/router"
	"github.com/stackos/landing/internal/log"
	"gorm.io/gorm"
)

type AdminServiceFactory interface {
	CreateService() AdminService
	CreateControllers(requireSession router.MiddlewareFunc) []*router.RESTController
}

type DefaultAdminServiceFactory struct {
	db     *gorm.DB
	logger *log.Logger
}

func NewAdminServiceFactory(db *gorm.DB, logger *log.Logger) AdminServiceFactory {
	return &DefaultAdminServiceFactory{
		db:     db,
		logger: logger,
	}
}

func (f *DefaultAdminServiceFactory) CreateService() AdminService {
	return NewAdminService(f.logger, NewAdminRepository(f.db))
}

func (f *DefaultAdminServiceFactory) CreateControllers(requireSession router.MiddlewareFunc) []*router.RESTController {
	service := f.CreateService()
	return []*router.RESTController{
		NewAdminController(service, requireSession),
		NewAdminAPIController(service, requireSession),
	}
}
