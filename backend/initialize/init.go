package initialize

import (
	"fmt"
	"net/http"

	"maa-remote/backend/app/controllers"
	"maa-remote/backend/app/db"
	"maa-remote/backend/app/middleware"
	"maa-remote/backend/app/models"
	"maa-remote/backend/app/repo"
	"maa-remote/backend/app/services"
	"maa-remote/backend/config"
	"maa-remote/backend/router"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type App struct {
	Cfg       *config.Config
	DB        *gorm.DB
	Logger    zerolog.Logger
	Router    http.Handler
	DeviceSvc *services.DeviceService
	TaskSvc   *services.TaskService
}

func Build(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := NewLogger()

	gdb, err := db.Connect(db.Config{
		Driver: cfg.DB.Driver,
		Path:   cfg.DB.Path,
		Host:   cfg.DB.Host,
		Port:   cfg.DB.Port,
		User:   cfg.DB.User,
		Pass:   cfg.DB.Pass,
		Name:   cfg.DB.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := gdb.AutoMigrate(&models.User{}, &models.Device{}, &models.Task{}, &models.TaskLog{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	userRepo := repo.NewUserRepository(gdb)
	deviceRepo := repo.NewDeviceRepository(gdb)
	taskRepo := repo.NewTaskRepository(gdb)
	deviceSvc := services.NewDeviceService(userRepo, deviceRepo, logger)
	taskSvc := services.NewTaskService(taskRepo, logger)

	maaCtrl := controllers.NewMaaController(gdb, deviceSvc, taskSvc, cfg.Maa.MaxLogChars, cfg.Maa.PollInterval, logger)
	adminCtrl := controllers.NewAdminController(deviceSvc, taskSvc, logger)
	healthCtrl := controllers.NewHealthController()

	h := router.NewRouter(cfg.Maa, maaCtrl, adminCtrl, healthCtrl)
	h = middleware.Logging(logger, h)

	return &App{Cfg: cfg, DB: gdb, Logger: logger, Router: h, DeviceSvc: deviceSvc, TaskSvc: taskSvc}, nil
}
