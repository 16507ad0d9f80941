package router

import (
	"net/http"

	"maa-remote/backend/app/controllers"
	"maa-remote/backend/config"
)

func NewRouter(cfg config.Maa, maaCtrl *controllers.MaaController, adminCtrl *controllers.AdminController, healthCtrl *controllers.HealthController) http.Handler {
	mux := http.NewServeMux()

	// agent-facing protocol
	mux.HandleFunc("POST "+cfg.GetTaskPath, maaCtrl.GetTask)
	mux.HandleFunc("POST "+cfg.ReportStatusPath, maaCtrl.ReportStatus)

	// management API
	mux.HandleFunc("GET /api/devices", adminCtrl.ListDevices)
	mux.HandleFunc("GET /api/devices/{device}/tasks", adminCtrl.ListDeviceTasks)
	mux.HandleFunc("POST /api/devices/{device}/tasks", adminCtrl.CreateDeviceTask)

	mux.HandleFunc("GET /healthz", healthCtrl.Healthz)

	return mux
}
