package controllers

import "net/http"

// HealthController answers liveness probes.
type HealthController struct{}

func NewHealthController() *HealthController { return &HealthController{} }

func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
