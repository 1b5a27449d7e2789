package webapp

import (
	"fmt"

	"github.com/LachsProducktions/mediascan/app"
	"github.com/LachsProducktions/mediascan/models"
)

// WebApp serves saved inventory snapshots as JSON. It renders nothing itself;
// chart and listing UIs are external consumers of these endpoints.
type WebApp struct {
	Store     *app.Store
	AppConfig *models.AppConfig
}

func New(store *app.Store, cfg *models.AppConfig) *WebApp {
	return &WebApp{Store: store, AppConfig: cfg}
}

func (webapp *WebApp) GetListenAddr() string {
	port := 8080
	if webapp.AppConfig != nil && webapp.AppConfig.Server.Port > 0 {
		port = webapp.AppConfig.Server.Port
	}
	return fmt.Sprintf(":%d", port)
}
