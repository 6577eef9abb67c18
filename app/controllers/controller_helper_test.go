package controllers

import (
	"github.com/LukasBrandt/PaperFig/internal/pkg/billing"
	"github.com/LukasBrandt/PaperFig/internal/pkg/config"
)

// setTestDependencies injects controller dependencies without reading the
// environment. Consumes the init-once guard so Initialize stays a no-op.
func setTestDependencies(cfg *config.AppConfig, client *billing.Client) {
	initOnce.Do(func() {})
	appConfig = cfg
	billingClient = client
}
