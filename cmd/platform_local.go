//go:build !gcloud

package main

import (
	"context"
	"os"

	"github.com/sngor/bayon-coagent-sub013/internal/config"
	"github.com/sngor/bayon-coagent-sub013/internal/observability"
	"github.com/sngor/bayon-coagent-sub013/internal/observability/logging"
)

func initObservability(ctx context.Context, cfg *config.Config) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "optimizer"
	}

	env := logging.EnvDev
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:     serviceName,
			Version:  Version,
			Revision: "",
		},
		Environment:   env,
		GCPProjectID:  "",
		SamplingRate:  1.0,
		DefaultModule: logging.Module("optimizer"),
		LogLevel:      cfg.LogLevel,
	})
}
