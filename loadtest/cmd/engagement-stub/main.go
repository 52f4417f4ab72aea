package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/sngor/bayon-coagent-sub013/loadtest/internal/stub"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8090"
	}

	gin.SetMode(gin.ReleaseMode)
	r := stub.NewRouter(stub.NewHandler(stub.NewCohortStorage()))

	slog.Info("starting engagement stub", slog.String("port", port))
	if err := r.Run(":" + port); err != nil {
		slog.Error("engagement stub exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
