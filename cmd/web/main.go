package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/menottiRicardo/blazestack/internal/config"
	"github.com/menottiRicardo/blazestack/internal/web"
	"github.com/menottiRicardo/blazestack/pkg/client"
	"github.com/menottiRicardo/blazestack/pkg/logger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadWebConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Клиент incidents API
	api := client.New(cfg.APIBaseURL)

	// Статика с загруженными файлами раздается сервером API
	uploadsURL := strings.TrimSuffix(cfg.APIBaseURL, "/api/v1") + "/uploads"

	handler := web.NewHandler(api, log, uploadsURL)

	// Настройка Gin роутера
	router := gin.Default()
	router.LoadHTMLGlob("web/templates/*.html")
	handler.RegisterRoutes(router)

	serverAddr := fmt.Sprintf(":%s", cfg.WebPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("Web UI started on port %s", cfg.WebPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
