package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	"room_chat_service/internal/identity/app"
	"room_chat_service/internal/identity/domain"
	"room_chat_service/internal/identity/repository"
	"room_chat_service/internal/identity/router"
	"room_chat_service/pkg/config"
	"room_chat_service/pkg/database"
	"room_chat_service/pkg/logger"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.IdentityService, config.EnvConfig.IdentityServiceLogPath)
	cfg := config.LoadConfig[config.Identity](config.EnvConfig.IdentityService, config.EnvConfig.IdentityServiceYAMLPath)

	uri := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    uri,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	redisClient, err := database.NewRedisClient(config.RedisAddr(cfg.Redis), cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}
	defer redisClient.Close()

	accountRepo := repository.NewAccountRepository(pool)
	sessionRepo := database.NewRedisRepository[domain.AuthSession](redisClient)
	authUC := app.NewAuthUseCase(accountRepo, cfg.SessionTTL, sessionRepo, config.EnvConfig.IdentityService)

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.IdentityServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, &app.IdentityHandler{Usecase: authUC})

	port := ":" + cfg.Port
	log.Printf("Identity Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
