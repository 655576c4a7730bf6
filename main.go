package main

import (
	"log"
	"time"

	appcache "github.com/Ejay02/lms-backend/cache"
	"github.com/Ejay02/lms-backend/config"
	courseControllers "github.com/Ejay02/lms-backend/controllers/course"
	feedbackControllers "github.com/Ejay02/lms-backend/controllers/feedback"
	progressControllers "github.com/Ejay02/lms-backend/controllers/progress"
	"github.com/Ejay02/lms-backend/database"
	authRoutes "github.com/Ejay02/lms-backend/routers/authRoutes"
	courseRoutes "github.com/Ejay02/lms-backend/routers/courseRoutes"
	feedbackRoutes "github.com/Ejay02/lms-backend/routers/feedbackRoutes"
	progressRoutes "github.com/Ejay02/lms-backend/routers/progressRoutes"
	"github.com/Ejay02/lms-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	// The cache is a latency optimization only: without REDIS_ADDR every
	// lookup is a miss and the app still serves from Postgres.
	store := appcache.NewNoopStore()
	if config.AppConfig.RedisAddr != "" {
		redisStore, err := appcache.NewRedisStore(config.AppConfig.RedisAddr)
		if err != nil {
			log.Printf("Warning: failed to connect to Redis: %v. Continuing without cache.", err)
		} else {
			store = redisStore
		}
	}
	invalidator := appcache.NewInvalidator(store)

	db := database.Database.Db
	progressService := services.NewProgressService(db, invalidator)

	courseController := courseControllers.NewCourseController(db, progressService, invalidator)
	progressController := progressControllers.NewProgressController(progressService)
	feedbackController := feedbackControllers.NewFeedbackController(db)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	cacheTTL := time.Duration(config.AppConfig.CacheTTL) * time.Second

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app, courseController, store, cacheTTL)
	progressRoutes.SetupProgressRoutes(app, progressController)
	feedbackRoutes.SetupFeedbackRoutes(app, feedbackController)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
