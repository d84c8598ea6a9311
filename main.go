package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"chapter-quiz-service/internal/db"
	"chapter-quiz-service/internal/event"
	"chapter-quiz-service/internal/handlers"
	"chapter-quiz-service/internal/repository"
	"chapter-quiz-service/internal/selection"
	"chapter-quiz-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}
	db.InitMongo(mongoURI)

	databaseName := os.Getenv("MONGO_DATABASE")
	if databaseName == "" {
		databaseName = "chapter_quiz"
	}

	// RabbitMQ event publisher
	rabbitURL := os.Getenv("RABBITMQ_URI")
	eventExchange := os.Getenv("RABBITMQ_EXCHANGE")
	var publisher *event.EventPublisher
	if rabbitURL != "" && eventExchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(rabbitURL, eventExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, events will not be published")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	database := db.Client.Database(databaseName)

	// Configs
	configRepo := repository.NewConfigRepository(database)
	configService := service.NewConfigService(configRepo)
	configHandler := handlers.NewConfigHandler(configService)

	// Questions
	questionRepo := repository.NewQuestionRepository(database)
	questionService := service.NewQuestionService(questionRepo)
	questionHandler := handlers.NewQuestionHandler(questionService)

	// Sessions
	sessionRepo := repository.NewSessionRepository(database)
	selector := selection.NewSelector(questionRepo)
	var events service.EventPublisher
	if publisher != nil {
		events = publisher
	}
	sessionService := service.NewSessionService(sessionRepo, configService, selector, events)
	sessionHandler := handlers.NewSessionHandler(sessionService)

	r.GET("/health", sessionHandler.HealthCheck)

	publicQuestion := r.Group("/public/quiz/question")
	{
		publicQuestion.GET("/", questionHandler.ListQuestions)
		publicQuestion.GET("/:id", questionHandler.GetQuestion)
	}

	protectedQuestion := r.Group("/protected/quiz/question")
	protectedQuestion.Use(requireUser())
	{
		protectedQuestion.POST("/", func(c *gin.Context) {
			questionHandler.CreateQuestion(c)
			if publisher != nil {
				publisher.Publish("question.created", gin.H{"user_id": c.GetHeader("X-User-ID")})
			}
		})
		protectedQuestion.PUT("/:id", func(c *gin.Context) {
			questionHandler.UpdateQuestion(c)
			if publisher != nil {
				publisher.Publish("question.updated", gin.H{"id": c.Param("id")})
			}
		})
		protectedQuestion.DELETE("/:id", func(c *gin.Context) {
			questionHandler.DeleteQuestion(c)
			if publisher != nil {
				publisher.Publish("question.deactivated", gin.H{"id": c.Param("id")})
			}
		})
	}

	protectedConfig := r.Group("/protected/quiz/config")
	protectedConfig.Use(requireUser())
	{
		protectedConfig.GET("/:chapterId", configHandler.GetConfig)
		protectedConfig.PUT("/:chapterId", func(c *gin.Context) {
			configHandler.PutConfig(c)
			if publisher != nil {
				publisher.Publish("config.updated", gin.H{"chapter_id": c.Param("chapterId")})
			}
		})
	}

	setupSessionRoutes(r, sessionHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "6660"
	}
	r.Run(":" + port)
}

func setupSessionRoutes(r *gin.Engine, sessionHandler *handlers.SessionHandler) {
	protectedSession := r.Group("/protected/quiz/session")
	protectedSession.Use(requireUser())
	protectedSession.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return "[SESSION] " + param.TimeStamp.Format("2006/01/02 - 15:04:05") + " | " +
			param.Method + " " + param.Path + " | " + param.ErrorMessage + "\n"
	}))
	{
		protectedSession.POST("/", sessionHandler.StartQuiz)
		protectedSession.POST("/:id/answer", sessionHandler.SubmitAnswer)
		protectedSession.POST("/:id/complete", sessionHandler.CompleteQuiz)
		protectedSession.GET("/:id", sessionHandler.GetSession)
		protectedSession.GET("/history", sessionHandler.GetHistory)
	}

	publicSession := r.Group("/public/quiz/session")
	{
		publicSession.GET("/:id", sessionHandler.GetSession)
	}
}

// requireUser expects the gateway to have set X-User-ID after authentication.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "MISSING_USER_ID",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
