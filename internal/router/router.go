package router

import (
	"time"

	"github.com/boxhub-dev/boxhub/internal/handlers"
	"github.com/boxhub-dev/boxhub/internal/middleware"
	"github.com/boxhub-dev/boxhub/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/polls/:poll_id", middleware.AuthMiddleware(), handlers.PollWebSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.GET("/session", middleware.AuthMiddleware(), handlers.Session)
			auth.POST("/logout", handlers.Logout)
		}

		workouts := api.Group("/workouts", middleware.AuthMiddleware())
		{
			workouts.GET("", handlers.ListWorkouts)
			workouts.GET("/today", handlers.TodaysWorkouts)
			workouts.POST("", handlers.CreateWorkout)
			workouts.GET("/:id", handlers.GetWorkout)
			workouts.PUT("/:id", handlers.UpdateWorkout)
			workouts.DELETE("/:id", middleware.AdminMiddleware(), handlers.DeleteWorkout)

			// Registration endpoints
			workouts.POST("/:id/register", handlers.RegisterForWorkout)
			workouts.DELETE("/:id/register", handlers.UnregisterFromWorkout)

			workouts.POST("/:id/attendance", middleware.AdminMiddleware(), handlers.MarkAttendance)
			workouts.POST("/:id/result", handlers.SubmitResult)
		}

		templates := api.Group("/templates", middleware.AuthMiddleware())
		{
			templates.GET("", handlers.ListTemplates)
			templates.POST("", handlers.CreateTemplate)
			templates.GET("/:id", handlers.GetTemplate)
			templates.PUT("/:id", handlers.UpdateTemplate)
			templates.DELETE("/:id", handlers.DeleteTemplate)
		}

		polls := api.Group("/polls", middleware.AuthMiddleware())
		{
			// Static route first so it doesn't collide with /:id
			polls.POST("/vote", handlers.Vote)
			polls.DELETE("/vote", handlers.Unvote)

			polls.GET("", handlers.ListPolls)
			polls.POST("", handlers.CreatePoll)
			polls.GET("/:id", handlers.GetPoll)
			polls.PUT("/:id", handlers.UpdatePoll)
			polls.DELETE("/:id", middleware.AdminMiddleware(), handlers.DeletePoll)

			polls.POST("/:id/options", handlers.CreatePollOption)
			polls.DELETE("/:id/options/:option_id", handlers.DeletePollOption)
		}

		users := api.Group("/users", middleware.AuthMiddleware())
		{
			users.GET("", handlers.ListMembers)
			users.GET("/me/stats", handlers.MyStats)
		}

		admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminMiddleware())
		{
			admin.GET("/users", handlers.ListUsers)
			admin.DELETE("/users/:id", handlers.DeleteUser)
		}

		export := api.Group("/export", middleware.AuthMiddleware())
		{
			export.GET("/workouts-txt", handlers.ExportWorkoutsTxt)
		}
	}

	return r
}
