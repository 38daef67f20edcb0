package handlers

import (
	"dating-app/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Match   *MatchHandler
	Message *MessageHandler
}

// SetupRoutes mounts the API under /api. Registration, login and the plain
// member listing are public.
func SetupRoutes(router *gin.Engine, h Handlers, jwtSecret string) {
	api := router.Group("/api")
	auth := middleware.AuthRequired(jwtSecret)

	account := api.Group("/account")
	{
		account.POST("/register", h.Auth.Register)
		account.POST("/login", h.Auth.Login)
	}

	api.GET("/members", h.User.GetMembers)
	members := api.Group("/members")
	members.Use(auth)
	{
		members.GET("/:id", h.User.GetMember)
		members.PUT("", h.User.UpdateProfile)
		members.POST("/add-photo", h.User.AddPhoto)
		members.PUT("/set-main-photo/:photoId", h.User.SetMainPhoto)
		members.DELETE("/delete-photo/:photoId", h.User.DeletePhoto)
	}

	likes := api.Group("/likes")
	likes.Use(auth)
	{
		likes.POST("/:likedUserId", h.Match.ToggleLike)
		likes.GET("", h.Match.GetLikes)
		likes.GET("/list", h.Match.GetLikedIDs)
	}

	messages := api.Group("/messages")
	messages.Use(auth)
	{
		messages.POST("", h.Message.SendMessage)
		messages.GET("", h.Message.GetMessages)
		messages.GET("/thread/:userId", h.Message.GetThread)
		messages.DELETE("/:id", h.Message.DeleteMessage)
	}
}
