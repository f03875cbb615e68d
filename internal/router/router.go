package router

import (
	"github.com/gin-gonic/gin"

	"github.com/shopit-dev/shopit-backend/config"
	"github.com/shopit-dev/shopit-backend/internal/app/controller"
	"github.com/shopit-dev/shopit-backend/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	productController *controller.ProductController
	uploadController  *controller.UploadController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		productController: productController,
		uploadController:  uploadController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "ShopIT API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/register", r.authController.Register)
		v1.POST("/login", r.authController.Login)
		v1.GET("/logout", r.authController.Logout)

		v1.POST("/password/forgot", r.authController.ForgotPassword)
		v1.PUT("/password/reset/:token", r.authController.ResetPassword)

		me := v1.Group("")
		me.Use(r.authMiddleware.Authenticate())
		{
			me.GET("/me", r.authController.GetMe)
			me.PUT("/me", r.authController.UpdateMe)
			me.PUT("/password/update", r.authController.UpdatePassword)
			me.POST("/me/avatar/upload-url", r.uploadController.GetAvatarUploadURL)
			me.PUT("/me/avatar", r.uploadController.ConfirmAvatar)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProduct)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole("admin"))
		{
			admin.POST("/products", r.productController.CreateProduct)
			admin.PUT("/products/:id", r.productController.UpdateProduct)
			admin.DELETE("/products/:id", r.productController.DeleteProduct)

			admin.GET("/users", r.authController.ListUsers)
			admin.GET("/users/:id", r.authController.GetUser)
			admin.PUT("/users/:id", r.authController.UpdateUser)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
