package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/calabriando/api/docs"
	"github.com/calabriando/api/internal/config"
	"github.com/calabriando/api/internal/middleware"
	"github.com/calabriando/api/internal/modules/handler"
	"github.com/calabriando/api/internal/modules/serializer"
	"github.com/calabriando/api/internal/telemetry"
	"github.com/supabase-community/auth-go"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config            *config.Config
	Log               *zap.Logger
	Auth              auth.Client
	AuthHandler       *handler.AuthHandler
	ContentHandler    *handler.ContentHandler
	MediaHandler      *handler.MediaHandler
	GastronomyHandler *handler.GastronomyHandler
	BookingHandler    *handler.BookingHandler
	PublicHandler     *handler.PublicHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	// Initialize logger for serializer package
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(telemetry.GinMiddleware(d.Config.App.Name))
		// Add trace ID to response header
		r.Use(telemetry.TraceIDMiddleware())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", d.AuthHandler.Login)
			authGroup.POST("/refresh", d.AuthHandler.Refresh)
			authGroup.POST("/logout", d.AuthHandler.Logout)
		}

		public := v1.Group("/public")
		{
			public.GET("/home", d.PublicHandler.Home)
			public.GET("/gastronomy", d.PublicHandler.Gastronomy)
			public.GET("/:category", d.PublicHandler.List)
			public.GET("/:category/:id/availability", d.PublicHandler.Availability)
		}

		bookings := v1.Group("/bookings")
		{
			bookings.POST("", d.BookingHandler.Create)
			bookings.GET("/:reference", d.BookingHandler.Get)
			bookings.GET("/:reference/confirmation", d.BookingHandler.ConfirmationPDF)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/checkout/:reference", d.BookingHandler.StartCheckout)
			payments.POST("/checkout/:reference/settle", d.BookingHandler.SettleCheckout)
			payments.POST("/wallet/:reference", d.BookingHandler.StartWalletOrder)
			payments.POST("/wallet/capture", middleware.WebhookAuth(d.Config), d.BookingHandler.CaptureWalletOrder)
		}

		admin := v1.Group("/admin")
		{
			admin.Use(middleware.AdminAuth(d.Auth))

			admin.GET("/categories", d.ContentHandler.ListCategories)
			admin.GET("/bookings/:entity_id", d.BookingHandler.ListByEntity)

			content := admin.Group("/content/:category")
			{
				content.GET("", d.ContentHandler.ListEntities)
				content.GET("/template", d.ContentHandler.NewTemplate)
				content.GET("/:id", d.ContentHandler.GetEntity)
				content.POST("", d.ContentHandler.SaveEntity)
				content.DELETE("/:id", d.ContentHandler.DeleteEntity)
				content.POST("/:id/reorder", d.ContentHandler.Reorder)
				content.POST("/:id/slots", d.ContentHandler.AddSlot)
				content.DELETE("/:id/slots/:date", d.ContentHandler.RemoveSlot)

				content.POST("/images", d.MediaHandler.UploadDraftImage)
				content.POST("/:id/images", d.MediaHandler.UploadImage)
				content.DELETE("/:id/images", d.MediaHandler.RemoveImage)
			}

			gastronomy := admin.Group("/gastronomy")
			{
				gastronomy.GET("", d.GastronomyHandler.ListCategories)
				gastronomy.POST("", d.GastronomyHandler.SaveCategory)
				gastronomy.DELETE("/:id", d.GastronomyHandler.DeleteCategory)
				gastronomy.POST("/:id/dishes/:locale", d.GastronomyHandler.UpsertDish)
				gastronomy.DELETE("/:id/dishes/:locale/:dish_id", d.GastronomyHandler.RemoveDish)
			}
		}
	}

	return r
}
