package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NewRouter builds the gin engine with request ids, permissive CORS and the
// proxy routes mounted.
func NewRouter(p *ProxyHandler) *gin.Engine {
	router := gin.Default()
	router.MaxMultipartMemory = p.MaxUploadBytes

	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.NewString()
	})))
	// Allow CORS for all origins
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With", "X-OS-Version", "X-Request-ID"},
		ExposeHeaders:   []string{"Content-Length", "X-Request-ID"},
	}))

	router.GET("/", p.Status)
	router.POST("/sendMessage", p.SendMessage)
	router.POST("/sendPhoto", p.SendPhoto)

	return router
}
