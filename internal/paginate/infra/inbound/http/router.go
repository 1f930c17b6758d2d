package http

import "github.com/gin-gonic/gin"

func RegisterPaginateRoutes(r *gin.Engine, handler *PaginateHandler) {
	r.GET("/health", handler.Health)

	collections := r.Group("/collections")
	{
		collections.GET("", handler.ListCollections)
		collections.GET("/:name", handler.Paginate)
	}

	if handler.usage != nil {
		r.GET("/stats/usage", handler.Usage)
	}
}
