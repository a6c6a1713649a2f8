package config

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// APIServer exposes the saved extraction options and the export history over
// HTTP, so a script running inside the page can share the CLI's preferences.
type APIServer struct {
	store *Store
}

// NewAPIServer creates a new config API server.
func NewAPIServer(store *Store) *APIServer {
	return &APIServer{
		store: store,
	}
}

// Register adds the config routes to the given group.
func (c *APIServer) Register(api *gin.RouterGroup) {
	api.GET("/options", c.HandleGetOptions)
	api.PUT("/options", c.HandleUpdateOptions)
	api.GET("/exports", c.HandleListExports)
}

// optionsUpdate carries a partial update; absent fields keep their saved
// value.
type optionsUpdate struct {
	ScrollToLoadMore    *bool `json:"scrollToLoadMore"`
	IncludeThumbnails   *bool `json:"includeThumbnails"`
	IncludeDescriptions *bool `json:"includeDescriptions"`
	IncludeViewCounts   *bool `json:"includeViewCounts"`
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// HandleGetOptions handles GET /options.
func (c *APIServer) HandleGetOptions(ctx *gin.Context) {
	opts, err := c.store.GetOptions()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to retrieve options"))
		return
	}

	ctx.JSON(http.StatusOK, opts)
}

// HandleUpdateOptions handles PUT /options.
func (c *APIServer) HandleUpdateOptions(ctx *gin.Context) {
	var updates optionsUpdate
	if err := ctx.ShouldBindJSON(&updates); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	opts, err := c.store.GetOptions()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to retrieve options"))
		return
	}

	if updates.ScrollToLoadMore != nil {
		opts.ScrollToLoadMore = *updates.ScrollToLoadMore
	}
	if updates.IncludeThumbnails != nil {
		opts.IncludeThumbnails = *updates.IncludeThumbnails
	}
	if updates.IncludeDescriptions != nil {
		opts.IncludeDescriptions = *updates.IncludeDescriptions
	}
	if updates.IncludeViewCounts != nil {
		opts.IncludeViewCounts = *updates.IncludeViewCounts
	}

	if err := c.store.SaveOptions(opts); err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to update options"))
		return
	}

	ctx.JSON(http.StatusOK, opts)
}

// HandleListExports handles GET /exports.
func (c *APIServer) HandleListExports(ctx *gin.Context) {
	limit := 20
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			ctx.JSON(http.StatusBadRequest, errorResponse("validation_error", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	exports, err := c.store.ListExports(limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to list exports"))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"exports": exports, "total": len(exports)})
}
