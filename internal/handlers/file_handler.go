package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/auroradesk/aurora/internal/domains/files"
	"github.com/auroradesk/aurora/pkg/Logger"
)

// FileHandler handles file search and organization HTTP requests
type FileHandler struct {
	controller *files.Controller
	logger     *Logger.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(controller *files.Controller, logger *Logger.Logger) *FileHandler {
	return &FileHandler{
		controller: controller,
		logger:     logger,
	}
}

// Search handles file searches
// @Summary Search files
// @Description Search files by name or content under a directory
// @Tags Files
// @Accept json
// @Produce json
// @Param request body FileSearchRequest true "Search criteria"
// @Success 200 {object} FileSearchResponse "Ranked matches"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 500 {object} ErrorResponse "Search failed"
// @Router /files/search [post]
func (h *FileHandler) Search(c *gin.Context) {
	var req FileSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	results, err := h.controller.Search(c.Request.Context(), req.Query, files.SearchOptions{
		Directory:     req.Directory,
		FileTypes:     req.FileTypes,
		ContentSearch: req.ContentSearch,
	})
	if err != nil {
		h.logger.Errorf("file search failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "File search failed", Details: err.Error()})
		return
	}

	searchType := "filename"
	if req.ContentSearch {
		searchType = "content"
	}
	c.JSON(http.StatusOK, FileSearchResponse{
		Query:      req.Query,
		Results:    results,
		TotalCount: len(results),
		SearchType: searchType,
	})
}

// Organize handles directory organization
// @Summary Organize a directory
// @Description Move files into category subdirectories by type, date, or size
// @Tags Files
// @Accept json
// @Produce json
// @Param request body OrganizeFilesRequest true "Directory and strategy"
// @Success 200 {object} files.OrganizeResult "Organization summary"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 404 {object} ErrorResponse "Directory not found"
// @Failure 500 {object} ErrorResponse "Organization failed"
// @Router /files/organize [post]
func (h *FileHandler) Organize(c *gin.Context) {
	var req OrganizeFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	result, err := h.controller.Organize(c.Request.Context(), req.Directory, req.Strategy)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Directory not found", Details: err.Error()})
			return
		}
		h.logger.Errorf("file organization failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "File organization failed", Details: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Recent handles recent-file queries
// @Summary List recent files
// @Description Files the gateway touched recently, newest first
// @Tags Files
// @Produce json
// @Param limit query int false "Maximum entries" default(20)
// @Param type query string false "Filter by extension"
// @Success 200 {object} RecentFilesResponse "Recent files"
// @Router /files/recent [get]
func (h *FileHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	c.JSON(http.StatusOK, RecentFilesResponse{
		RecentFiles: h.controller.Recent(limit, c.Query("type")),
	})
}
