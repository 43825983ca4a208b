package transport

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/epicerie-solidaire/booking-core/internal/service"
)

type SlotHandler struct {
	catalog *service.CatalogService
}

func NewSlotHandler(catalog *service.CatalogService) *SlotHandler {
	return &SlotHandler{catalog: catalog}
}

type createBlockRequest struct {
	StartsAt         time.Time `json:"starts_at" binding:"required"`
	EndsAt           time.Time `json:"ends_at" binding:"required"`
	IntervalMinutes  int       `json:"interval_minutes" binding:"min=0,max=1440"`
	IntervalCapacity int       `json:"interval_capacity" binding:"min=0,max=100"`
}

func (h *SlotHandler) CreateBlock(c *gin.Context) {
	var req createBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	block, err := h.catalog.CreateBlock(c.Request.Context(), service.CreateBlockInput{
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
		IntervalMinutes:  req.IntervalMinutes,
		IntervalCapacity: req.IntervalCapacity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, block)
}

func (h *SlotHandler) GenerateIntervals(c *gin.Context) {
	intervals, err := h.catalog.GenerateIntervals(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"count":     len(intervals),
		"intervals": intervals,
	})
}

func (h *SlotHandler) ListBlocks(c *gin.Context) {
	limit, offset := pageParams(c)

	blocks, total, err := h.catalog.ListBlocks(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": blocks, "total": total})
}

func (h *SlotHandler) DeleteBlock(c *gin.Context) {
	if err := h.catalog.DeleteBlock(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "slot block deleted"})
}

// ListAvailability отдаёт активные интервалы на день с остатком мест —
// то, из чего клиент рисует сетку доступности.
func (h *SlotHandler) ListAvailability(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date query parameter is required"})
		return
	}

	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "date must be in YYYY-MM-DD format"})
		return
	}

	intervals, err := h.catalog.ListAvailability(c.Request.Context(), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, intervals)
}

func pageParams(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return size, (page - 1) * size
}
