package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"catalogfeed/internal/feed"
	"catalogfeed/internal/logger"
	"catalogfeed/internal/models"
	"catalogfeed/internal/services/graph"
	"catalogfeed/internal/stores"

	"github.com/gin-gonic/gin"
)

type FeedPublisher interface {
	Publish(ctx context.Context, scope stores.Scope) (*feed.Run, error)
}

type RunLister interface {
	List(ctx context.Context, scope stores.Scope, limit int) ([]models.PublishRun, error)
}

type DeleteNotifier interface {
	ProductDeleted(ctx context.Context, scope stores.Scope, productID string) (*graph.BatchResult, error)
}

type FeedHandler struct {
	registry  *stores.Registry
	publisher FeedPublisher
	runs      RunLister
	notifier  DeleteNotifier
	logger    *logger.Logger
}

func NewFeedHandler(registry *stores.Registry, publisher FeedPublisher, runs RunLister, notifier DeleteNotifier, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		registry:  registry,
		publisher: publisher,
		runs:      runs,
		notifier:  notifier,
		logger:    logger,
	}
}

// Publish regenerates and uploads the feed of the store given by ?store=.
func (h *FeedHandler) Publish(c *gin.Context) {
	scope := stores.Scope(c.Query("store"))

	run, err := h.publisher.Publish(c.Request.Context(), scope)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "data": runView(run)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runView(run)})
}

func (h *FeedHandler) Runs(c *gin.Context) {
	store, err := h.registry.Resolve(stores.Scope(c.Query("store")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	scope := stores.Scope(store.ID)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.runs.List(c.Request.Context(), scope, limit)
	if err != nil {
		h.logger.Error("Failed to fetch publish runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch publish runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs})
}

// ProductDeleted tells the store's catalogue that a product is gone.
func (h *FeedHandler) ProductDeleted(c *gin.Context) {
	store, err := h.registry.Resolve(stores.Scope(c.Query("store")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	scope := stores.Scope(store.ID)

	res, err := h.notifier.ProductDeleted(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *FeedHandler) Stores(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":    h.registry.All(),
		"default": h.registry.Default().ID,
	})
}

func statusFor(err error) int {
	var apiErr *graph.APIError
	switch {
	case errors.Is(err, stores.ErrUnknownStore):
		return http.StatusNotFound
	case errors.Is(err, feed.ErrNoFeedIdentity):
		return http.StatusConflict
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func runView(run *feed.Run) gin.H {
	if run == nil {
		return nil
	}
	view := gin.H{
		"id":            run.ID,
		"store":         run.Scope,
		"stage":         run.Stage,
		"feed_id":       run.Identity.ID,
		"feed_created":  run.Identity.Created,
		"feed_ready":    run.Identity.Ready,
		"poll_attempts": run.Identity.PollAttempts,
		"artifact_path": run.ArtifactPath,
		"row_count":     run.RowCount,
		"started_at":    run.StartedAt.Format(time.RFC3339),
		"finished_at":   run.FinishedAt.Format(time.RFC3339),
	}
	if run.Upload != nil {
		view["upload_session_id"] = run.Upload.ID
	}
	return view
}
