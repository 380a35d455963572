package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/gov-comb/app/feed"
	"github.com/lysyi3m/gov-comb/app/kst"
)

const (
	contentTypeMarkdown = "text/markdown; charset=utf-8"
	contentTypeJSON     = "application/json; charset=utf-8"
)

func NewHandler(builder DigestBuilder, version string) *Handler {
	return &Handler{
		builder:   builder,
		generator: feed.NewGenerator(),
		version:   version,
	}
}

// GetDailyDigest renders the digest for ?from=YYYY-MM-DD&to=YYYY-MM-DD as a markdown
// table, or as JSON with ?format=json.
func (h *Handler) GetDailyDigest(c *gin.Context) {
	window, err := h.builder.Resolver().Window(c.Query("from"), c.Query("to"))
	if err != nil {
		c.String(windowErrorStatus(err), err.Error())
		return
	}

	entries, _, err := h.builder.Build(c.Request.Context(), window)
	if err != nil {
		slog.Error("Digest build failed", "request_id", c.GetString(requestIDKey), "error", err)
		c.String(http.StatusInternalServerError, "수집 실패: "+err.Error())
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("X-Digest-Items", strconv.Itoa(len(entries)))

	if c.Query("format") == "json" {
		data, err := h.generator.JSON(entries)
		if err != nil {
			slog.Error("Digest encoding failed", "request_id", c.GetString(requestIDKey), "error", err)
			c.String(http.StatusInternalServerError, "수집 실패: "+err.Error())
			return
		}
		c.Data(http.StatusOK, contentTypeJSON, data)
		return
	}

	c.Data(http.StatusOK, contentTypeMarkdown, []byte(h.generator.Markdown(entries)))
}

// GetStatus reports the registry size and the default window without fetching anything.
func (h *Handler) GetStatus(c *gin.Context) {
	window, err := h.builder.Resolver().Window("", "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Message:    "ok",
		FeedsCount: len(h.builder.Registry().EnabledSources()),
		Window:     windowResponse(window),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": h.builder.Resolver().Now().Format(time.RFC3339),
		"sources":   len(h.builder.Registry().Sources),
	})
}

func (h *Handler) APIListSources(c *gin.Context) {
	registry := h.builder.Registry()

	c.JSON(http.StatusOK, gin.H{
		"official_domains": registry.OfficialDomains,
		"portal_domains":   registry.PortalDomains,
		"sources":          registry.Sources,
		"total":            len(registry.Sources),
		"enabled":          len(registry.EnabledSources()),
	})
}

// APIGetDigestStats builds the digest for the requested window and returns per-source
// counts instead of the entries.
func (h *Handler) APIGetDigestStats(c *gin.Context) {
	window, err := h.builder.Resolver().Window(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(windowErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	_, stats, err := h.builder.Build(c.Request.Context(), window)
	if err != nil {
		slog.Error("Digest build failed", "request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "수집 실패", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"window": windowResponse(window),
		"stats":  stats,
	})
}

func windowErrorStatus(err error) int {
	if errors.Is(err, kst.ErrInvalidDateFormat) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func windowResponse(w kst.Window) WindowResponse {
	return WindowResponse{
		From: w.Start.Format(time.RFC3339),
		To:   w.End.Format(time.RFC3339),
	}
}
