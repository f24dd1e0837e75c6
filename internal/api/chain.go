package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cinderledger/cinder/internal/ledger"
)

// ChainHandler exposes read-only HTTP endpoints for the chain.
type ChainHandler struct {
	ledger *ledger.Ledger
	logger *zap.Logger
}

// NewChainHandler creates a new ChainHandler.
func NewChainHandler(l *ledger.Ledger, logger *zap.Logger) *ChainHandler {
	return &ChainHandler{ledger: l, logger: logger}
}

// Register mounts the chain routes on the given router group.
func (h *ChainHandler) Register(rg *gin.RouterGroup) {
	c := rg.Group("/chain")
	{
		c.GET("", h.Overview)
		c.GET("/head", h.Head)
		c.GET("/entries", h.ListEntries)
		c.GET("/entries/:idx", h.GetEntry)
		c.GET("/verify", h.Verify)
	}
}

// entryView is the JSON shape of one entry, with its derived fingerprint
// made explicit.
type entryView struct {
	Index       int           `json:"index"`
	Fingerprint string        `json:"fingerprint"`
	Entry       *ledger.Entry `json:"entry"`
}

// Overview handles GET /chain — chain height and head fingerprint.
func (h *ChainHandler) Overview(c *gin.Context) {
	head := h.ledger.Last()
	c.JSON(http.StatusOK, gin.H{
		"height":        h.ledger.Len(),
		"head":          head.Fingerprint(),
		"target_prefix": h.ledger.TargetPrefix(),
	})
}

// Head handles GET /chain/head — the most recently appended entry.
func (h *ChainHandler) Head(c *gin.Context) {
	head := h.ledger.Last()
	c.JSON(http.StatusOK, entryView{
		Index:       h.ledger.Len() - 1,
		Fingerprint: head.Fingerprint(),
		Entry:       head,
	})
}

// ListEntries handles GET /chain/entries — the full chain, genesis first.
func (h *ChainHandler) ListEntries(c *gin.Context) {
	entries := h.ledger.Entries()
	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = entryView{Index: i, Fingerprint: e.Fingerprint(), Entry: e}
	}
	c.JSON(http.StatusOK, gin.H{"entries": views})
}

// GetEntry handles GET /chain/entries/:idx — a single entry by index.
func (h *ChainHandler) GetEntry(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil || idx < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idx must be a non-negative integer"})
		return
	}

	entry, err := h.ledger.Get(idx)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
		return
	}
	c.JSON(http.StatusOK, entryView{Index: idx, Fingerprint: entry.Fingerprint(), Entry: entry})
}

// Verify handles GET /chain/verify — walks the chain and reports integrity.
func (h *ChainHandler) Verify(c *gin.Context) {
	if err := h.ledger.Verify(); err != nil {
		h.logger.Warn("chain integrity check failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}
