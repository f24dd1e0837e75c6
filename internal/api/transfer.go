package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cinderledger/cinder/internal/ledger"
	"github.com/cinderledger/cinder/internal/record"
)

// TransferHandler accepts signed transfer submissions and runs them through
// the ledger's admission protocol.
type TransferHandler struct {
	ledger *ledger.Ledger
	logger *zap.Logger
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(l *ledger.Ledger, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{ledger: l, logger: logger}
}

// Register mounts the transfer routes on the given router group.
func (h *TransferHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/transfers", h.Submit)
}

// transferRequest is the submission payload. Payer must be the signer's
// SPKI PEM identity; Signature is the base64-encoded RSA signature over the
// record's canonical serialization.
type transferRequest struct {
	Amount    int64  `json:"amount"`
	Payer     string `json:"payer" binding:"required"`
	Payee     string `json:"payee" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// Submit handles POST /transfers.
//
// Responses: 201 with the appended entry on acceptance, 422 on signature
// mismatch, 400 on undecodable payload or payer identity.
func (h *TransferHandler) Submit(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sig, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature must be base64"})
		return
	}

	rec := record.New(req.Amount, req.Payer, req.Payee)

	start := time.Now()
	res, err := h.ledger.Admit(c.Request.Context(), rec, req.Payer, sig)
	if err != nil {
		if errors.Is(err, ledger.ErrMalformedIdentity) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("admission failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "admission failed"})
		return
	}

	RecordAdmission(string(res.Status), time.Since(start))

	if res.Status != ledger.StatusAccepted {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"status": res.Status})
		return
	}

	SetChainHeight(float64(h.ledger.Len()))
	c.JSON(http.StatusCreated, gin.H{
		"status":      res.Status,
		"fingerprint": res.Entry.Fingerprint(),
		"solution":    res.Solution,
		"entry":       res.Entry,
	})
}
