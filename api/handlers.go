package api

import (
	"net/http"

	relayerrors "github.com/atomicport/relay-lib/common/errors"
	"github.com/atomicport/relay-lib/common/types"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// signatureRequest is the body of the execute endpoint.
type signatureRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// revealRequest is the body of the reveal endpoint.
type revealRequest struct {
	Secret string `json:"secret" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"chains": s.relayer.SupportedChains(),
	})
}

func (s *Server) handleChains(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chains": s.relayer.SupportedChains()})
}

func (s *Server) handleBuildOrder(c *gin.Context) {
	var intent types.UserIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := s.relayer.BuildSwap(c.Request.Context(), &intent)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleListOrders(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user query parameter"})
		return
	}

	orders, err := s.relayer.GetOrdersFor(c.Request.Context(), user)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) handleGetOrder(c *gin.Context) {
	order, err := s.relayer.GetOrder(c.Request.Context(), c.Param("hash"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (s *Server) handleExecute(c *gin.Context) {
	var req signatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.relayer.SubmitSignatureAndExecute(c.Request.Context(), c.Param("hash"), req.Signature); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"orderHash": c.Param("hash"), "status": "executing"})
}

func (s *Server) handleReveal(c *gin.Context) {
	var req revealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.relayer.Reveal(c.Request.Context(), c.Param("hash"), req.Secret); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"orderHash": c.Param("hash"), "status": "withdrawing"})
}

func (s *Server) handleCancel(c *gin.Context) {
	if err := s.relayer.CancelSwap(c.Request.Context(), c.Param("hash")); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orderHash": c.Param("hash"), "status": "cancelled"})
}

// respondError maps the relay error taxonomy onto HTTP status codes.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, relayerrors.ErrOrderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, relayerrors.ErrValidation),
		errors.Is(err, relayerrors.ErrInvalidSecret),
		errors.Is(err, relayerrors.ErrUnsupportedChain),
		errors.Is(err, relayerrors.ErrInvalidTimeLocks):
		status = http.StatusBadRequest
	case errors.Is(err, relayerrors.ErrEscrowNotDeployed),
		errors.Is(err, relayerrors.ErrWithdrawalNotOpen),
		errors.Is(err, relayerrors.ErrCancellationNotOpen):
		status = http.StatusConflict
	case errors.Is(err, relayerrors.ErrDuplicateOrder):
		status = http.StatusConflict
	case errors.Is(err, relayerrors.ErrChainUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.WithField("error", err).Error("Request failed")
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
