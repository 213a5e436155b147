package httpinterface

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handler) signalIntent(c *gin.Context) {
	var req signalIntentRequest
	if !bindJSON(c, &req) {
		return
	}

	intent, err := h.EscrowSvc.SignalIntent(
		c.Request.Context(), caller(c), req.DepositID, req.Amount,
		req.Recipient, req.Verifier,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newIntentInfo(intent))
}

func (h *handler) cancelIntent(c *gin.Context) {
	intent, err := h.EscrowSvc.CancelIntent(
		c.Request.Context(), caller(c), c.Param("id"),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newIntentInfo(intent))
}

func (h *handler) pruneIntent(c *gin.Context) {
	id := c.Param("id")
	if err := h.EscrowSvc.PruneExpiredIntent(
		c.Request.Context(), caller(c), id,
	); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pruned": []string{id}})
}

func (h *handler) pruneIntents(c *gin.Context) {
	ids, err := h.EscrowSvc.PruneExpiredIntents(c.Request.Context(), caller(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pruned": ids})
}

func (h *handler) fulfillIntent(c *gin.Context) {
	var req proofRequest
	if !bindJSON(c, &req) {
		return
	}
	bundle, err := req.Proof.parse()
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: proof %s", errInvalidParam, err))
		return
	}

	intent, err := h.EscrowSvc.FulfillIntent(
		c.Request.Context(), caller(c), c.Param("id"), bundle,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newIntentInfo(intent))
}

func (h *handler) releaseIntent(c *gin.Context) {
	intent, err := h.EscrowSvc.ReleaseFundsToTaker(
		c.Request.Context(), caller(c), c.Param("id"),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newIntentInfo(intent))
}

func (h *handler) getIntent(c *gin.Context) {
	intent, err := h.EscrowSvc.GetIntent(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newIntentInfo(intent))
}

func (h *handler) listIntents(c *gin.Context) {
	depositID, ok := uintQuery(c, "deposit_id")
	if !ok {
		return
	}
	page, ok := pageQuery(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if c.Query("expired") == "true" {
		intents, err := h.EscrowSvc.ListExpiredIntents(ctx)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"intents": newIntentInfoList(intents)})
		return
	}

	intents, err := h.EscrowSvc.ListIntents(ctx, depositID, c.Query("taker"), page)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"intents": newIntentInfoList(intents)})
}
