package httpinterface

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

func (h *handler) getParams(c *gin.Context) {
	c.JSON(http.StatusOK, newParamsInfo(h.AdminSvc.GetParams(c.Request.Context())))
}

func (h *handler) updateParams(c *gin.Context) {
	var req updateParamsRequest
	if !bindJSON(c, &req) {
		return
	}

	params, err := h.AdminSvc.UpdateParams(
		c.Request.Context(), caller(c), func(p *domain.Params) { req.apply(p) },
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newParamsInfo(params))
}

func (h *handler) fund(c *gin.Context) {
	var req fundRequest
	if !bindJSON(c, &req) {
		return
	}

	balance, err := h.AdminSvc.Fund(
		c.Request.Context(), caller(c), req.To, req.Token, req.Amount,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address": balance.Owner,
		"balance": balanceInfo{balance.Token, balance.Amount},
	})
}

func (h *handler) listProcessors(c *gin.Context) {
	processors, err := h.AdminSvc.ListProcessors(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	list := make([]processorInfo, 0, len(processors))
	for _, p := range processors {
		list = append(list, processorInfo{
			ID:              p.ID,
			KeyHashes:       p.KeyHashes,
			SenderAddress:   p.SenderAddress,
			TimestampBuffer: p.TimestampBuffer,
		})
	}
	c.JSON(http.StatusOK, gin.H{"processors": list})
}

func (h *handler) addKeyHash(c *gin.Context) {
	if err := h.AdminSvc.AddKeyHash(
		c.Request.Context(), caller(c), c.Param("id"), c.Param("hash"),
	); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) removeKeyHash(c *gin.Context) {
	if err := h.AdminSvc.RemoveKeyHash(
		c.Request.Context(), caller(c), c.Param("id"), c.Param("hash"),
	); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) setSenderAddress(c *gin.Context) {
	var req senderRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.AdminSvc.SetSenderAddress(
		c.Request.Context(), caller(c), c.Param("id"), req.Sender,
	); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) setTimestampBuffer(c *gin.Context) {
	var req bufferRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.AdminSvc.SetTimestampBuffer(
		c.Request.Context(), caller(c), c.Param("id"), req.Buffer,
	); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listNullifierWriters(c *gin.Context) {
	writers, err := h.AdminSvc.ListNullifierWriters(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"writers": writers})
}

func (h *handler) addNullifierWriter(c *gin.Context) {
	if err := h.AdminSvc.AddNullifierWriter(
		c.Request.Context(), caller(c), c.Param("id"),
	); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) removeNullifierWriter(c *gin.Context) {
	if err := h.AdminSvc.RemoveNullifierWriter(
		c.Request.Context(), caller(c), c.Param("id"),
	); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) addWebhook(c *gin.Context) {
	if h.WebhookSvc == nil {
		abortWithError(c, errWebhookDisabled)
		return
	}
	var req webhookRequest
	if !bindJSON(c, &req) {
		return
	}

	sub, err := h.WebhookSvc.Subscribe(req.Topic, req.Endpoint, req.Secret)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": sub.ID})
}

func (h *handler) removeWebhook(c *gin.Context) {
	if h.WebhookSvc == nil {
		abortWithError(c, errWebhookDisabled)
		return
	}
	if err := h.WebhookSvc.Unsubscribe(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listWebhooks(c *gin.Context) {
	if h.WebhookSvc == nil {
		abortWithError(c, errWebhookDisabled)
		return
	}
	subs, err := h.WebhookSvc.ListSubscriptions(c.Query("topic"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	list := make([]gin.H, 0, len(subs))
	for _, s := range subs {
		list = append(list, gin.H{
			"id":       s.ID,
			"topic":    s.Topic,
			"endpoint": s.Endpoint,
			"secret":   s.Secret,
		})
	}
	c.JSON(http.StatusOK, gin.H{"webhooks": list})
}
