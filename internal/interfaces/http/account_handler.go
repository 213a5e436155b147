package httpinterface

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

func (h *handler) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	bundle, err := req.Proof.parse()
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: proof %s", errInvalidParam, err))
		return
	}

	account, err := h.AccountSvc.Register(
		c.Request.Context(), caller(c), req.Verifier, bundle,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountInfo(account))
}

func (h *handler) getAccount(c *gin.Context) {
	account, err := h.AccountSvc.GetAccount(
		c.Request.Context(), c.Param("address"),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountInfo(account))
}

func (h *handler) findAccount(c *gin.Context) {
	idHash := c.Query("id_hash")
	if idHash == "" {
		abortWithError(c, fmt.Errorf("%w: missing id_hash", errInvalidParam))
		return
	}
	account, err := h.AccountSvc.GetAccountByIDHash(c.Request.Context(), idHash)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountInfo(account))
}

type listUpdateFn func(
	ctx context.Context, caller, idHash string,
) (*domain.Account, error)

func (h *handler) updateList(c *gin.Context, updateFn listUpdateFn) {
	account, err := updateFn(c.Request.Context(), caller(c), c.Param("idHash"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountInfo(account))
}

func (h *handler) deny(c *gin.Context) {
	h.updateList(c, h.AccountSvc.AddToDenylist)
}

func (h *handler) undeny(c *gin.Context) {
	h.updateList(c, h.AccountSvc.RemoveFromDenylist)
}

func (h *handler) allow(c *gin.Context) {
	h.updateList(c, h.AccountSvc.AddToAllowlist)
}

func (h *handler) disallow(c *gin.Context) {
	h.updateList(c, h.AccountSvc.RemoveFromAllowlist)
}

func (h *handler) setAllowlistEnabled(c *gin.Context) {
	var req allowlistRequest
	if !bindJSON(c, &req) {
		return
	}
	account, err := h.AccountSvc.SetAllowlistEnabled(
		c.Request.Context(), caller(c), req.Enabled,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountInfo(account))
}
