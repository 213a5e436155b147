package httpinterface

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *handler) createDeposit(c *gin.Context) {
	var req createDepositRequest
	if !bindJSON(c, &req) {
		return
	}
	rates, err := parseRates(req.Rates)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: %s", errInvalidParam, err))
		return
	}

	deposit, err := h.EscrowSvc.CreateDeposit(
		c.Request.Context(), caller(c), req.Token, req.Amount, rates, req.Verifiers,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newDepositInfo(deposit))
}

func (h *handler) increaseDeposit(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req amountRequest
	if !bindJSON(c, &req) {
		return
	}

	deposit, err := h.EscrowSvc.IncreaseDeposit(
		c.Request.Context(), caller(c), id, req.Amount,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDepositInfo(deposit))
}

func (h *handler) withdrawDeposit(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req withdrawRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	amount, err := h.EscrowSvc.WithdrawDeposit(
		c.Request.Context(), caller(c), id, req.AllowPending,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposit_id": id, "withdrawn_amount": amount})
}

func (h *handler) setConversionRate(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req rateRequest
	if !bindJSON(c, &req) {
		return
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: rate", errInvalidParam))
		return
	}

	deposit, err := h.EscrowSvc.SetConversionRate(
		c.Request.Context(), caller(c), id,
		strings.ToUpper(c.Param("currency")), rate,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDepositInfo(deposit))
}

func (h *handler) getDeposit(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	info, err := h.EscrowSvc.GetDeposit(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDepositInfoWithLiquidity(info))
}

func (h *handler) getLiquidity(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	available, err := h.EscrowSvc.GetAvailableLiquidity(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposit_id": id, "available_liquidity": available})
}

func (h *handler) listDeposits(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	infos, err := h.EscrowSvc.ListDeposits(
		c.Request.Context(), c.Query("depositor"), page,
	)
	if err != nil {
		abortWithError(c, err)
		return
	}

	list := make([]depositInfo, 0, len(infos))
	for _, info := range infos {
		list = append(list, newDepositInfoWithLiquidity(info))
	}
	c.JSON(http.StatusOK, gin.H{"deposits": list})
}

func (h *handler) getBalances(c *gin.Context) {
	balances, err := h.EscrowSvc.GetBalances(
		c.Request.Context(), c.Param("address"),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}

	list := make([]balanceInfo, 0, len(balances))
	for _, b := range balances {
		list = append(list, balanceInfo{b.Token, b.Amount})
	}
	c.JSON(http.StatusOK, gin.H{
		"address":  c.Param("address"),
		"balances": list,
	})
}
