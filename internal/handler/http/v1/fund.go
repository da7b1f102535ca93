package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// @Summary Reward balance
// @Description Tokens credited to an actor for verified reports.
// @Tags Rewards
// @Produce json
// @Param actor path string true "Actor"
// @Success 200 {object} BalanceResponse
// @Failure 400 {object} map[string]string "Invalid actor"
// @Router /balances/{actor} [get]
func (h *Handler) getBalance(c *gin.Context) {
	log := h.logger.WithField("method", "getBalance")
	balance, err := h.rewardService.BalanceOf(c.Request.Context(), c.Param("actor"))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToBalanceResponse(balance))
}

// @Summary Request emergency funds
// @Description Open a fund request for an existing incident. The requester is the authenticated actor.
// @Tags Funds
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param request body CreateFundRequestRequest true "Fund request"
// @Success 201 {object} FundRequestResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 502 {object} map[string]string "Ledger rejected the entry"
// @Router /fund-requests [post]
func (h *Handler) createFundRequest(c *gin.Context) {
	var input CreateFundRequestRequest
	log := h.logger.WithField("method", "createFundRequest")
	if !h.bindJSON(c, log, &input) {
		return
	}

	req, err := h.fundService.RequestFunds(c.Request.Context(), input.IncidentID, input.Amount, input.Justification, actorFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToFundRequestResponse(req))
}

// @Summary Get fund request
// @Tags Funds
// @Produce json
// @Param id path int true "Fund request ID"
// @Success 200 {object} FundRequestResponse
// @Failure 404 {object} map[string]string "Fund request not found"
// @Router /fund-requests/{id} [get]
func (h *Handler) getFundRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req, err := h.fundService.GetFundRequest(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger.WithField("method", "getFundRequest").WithField("id", id), err)
		return
	}
	c.JSON(http.StatusOK, ModelToFundRequestResponse(req))
}

// @Summary Count fund requests
// @Tags Funds
// @Produce json
// @Success 200 {object} CountResponse
// @Router /fund-requests/count [get]
func (h *Handler) countFundRequests(c *gin.Context) {
	count, err := h.fundService.CountFundRequests(c.Request.Context())
	if err != nil {
		respondError(c, h.logger.WithField("method", "countFundRequests"), err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: count})
}

// @Summary Approve fund request
// @Description The approver is the authenticated actor and must differ from the requester.
// @Tags Funds
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param id path int true "Fund request ID"
// @Success 200 {object} FundRequestResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Actor may not approve"
// @Failure 404 {object} map[string]string "Fund request not found"
// @Failure 409 {object} map[string]string "Already approved"
// @Router /fund-requests/{id}/approve [post]
func (h *Handler) approveFundRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req, err := h.fundService.Approve(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, h.logger.WithField("method", "approveFundRequest").WithField("id", id), err)
		return
	}
	c.JSON(http.StatusOK, ModelToFundRequestResponse(req))
}

// @Summary Disburse fund request
// @Description Pay an approved request from the pool. Repeating a completed disbursement is a no-op.
// @Tags Funds
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param id path int true "Fund request ID"
// @Success 200 {object} FundRequestResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Fund request not found"
// @Failure 409 {object} map[string]string "Request is not approved"
// @Failure 422 {object} map[string]string "Insufficient funds in the pool"
// @Router /fund-requests/{id}/disburse [post]
func (h *Handler) disburseFundRequest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	log := h.logger.WithFields(logrus.Fields{"method": "disburseFundRequest", "id": id, "actor": actorFrom(c)})
	req, err := h.fundService.Disburse(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToFundRequestResponse(req))
}

// @Summary Fund pool balance
// @Tags Funds
// @Produce json
// @Success 200 {object} FundPoolResponse
// @Router /fund-pool [get]
func (h *Handler) getFundPool(c *gin.Context) {
	pool, err := h.fundService.PoolBalance(c.Request.Context())
	if err != nil {
		respondError(c, h.logger.WithField("method", "getFundPool"), err)
		return
	}
	c.JSON(http.StatusOK, ModelToFundPoolResponse(pool))
}

// @Summary Deposit into the fund pool
// @Tags Funds
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Security BearerAuth
// @Param deposit body DepositRequest true "Deposit"
// @Success 200 {object} FundPoolResponse
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /fund-pool/deposits [post]
func (h *Handler) depositFunds(c *gin.Context) {
	var input DepositRequest
	log := h.logger.WithField("method", "depositFunds")
	if !h.bindJSON(c, log, &input) {
		return
	}
	pool, err := h.fundService.Deposit(c.Request.Context(), input.Amount, actorFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToFundPoolResponse(pool))
}
