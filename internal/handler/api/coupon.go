package api

import (
	"net/http"

	reqdto "commerce-core/internal/handler/dto/request"
	resdto "commerce-core/internal/handler/dto/response"
	"commerce-core/internal/handler/httperr"
	"commerce-core/internal/queue"
	"commerce-core/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CouponHandler struct {
	cmds  commands.CouponCommands
	queue *queue.Service
}

func NewCouponHandler(cmds commands.CouponCommands, queueService *queue.Service) *CouponHandler {
	return &CouponHandler{cmds: cmds, queue: queueService}
}

// Issue grants the coupon immediately. Queue-mediated coupons refuse this
// path; clients join the queue instead.
func (h *CouponHandler) Issue(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid coupon id", nil)
		return
	}
	var req reqdto.IssueCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	grant, err := h.cmds.IssueDirect(c.Request.Context(), req.AccountID, couponID)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromGrant(grant))
}

func (h *CouponHandler) JoinQueue(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid coupon id", nil)
		return
	}
	var req reqdto.JoinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	entry, err := h.queue.Join(c.Request.Context(), req.AccountID, couponID)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resdto.FromQueueEntry(entry))
}

func (h *CouponHandler) QueueStatus(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid coupon id", nil)
		return
	}
	accountID, err := uuid.Parse(c.Query("account_id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid account id", nil)
		return
	}
	entry, err := h.queue.Status(c.Request.Context(), accountID, couponID)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromQueueEntry(entry))
}
