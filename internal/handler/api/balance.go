package api

import (
	"net/http"

	reqdto "commerce-core/internal/handler/dto/request"
	resdto "commerce-core/internal/handler/dto/response"
	"commerce-core/internal/handler/httperr"
	"commerce-core/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BalanceHandler struct {
	cmds commands.BalanceCommands
}

func NewBalanceHandler(cmds commands.BalanceCommands) *BalanceHandler {
	return &BalanceHandler{cmds: cmds}
}

func (h *BalanceHandler) Get(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid account id", nil)
		return
	}
	acc, err := h.cmds.Get(c.Request.Context(), accountID)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAccount(acc))
}

func (h *BalanceHandler) Charge(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid account id", nil)
		return
	}
	var req reqdto.ChargeBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	acc, err := h.cmds.Charge(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAccount(acc))
}

func (h *BalanceHandler) Deduct(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid account id", nil)
		return
	}
	var req reqdto.DeductBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	acc, err := h.cmds.Deduct(c.Request.Context(), accountID, req.Amount)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAccount(acc))
}
