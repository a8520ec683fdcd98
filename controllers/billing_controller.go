package controllers

import (
	"strconv"

	"tableside/pkg/resp"
	"tableside/services"
	"tableside/utils"

	"github.com/gin-gonic/gin"
)

type BillingController struct {
	Billing *services.BillingService
}

func NewBillingController(billing *services.BillingService) *BillingController {
	return &BillingController{Billing: billing}
}

// GenerateBill snapshots totals; doing it twice is a conflict.
func (bc *BillingController) GenerateBill(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	bill, err := bc.Billing.GenerateBill(uint(id), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, gin.H{"bill": bill})
}

type splitPaymentReq struct {
	Splits []struct {
		Amount    int64  `json:"amount" binding:"required,min=1"`
		Method    string `json:"method" binding:"required"`
		PayerName string `json:"payerName"`
	} `json:"splits" binding:"required,min=1,dive"`
}

func (bc *BillingController) SplitPayment(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req splitPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	splits := make([]services.SplitInput, 0, len(req.Splits))
	for _, s := range req.Splits {
		splits = append(splits, services.SplitInput{Amount: s.Amount, Method: s.Method, PayerName: s.PayerName})
	}

	payments, err := bc.Billing.ApplySplitPayment(uint(id), splits, utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, gin.H{"payments": payments})
}

type recordPaymentReq struct {
	Amount int64  `json:"amount" binding:"required,min=1"`
	Method string `json:"method" binding:"required"`
}

func (bc *BillingController) RecordPayment(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req recordPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	bill, err := bc.Billing.RecordPayment(uint(id), req.Amount, req.Method, utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"bill": bill})
}

type applyPromotionReq struct {
	Code string `json:"code" binding:"required"`
}

func (bc *BillingController) ApplyPromotion(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req applyPromotionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	out, err := bc.Billing.ApplyPromotion(uint(id), req.Code, utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, out)
}

// Estimate is the booking-time quote off the active tax policy.
func (bc *BillingController) Estimate(c *gin.Context) {
	subtotal, err := strconv.ParseInt(c.Query("subtotal"), 10, 64)
	if err != nil || subtotal < 0 {
		resp.BadRequest(c, "subtotal must be a non-negative integer")
		return
	}

	tax, service, total, err := bc.Billing.EstimateTotals(subtotal)
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"subtotal": subtotal, "tax": tax, "serviceCharge": service, "total": total})
}
