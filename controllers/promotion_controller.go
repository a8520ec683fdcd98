package controllers

import (
	"strconv"
	"strings"
	"time"

	"tableside/entity"
	"tableside/pkg/resp"
	"tableside/repository"
	"tableside/utils"

	"github.com/gin-gonic/gin"
)

type PromotionController struct {
	Repo *repository.PromotionRepository
}

func NewPromotionController(repo *repository.PromotionRepository) *PromotionController {
	return &PromotionController{Repo: repo}
}

func (pc *PromotionController) List(c *gin.Context) {
	promos, err := pc.Repo.List()
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"items": promos})
}

type createPromotionReq struct {
	Code          string     `json:"code" binding:"required"`
	Detail        string     `json:"detail"`
	DiscountType  string     `json:"discountType" binding:"required,oneof=percentage fixed_amount"`
	DiscountValue int64      `json:"discountValue" binding:"required,min=1"`
	MinOrder      int64      `json:"minOrder" binding:"min=0"`
	StartAt       *time.Time `json:"startAt"`
	EndAt         *time.Time `json:"endAt"`
}

func (pc *PromotionController) Create(c *gin.Context) {
	var req createPromotionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	if req.DiscountType == string(entity.DiscountPercentage) && req.DiscountValue > 100 {
		resp.BadRequest(c, "percentage discount cannot exceed 100")
		return
	}

	p := &entity.Promotion{
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		Detail:        req.Detail,
		DiscountType:  entity.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		MinOrder:      req.MinOrder,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		IsActive:      true,
		CreatedBy:     utils.CurrentUserID(c),
	}
	if err := pc.Repo.Create(p); err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.Created(c, gin.H{"promotion": p})
}

type setPromotionActiveReq struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

func (pc *PromotionController) SetActive(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req setPromotionActiveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	p, err := pc.Repo.Get(uint(id))
	if err != nil {
		resp.NotFound(c, "promotion not found")
		return
	}
	p.IsActive = *req.IsActive
	if err := pc.Repo.Save(p); err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"promotion": p})
}

func (pc *PromotionController) Delete(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	if err := pc.Repo.Delete(uint(id)); err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"deleted": id})
}
