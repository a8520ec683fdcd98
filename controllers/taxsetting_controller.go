package controllers

import (
	"strconv"

	"tableside/entity"
	"tableside/pkg/resp"
	"tableside/repository"

	"github.com/gin-gonic/gin"
)

type TaxSettingController struct {
	Repo *repository.TaxSettingRepository
}

func NewTaxSettingController(repo *repository.TaxSettingRepository) *TaxSettingController {
	return &TaxSettingController{Repo: repo}
}

func (tc *TaxSettingController) List(c *gin.Context) {
	settings, err := tc.Repo.List()
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"items": settings})
}

type createTaxSettingReq struct {
	Type        string  `json:"type" binding:"required,oneof=free manual"`
	TaxRate     float64 `json:"taxRate" binding:"min=0,max=100"`
	ServiceRate float64 `json:"serviceRate" binding:"min=0,max=100"`
}

func (tc *TaxSettingController) Create(c *gin.Context) {
	var req createTaxSettingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	ts := &entity.TaxSetting{
		Type:        entity.TaxType(req.Type),
		TaxRate:     req.TaxRate,
		ServiceRate: req.ServiceRate,
	}
	if err := tc.Repo.Create(ts); err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.Created(c, gin.H{"taxSetting": ts})
}

// Activate keeps the single-active invariant: the previous active policy is
// retired in the same transaction.
func (tc *TaxSettingController) Activate(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	if err := tc.Repo.Activate(uint(id)); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"activated": id})
}
