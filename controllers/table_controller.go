package controllers

import (
	"strconv"
	"time"

	"tableside/entity"
	"tableside/pkg/resp"
	"tableside/repository"
	"tableside/services"
	"tableside/utils"

	"github.com/gin-gonic/gin"
)

type TableController struct {
	Tables *services.TableService
	Repo   *repository.TableRepository
}

func NewTableController(tables *services.TableService, repo *repository.TableRepository) *TableController {
	return &TableController{Tables: tables, Repo: repo}
}

func (tc *TableController) List(c *gin.Context) {
	tables, err := tc.Repo.List()
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"items": tables})
}

// ===== Book =====

type bookReq struct {
	PartySize       int       `json:"partySize" binding:"required,min=1"`
	StartTime       time.Time `json:"startTime" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"required,min=1"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	DepositAmount   int64     `json:"depositAmount" binding:"omitempty,min=0"`
	WithOrder       bool      `json:"withOrder"`
}

func (tc *TableController) Book(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req bookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	out, err := tc.Tables.Book(uint(id), services.BookRequest{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		PartySize:       req.PartySize,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		DepositAmount:   req.DepositAmount,
		WithOrder:       req.WithOrder,
	}, utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, out)
}

func (tc *TableController) Release(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	table, err := tc.Tables.Release(uint(id), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"table": table})
}

// ===== Admin =====

type createTableReq struct {
	Number      string `json:"number" binding:"required"`
	MinCapacity int    `json:"minCapacity" binding:"required,min=1"`
	Capacity    int    `json:"capacity" binding:"required,min=1"`
}

func (tc *TableController) Create(c *gin.Context) {
	var req createTableReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	if req.MinCapacity > req.Capacity {
		resp.BadRequest(c, "minCapacity must not exceed capacity")
		return
	}

	t := &entity.Table{
		Number:      req.Number,
		MinCapacity: req.MinCapacity,
		Capacity:    req.Capacity,
		Status:      entity.TableAvailable,
		IsActive:    true,
	}
	if err := tc.Repo.Create(t); err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.Created(c, gin.H{"table": t})
}

type updateTableStatusReq struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus is the administrative override on table state.
func (tc *TableController) UpdateStatus(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req updateTableStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	table, err := tc.Tables.UpdateStatus(uint(id), entity.TableStatus(req.Status), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"table": table})
}
