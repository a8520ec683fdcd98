package controllers

import (
	"strconv"
	"time"

	"tableside/pkg/resp"
	"tableside/services"
	"tableside/utils"

	"github.com/gin-gonic/gin"
)

type ReservationController struct {
	Reservations *services.ReservationService
}

func NewReservationController(reservations *services.ReservationService) *ReservationController {
	return &ReservationController{Reservations: reservations}
}

type createReservationReq struct {
	TableID         uint      `json:"tableId" binding:"required"`
	PartySize       int       `json:"partySize" binding:"required,min=1"`
	StartTime       time.Time `json:"startTime" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"required,min=1"`
	CustomerName    string    `json:"customerName" binding:"required"`
	CustomerPhone   string    `json:"customerPhone"`
	DepositAmount   int64     `json:"depositAmount" binding:"omitempty,min=0"`
}

func (rc *ReservationController) Create(c *gin.Context) {
	var req createReservationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	res, err := rc.Reservations.Create(services.CreateReservationRequest{
		TableID:         req.TableID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		PartySize:       req.PartySize,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		DepositAmount:   req.DepositAmount,
	}, utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, gin.H{"reservation": res})
}

func (rc *ReservationController) Detail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	res, err := rc.Reservations.Get(uint(id))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"reservation": res})
}

func (rc *ReservationController) Confirm(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	res, err := rc.Reservations.Confirm(uint(id), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"reservation": res})
}

// Seat opens the table's order in the same transaction.
func (rc *ReservationController) Seat(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	res, order, err := rc.Reservations.Seat(uint(id), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"reservation": res, "order": order})
}

func (rc *ReservationController) Complete(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	res, err := rc.Reservations.Complete(uint(id), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"reservation": res})
}

func (rc *ReservationController) Cancel(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	res, err := rc.Reservations.Cancel(uint(id), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"reservation": res})
}

func (rc *ReservationController) NoShow(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))
	res, err := rc.Reservations.MarkNoShow(uint(id), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"reservation": res})
}

// CheckAvailability is public: GET /availability?start=RFC3339&duration=90&partySize=4
func (rc *ReservationController) CheckAvailability(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		resp.BadRequest(c, "start must be RFC3339")
		return
	}
	duration, _ := strconv.Atoi(c.DefaultQuery("duration", "90"))
	partySize, _ := strconv.Atoi(c.Query("partySize"))

	tables, err := rc.Reservations.CheckAvailability(start, duration, partySize)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"availableTables": tables})
}
