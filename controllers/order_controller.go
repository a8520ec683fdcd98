package controllers

import (
	"strconv"

	"tableside/entity"
	"tableside/pkg/resp"
	"tableside/services"
	"tableside/utils"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// ===== Items =====

type addItemReq struct {
	TableID    uint   `json:"tableId" binding:"required"`
	MenuItemID uint   `json:"menuItemId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
	Note       string `json:"note"`
}

// AddItem opens the table's order on first use (getOrCreateActiveOrder).
func (oc *OrderController) AddItem(c *gin.Context) {
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	out, err := oc.Orders.AddItem(req.TableID, req.MenuItemID, req.Quantity, req.Note, utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, out)
}

type updateItemQtyReq struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func (oc *OrderController) UpdateItemQuantity(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req updateItemQtyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	order, err := oc.Orders.UpdateItemQuantity(uint(id), req.Quantity, utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"order": order})
}

func (oc *OrderController) RemoveItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	order, err := oc.Orders.RemoveItem(uint(id), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	// order is nil when removing the last item closed the whole order
	resp.OK(c, gin.H{"order": order})
}

type updateItemStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (oc *OrderController) UpdateItemStatus(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req updateItemStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	order, err := oc.Orders.UpdateItemStatus(uint(id), entity.OrderItemStatus(req.Status), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"order": order})
}

// ===== Order state =====

type updateOrderStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req updateOrderStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	order, err := oc.Orders.UpdateStatus(uint(id), entity.OrderStatus(req.Status), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"order": order})
}

type updatePriorityReq struct {
	Priority string `json:"priority" binding:"required"`
}

func (oc *OrderController) UpdatePriority(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req updatePriorityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	order, err := oc.Orders.SetPriority(uint(id), entity.OrderPriority(req.Priority), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"order": order})
}

func (oc *OrderController) Detail(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	detail, err := oc.Orders.Detail(uint(id))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, detail)
}
