package controllers

import (
	"strconv"

	"tableside/pkg/resp"
	"tableside/services"

	"github.com/gin-gonic/gin"
)

type MenuController struct {
	Menu *services.MenuService
}

func NewMenuController(menu *services.MenuService) *MenuController {
	return &MenuController{Menu: menu}
}

func (mc *MenuController) List(c *gin.Context) {
	items, err := mc.Menu.List()
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"items": items})
}

type createMenuItemReq struct {
	Name    string `json:"name" binding:"required"`
	Price   int64  `json:"price" binding:"min=0"`
	IsCombo bool   `json:"isCombo"`
}

func (mc *MenuController) Create(c *gin.Context) {
	var req createMenuItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	item, err := mc.Menu.Create(req.Name, req.Price, req.IsCombo)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, gin.H{"menuItem": item})
}

type addComponentReq struct {
	MenuItemID uint `json:"menuItemId" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,min=1"`
}

func (mc *MenuController) AddComponent(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req addComponentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	comp, err := mc.Menu.AddComponent(uint(id), req.MenuItemID, req.Quantity)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, gin.H{"component": comp})
}

type setActiveReq struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

func (mc *MenuController) SetActive(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	var req setActiveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	item, err := mc.Menu.SetActive(uint(id), *req.IsActive)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"menuItem": item})
}
