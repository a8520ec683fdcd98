package services

import (
	"tableside/entity"
	"tableside/pkg/apperr"
	"tableside/repository"
)

// MenuService is catalog plumbing; the core treats the menu as read-only.
type MenuService struct {
	Repo *repository.MenuRepository
}

func NewMenuService(repo *repository.MenuRepository) *MenuService {
	return &MenuService{Repo: repo}
}

func (s *MenuService) List() ([]entity.MenuItem, error) {
	return s.Repo.List()
}

func (s *MenuService) Create(name string, price int64, isCombo bool) (*entity.MenuItem, error) {
	if name == "" {
		return nil, apperr.Validation("name", "required")
	}
	if price < 0 {
		return nil, apperr.Validation("price", "must not be negative")
	}
	m := &entity.MenuItem{Name: name, Price: price, IsCombo: isCombo, IsActive: true}
	if err := s.Repo.Create(m); err != nil {
		return nil, err
	}
	return m, nil
}

// AddComponent wires a menu item into a combo; ordering the combo later
// expands each component into a zero-priced composed order line.
func (s *MenuService) AddComponent(comboID, menuItemID uint, qty int) (*entity.ComboComponent, error) {
	if qty < 1 {
		return nil, apperr.Validation("quantity", "must be at least 1")
	}
	combo, err := s.Repo.Get(s.Repo.DB, comboID)
	if err != nil {
		return nil, apperr.NotFound("combo")
	}
	if !combo.IsCombo {
		return nil, apperr.Precondition("menu item %d is not a combo", comboID)
	}
	if _, err := s.Repo.Get(s.Repo.DB, menuItemID); err != nil {
		return nil, apperr.NotFound("menu item")
	}

	c := &entity.ComboComponent{ComboID: comboID, MenuItemID: menuItemID, Quantity: qty}
	if err := s.Repo.AddComponent(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *MenuService) SetActive(id uint, active bool) (*entity.MenuItem, error) {
	m, err := s.Repo.Get(s.Repo.DB, id)
	if err != nil {
		return nil, apperr.NotFound("menu item")
	}
	m.IsActive = active
	if err := s.Repo.Save(m); err != nil {
		return nil, err
	}
	return m, nil
}
