package database

import (
	"fmt"

	"gorm.io/gorm"

	"orderflow/internal/database/models"
)

var defaultMenu = []models.MenuItem{
	{
		Name:        "Margherita Pizza",
		Description: "Classic tomato sauce, fresh mozzarella, and basil.",
		Price:       1299,
		ImageURL:    "https://images.unsplash.com/photo-1574071318508-1cdbab80d002?auto=format&fit=crop&w=500&q=80",
		Category:    "Pizza",
	},
	{
		Name:        "Pepperoni Feast",
		Description: "Loaded with pepperoni and extra cheese.",
		Price:       1499,
		ImageURL:    "https://images.unsplash.com/photo-1628840042765-356cda07504e?auto=format&fit=crop&w=500&q=80",
		Category:    "Pizza",
	},
	{
		Name:        "Classic Cheeseburger",
		Description: "Juicy beef patty, cheddar, lettuce, tomato, house sauce.",
		Price:       1099,
		ImageURL:    "https://images.unsplash.com/photo-1568901346375-23c9450c58cd?auto=format&fit=crop&w=500&q=80",
		Category:    "Burger",
	},
	{
		Name:        "Spicy Chicken Burger",
		Description: "Crispy chicken fillet with spicy mayo and pickles.",
		Price:       1199,
		ImageURL:    "https://images.unsplash.com/photo-1615297348928-867df3c467df?auto=format&fit=crop&w=500&q=80",
		Category:    "Burger",
	},
	{
		Name:        "Caesar Salad",
		Description: "Romaine lettuce, croutons, parmesan, caesar dressing.",
		Price:       899,
		ImageURL:    "https://images.unsplash.com/photo-1550304943-4f24f54ddde9?auto=format&fit=crop&w=500&q=80",
		Category:    "Salads",
	},
	{
		Name:        "Truffle Fries",
		Description: "Crispy fries tossed with truffle oil and parmesan.",
		Price:       699,
		ImageURL:    "https://images.unsplash.com/photo-1573080496982-b94a8add0dd5?auto=format&fit=crop&w=500&q=80",
		Category:    "Sides",
	},
}

// SeedMenu inserts the default menu when the catalog is empty and reports
// how many rows were written.
func SeedMenu(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.MenuItem{}).Unscoped().Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	items := make([]models.MenuItem, len(defaultMenu))
	copy(items, defaultMenu)
	for i := range items {
		items[i].IsAvailable = true
	}

	if err := db.Create(&items).Error; err != nil {
		return 0, fmt.Errorf("failed to seed menu items: %w", err)
	}
	return len(items), nil
}
