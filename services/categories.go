package services

import "github.com/nicawallet/wallet-api/models"

// The category set is closed, service-level configuration: users pick from
// it, they never edit it. Icon and color are rendering hints for the client.
var categories = []models.Category{
	{ID: "c1", Name: "Comida", Icon: "ShoppingBag", Color: "bg-orange-100 text-orange-800"},
	{ID: "c2", Name: "Transporte", Icon: "Car", Color: "bg-blue-100 text-blue-800"},
	{ID: "c3", Name: "Hogar", Icon: "Home", Color: "bg-purple-100 text-purple-800"},
	{ID: "c4", Name: "Ocio", Icon: "Coffee", Color: "bg-pink-100 text-pink-800"},
	{ID: "c5", Name: "Servicios", Icon: "Zap", Color: "bg-yellow-100 text-yellow-800"},
	{ID: "c6", Name: "Salud", Icon: "Heart", Color: "bg-red-100 text-red-800"},
}

// DefaultCategory absorbs unknown or empty category names instead of failing
// the write.
var DefaultCategory = models.Category{ID: "c0", Name: "Otros", Icon: "LayoutGrid", Color: "bg-gray-100 text-gray-800"}

// Categories returns the full set, default last.
func Categories() []models.Category {
	out := make([]models.Category, 0, len(categories)+1)
	out = append(out, categories...)
	return append(out, DefaultCategory)
}

// ResolveCategory maps a client-supplied name to a known category, falling
// back to DefaultCategory.
func ResolveCategory(name string) models.Category {
	for _, c := range categories {
		if c.Name == name {
			return c
		}
	}
	return DefaultCategory
}
