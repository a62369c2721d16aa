package domain

import "time"

// Product описывает товар каталога
type Product struct {
	ID          string // uuid
	Name        string
	Description string
	Images      []string // упорядоченный список URL, первый — основное изображение
	PriceCents  int64    // Цена хранится в центах
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewProduct(name string, description string, images []string, priceCents int64) *Product {
	return &Product{
		Name:        name,
		Description: description,
		Images:      images,
		PriceCents:  priceCents,
	}
}

// PrimaryImage возвращает основное изображение товара (первый элемент списка).
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
