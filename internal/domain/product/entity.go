package product

import (
	"time"

	"commerce-core/internal/domain/vo"

	"github.com/google/uuid"
)

type Product struct {
	id        uuid.UUID
	name      string
	category  string
	price     vo.Money
	stock     Stock
	createdAt time.Time
}

func NewProduct(id uuid.UUID, name, category string, price vo.Money, stock Stock, createdAt time.Time) *Product {
	return &Product{
		id:        id,
		name:      name,
		category:  category,
		price:     price,
		stock:     stock,
		createdAt: createdAt,
	}
}

func (p *Product) DecreaseStock(quantity vo.Quantity) error {
	next, err := p.stock.Decrease(quantity)
	if err != nil {
		return err
	}
	p.stock = next
	return nil
}

func (p *Product) IncreaseStock(quantity vo.Quantity) {
	p.stock = p.stock.Increase(quantity)
}

func (p *Product) HasSufficientStock(required vo.Quantity) bool {
	return p.stock.IsSufficientFor(required)
}

func (p *Product) Clone() *Product {
	c := *p
	return &c
}

func (p *Product) ID() uuid.UUID        { return p.id }
func (p *Product) Name() string         { return p.name }
func (p *Product) Category() string     { return p.category }
func (p *Product) Price() vo.Money      { return p.price }
func (p *Product) Stock() Stock         { return p.stock }
func (p *Product) CreatedAt() time.Time { return p.createdAt }
