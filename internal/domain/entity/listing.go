package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Listing instantánea de una publicación del marketplace. Colección aparte: el núcleo de inventario no la lee.
type Listing struct {
	ID           string
	SellerID     string
	Title        string
	Status       string
	Price        decimal.Decimal
	AvailableQty int
	SoldQty      int
	Permalink    string
	Raw          json.RawMessage
	SyncedAt     time.Time
}
