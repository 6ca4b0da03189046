package domain

// Fill is one trade step between an incoming (taker) order and a resting
// (maker) order. A match returns the number of fills it produced.
// Fills are passed by value; nothing is pooled or retained by the book.
type Fill struct {
	TakerID  OrderID
	MakerID  OrderID
	Side     Side     // taker side
	Price    Price    // maker (resting) price
	Quantity Quantity // traded amount
}

// BuyOrderID returns the id of the buying order in this fill.
func (f Fill) BuyOrderID() OrderID {
	if f.Side == SideBuy {
		return f.TakerID
	}
	return f.MakerID
}

// SellOrderID returns the id of the selling order in this fill.
func (f Fill) SellOrderID() OrderID {
	if f.Side == SideSell {
		return f.TakerID
	}
	return f.MakerID
}

// IsBuyerMaker reports whether the resting side of the fill was the buyer.
func (f Fill) IsBuyerMaker() bool {
	return f.Side == SideSell
}
