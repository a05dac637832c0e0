package session

import (
	"errors"
	"strconv"
	"strings"

	"helios/internal/domain"
)

// Ticket holds the editable trade ticket fields as entered by the user.
// Revision increases every time the session itself writes to the ticket, so
// a UI can tell its inputs need resyncing.
type Ticket struct {
	Symbol   string
	Side     domain.Side
	Quantity string
	Price    string
	Note     string
	Revision int
}

var (
	errQuantity = errors.New("Quantity must be a whole number")
	errPrice    = errors.New("Price must be a number")
)

// Request converts the ticket into a trade submission linked to story, which
// may be nil.
func (t *Ticket) Request(story *domain.StorySummary) (domain.TradeRequest, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(t.Quantity))
	if err != nil {
		return domain.TradeRequest{}, errQuantity
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(t.Price), 64)
	if err != nil {
		return domain.TradeRequest{}, errPrice
	}

	req := domain.TradeRequest{
		Symbol:   strings.TrimSpace(t.Symbol),
		Side:     t.Side,
		Quantity: qty,
		Price:    price,
		Note:     strings.TrimSpace(t.Note),
	}
	if req.Side != domain.SideSell {
		req.Side = domain.SideBuy
	}
	if story != nil {
		req.StoryID = story.ID
		req.StoryTitle = story.Title
	}
	return req, nil
}
