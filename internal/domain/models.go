package domain

import "time"

// Shapes exchanged with the remote Tixflow API.

type Event struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Image        string    `json:"image,omitempty"`
	Location     string    `json:"location"`
	Category     string    `json:"category"`
	Time         time.Time `json:"time"`
	Introduction string    `json:"introduction,omitempty"`
	Description  string    `json:"description,omitempty"`
	Condition    string    `json:"condition,omitempty"`
}

type Ticket struct {
	ID          string `json:"id"`
	EventID     string `json:"eventId"`
	Name        string `json:"name"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	MinInOrder  int    `json:"minInOrder"`
	MaxInOrder  int    `json:"maxInOrder"`
	Status      string `json:"status,omitempty"`
	Event       *Event `json:"event,omitempty"`
}

type Order struct {
	ID         string `json:"id"`
	TicketID   string `json:"ticketId"`
	Price      int64  `json:"price"`
	PaymentURL string `json:"paymentLink"`
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
	Status   string `json:"status,omitempty"`
}

type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         *User  `json:"user,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone,omitempty"`
}

type CreateEventInput struct {
	Name         string    `json:"name"`
	Image        string    `json:"image"`
	Location     string    `json:"location"`
	Category     string    `json:"category"`
	Time         time.Time `json:"time"`
	Introduction string    `json:"introduction"`
	Description  string    `json:"description"`
	Condition    string    `json:"condition,omitempty"`
}

type CreateTicketInput struct {
	EventID     string `json:"eventId"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	MinInOrder  int    `json:"minInOrder"`
	MaxInOrder  int    `json:"maxInOrder"`
}

// Order kinds: the listing fee charged to a seller, and a buyer's purchase.
const (
	OrderTypeListingFee = "sell_ticket"
	OrderTypeBuyTicket  = "buy_ticket"
)

type CreateOrderInput struct {
	TicketID string `json:"ticketId"`
	Type     string `json:"type"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// UpdateTicketInput replaces the editable fields of a listed ticket.
type UpdateTicketInput struct {
	Name        string `json:"name"`
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	MinInOrder  int    `json:"minInOrder"`
	MaxInOrder  int    `json:"maxInOrder"`
}

// Purchase is the order opened for a buyer and where to pay for it.
type Purchase struct {
	OrderID    string `json:"order_id"`
	TicketID   string `json:"ticket_id"`
	Quantity   int    `json:"quantity"`
	Total      int64  `json:"total"`
	PaymentURL string `json:"payment_url"`
}

// PaymentSession is what the browser embeds in the payment frame.
type PaymentSession struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
	Fee        int64  `json:"fee"`
}

// Ticket statuses the remote API accepts on a status update.
const (
	TicketPending  = "pending"
	TicketApproved = "approved"
	TicketRemoved  = "removed"
	TicketRejected = "rejected"
	TicketExpired  = "expired"
)

func ValidTicketStatus(s string) bool {
	switch s {
	case TicketPending, TicketApproved, TicketRemoved, TicketRejected, TicketExpired:
		return true
	}
	return false
}
