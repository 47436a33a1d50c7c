// Package domain is a small customer/order/address model used by the CLI and
// HTTP server to exercise the repositories.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/whiteknight/neoknight/internal/navigation"
)

// Relationship labels.
const (
	CreatedOrder = "CREATED_ORDER"
	OrderedBy    = "ORDERED_BY"
	HasAddress   = "HAS_ADDRESS"
)

// Customer places orders and has addresses.
type Customer struct {
	CustomerID   uuid.UUID  `graph:"CustomerId,key" json:"customerId"`
	CustomerName string     `json:"customerName"`
	Email        string     `json:"email"`
	Age          int        `json:"age"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"createdAt"`
	Orders       []*Order   `graph:"-" json:"orders,omitempty"`
	Addresses    []*Address `graph:"-" json:"addresses,omitempty"`
}

// Order belongs to one customer.
type Order struct {
	OrderID     uuid.UUID `graph:"OrderId,key" json:"orderId"`
	CustomerID  uuid.UUID `graph:"CustomerId" json:"customerId"`
	OrderNumber string    `json:"orderNumber"`
	Total       float64   `json:"total"`
	PlacedAt    time.Time `json:"placedAt"`
	Customer    *Customer `graph:"-" json:"customer,omitempty"`
}

// Address is a customer address.
type Address struct {
	AddressID  uuid.UUID `graph:"AddressId,key" json:"addressId"`
	CustomerID uuid.UUID `graph:"CustomerId" json:"customerId"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	Postcode   string    `json:"postcode"`
}

func addOrder(c *Customer, o *Order)     { c.Orders = append(c.Orders, o) }
func addAddress(c *Customer, a *Address) { c.Addresses = append(c.Addresses, a) }
func setCustomer(o *Order, c *Customer)  { o.Customer = c }

// CustomerOrders navigates Customer -CREATED_ORDER-> Order.
func CustomerOrders() *navigation.Strategy {
	root := navigation.Start[Customer]()
	navigation.Then(root, CreatedOrder, addOrder)
	return navigation.New(root)
}

// CustomerAddresses navigates Customer -HAS_ADDRESS-> Address.
func CustomerAddresses() *navigation.Strategy {
	root := navigation.Start[Customer]()
	navigation.Then(root, HasAddress, addAddress)
	return navigation.New(root)
}

// CustomerOrdersAndAddresses branches from Customer into orders and addresses.
func CustomerOrdersAndAddresses() *navigation.Strategy {
	root := navigation.Start[Customer]()
	navigation.Then(root, CreatedOrder, addOrder)
	navigation.Then(root, HasAddress, addAddress)
	return navigation.New(root)
}

// CustomerOrdersWithAddresses navigates
// Customer -CREATED_ORDER-> Order -ORDERED_BY-> Customer -HAS_ADDRESS-> Address.
func CustomerOrdersWithAddresses() *navigation.Strategy {
	root := navigation.Start[Customer]()
	order := navigation.Then(root, CreatedOrder, addOrder)
	buyer := navigation.Then(order, OrderedBy, setCustomer)
	navigation.Then(buyer, HasAddress, addAddress)
	return navigation.New(root)
}

// Navigation resolves a navigation name as used by the API and CLI.
func Navigation(name string) (*navigation.Strategy, bool) {
	switch name {
	case "":
		return nil, true
	case "orders":
		return CustomerOrders(), true
	case "addresses":
		return CustomerAddresses(), true
	case "orders,addresses", "addresses,orders":
		return CustomerOrdersAndAddresses(), true
	case "orders.addresses":
		return CustomerOrdersWithAddresses(), true
	default:
		return nil, false
	}
}
