package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/whiteknight/neoknight/internal/graph"
	"github.com/whiteknight/neoknight/internal/query"
	"github.com/whiteknight/neoknight/internal/repository"
)

// Store groups the shop repositories.
type Store struct {
	Customers *repository.Repository[Customer]
	Orders    *repository.Repository[Order]
	Addresses *repository.Repository[Address]

	executor graph.Executor
}

// NewStore creates the repositories over one set of features.
func NewStore(f repository.Features) (*Store, error) {
	customers, err := repository.New[Customer](f)
	if err != nil {
		return nil, fmt.Errorf("customer repository: %w", err)
	}
	orders, err := repository.New[Order](f)
	if err != nil {
		return nil, fmt.Errorf("order repository: %w", err)
	}
	addresses, err := repository.New[Address](f)
	if err != nil {
		return nil, fmt.Errorf("address repository: %w", err)
	}
	return &Store{Customers: customers, Orders: orders, Addresses: addresses, executor: f.Executor}, nil
}

const (
	linkOrder = "MATCH (c:Customer { CustomerId: $customer }), (o:Order { OrderId: $order }) " +
		"MERGE (c)-[:" + CreatedOrder + "]->(o) MERGE (o)-[:" + OrderedBy + "]->(c)"
	linkAddress = "MATCH (c:Customer { CustomerId: $customer }), (a:Address { AddressId: $address }) " +
		"MERGE (c)-[:" + HasAddress + "]->(a)"
)

// SeedSummary counts what Seed wrote.
type SeedSummary struct {
	Customers     int
	Orders        int
	Addresses     int
	Relationships int
}

// Seed writes the customers and their orders and addresses, then links them.
// Writes are MERGEs, so seeding twice is harmless.
func (s *Store) Seed(ctx context.Context, customers []*Customer) (SeedSummary, error) {
	var sum SeedSummary
	for _, c := range customers {
		if err := s.Customers.Upsert(ctx, query.UpdateCommand[Customer]{Entity: c}); err != nil {
			return sum, err
		}
		sum.Customers++

		for _, o := range c.Orders {
			if err := s.Orders.Upsert(ctx, query.UpdateCommand[Order]{Entity: o}); err != nil {
				return sum, err
			}
			sum.Orders++
			params := map[string]any{"customer": c.CustomerID.String(), "order": o.OrderID.String()}
			if err := s.executor.Run(ctx, linkOrder, params); err != nil {
				return sum, fmt.Errorf("linking order %s: %w", o.OrderNumber, err)
			}
			sum.Relationships += 2
		}

		for _, a := range c.Addresses {
			if err := s.Addresses.Upsert(ctx, query.UpdateCommand[Address]{Entity: a}); err != nil {
				return sum, err
			}
			sum.Addresses++
			params := map[string]any{"customer": c.CustomerID.String(), "address": a.AddressID.String()}
			if err := s.executor.Run(ctx, linkAddress, params); err != nil {
				return sum, fmt.Errorf("linking address %s: %w", a.AddressID, err)
			}
			sum.Relationships++
		}
	}
	return sum, nil
}

var seedNamespace = uuid.MustParse("0b8f5f0c-3f7a-4e5e-9a4c-6d1f2f3c9e10")

var cities = []string{"Leeds", "York", "Bristol", "Glasgow", "Cardiff"}

// SampleData builds a deterministic shop: n customers, each with the given
// number of orders and addresses.
func SampleData(n, orders, addresses int, now time.Time) []*Customer {
	out := make([]*Customer, n)
	for i := range out {
		id := uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("customer/%d", i)))
		c := &Customer{
			CustomerID:   id,
			CustomerName: fmt.Sprintf("Customer %03d", i),
			Email:        fmt.Sprintf("customer%03d@example.com", i),
			Age:          18 + i%60,
			Active:       i%4 != 0,
			CreatedAt:    now.Add(-time.Duration(i) * 24 * time.Hour).UTC().Truncate(time.Second),
		}
		for j := 0; j < orders; j++ {
			c.Orders = append(c.Orders, &Order{
				OrderID:     uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("order/%d/%d", i, j))),
				CustomerID:  id,
				OrderNumber: fmt.Sprintf("SO-%03d-%02d", i, j),
				Total:       float64(10*(j+1)) + float64(i%7)/4,
				PlacedAt:    c.CreatedAt.Add(time.Duration(j+1) * time.Hour),
			})
		}
		for j := 0; j < addresses; j++ {
			c.Addresses = append(c.Addresses, &Address{
				AddressID:  uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("address/%d/%d", i, j))),
				CustomerID: id,
				Street:     fmt.Sprintf("%d High Street", j+1),
				City:       cities[(i+j)%len(cities)],
				Postcode:   fmt.Sprintf("AB%d %dCD", i%10, j),
			})
		}
		out[i] = c
	}
	return out
}
