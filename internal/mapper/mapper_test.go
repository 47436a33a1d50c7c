package mapper

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whiteknight/neoknight/internal/graph"
	"github.com/whiteknight/neoknight/internal/logger"
	"github.com/whiteknight/neoknight/internal/navigation"
	"github.com/whiteknight/neoknight/internal/translator"
)

type Customer struct {
	CustomerId   uuid.UUID `graph:",key"`
	CustomerName string
	Age          int
	Orders       []*Order   `graph:"-"`
	Addresses    []*Address `graph:"-"`
}

type Order struct {
	OrderId  string `graph:",key"`
	Total    float64
	Customer *Customer `graph:"-"`
}

type Address struct {
	AddressId string `graph:",key"`
	City      string
}

func appendOrder(c *Customer, o *Order)     { c.Orders = append(c.Orders, o) }
func appendAddress(c *Customer, a *Address) { c.Addresses = append(c.Addresses, a) }
func setCustomer(o *Order, c *Customer)     { o.Customer = c }

func customerNode(i int) graph.Node {
	return graph.Node{
		ElementID: fmt.Sprintf("c-%d", i),
		Labels:    []string{"Customer"},
		Props: map[string]any{
			"CustomerId":   uuid.NewSHA1(uuid.NameSpaceOID, []byte{byte(i)}).String(),
			"CustomerName": fmt.Sprintf("Customer %d", i),
			"Age":          int64(20 + i),
		},
	}
}

func orderNode(c, i int) graph.Node {
	return graph.Node{
		ElementID: fmt.Sprintf("o-%d-%d", c, i),
		Labels:    []string{"Order"},
		Props:     map[string]any{"OrderId": fmt.Sprintf("%d/%d", c, i), "Total": "9.5"},
	}
}

func addressNode(c, i int) graph.Node {
	return graph.Node{
		ElementID: fmt.Sprintf("ad-%d-%d", c, i),
		Labels:    []string{"Address"},
		Props:     map[string]any{"AddressId": fmt.Sprintf("%d:%d", c, i), "City": "Leeds"},
	}
}

func rel(label string, from, to graph.Node) graph.Relationship {
	return graph.Relationship{
		ElementID:      from.ElementID + ">" + to.ElementID,
		StartElementID: from.ElementID,
		EndElementID:   to.ElementID,
		Type:           label,
	}
}

func compile(t *testing.T, s *navigation.Strategy) translator.AliasTable {
	t.Helper()
	aliases, err := translator.AllocateAliases(s)
	require.NoError(t, err)
	return aliases
}

func TestMap_Empty(t *testing.T) {
	s := navigation.New(navigation.Start[Customer]())

	got, err := New[Customer](nil).Map(s, compile(t, s), nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMap_RootsAreDistinctAndPopulated(t *testing.T) {
	s := navigation.New(navigation.Start[Customer]())
	c1, c2 := customerNode(1), customerNode(2)
	rows := []graph.Row{
		graph.NewRow("a", c1),
		graph.NewRow("a", c2),
		graph.NewRow("a", c1),
	}

	got, err := New[Customer](nil).Map(s, compile(t, s), rows)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Customer 1", got[0].CustomerName)
	assert.Equal(t, 21, got[0].Age)
	assert.Equal(t, uuid.NewSHA1(uuid.NameSpaceOID, []byte{2}), got[1].CustomerId)
}

func TestMap_RoundTrip(t *testing.T) {
	root := navigation.Start[Customer]()
	navigation.Then(root, "CREATED_ORDER", appendOrder)
	s := navigation.New(root)

	c1, c2, o1 := customerNode(1), customerNode(2), orderNode(1, 1)
	rows := []graph.Row{
		graph.NewRow("a", c1, "a_b", rel("CREATED_ORDER", c1, o1), "b", o1),
		graph.NewRow("a", c2, "a_b", nil, "b", nil),
	}

	got, err := New[Customer](nil).Map(s, compile(t, s), rows)
	require.NoError(t, err)
	require.Len(t, got, 2)

	withOrders := 0
	for _, c := range got {
		if len(c.Orders) > 0 {
			withOrders++
		}
	}
	assert.Equal(t, 1, withOrders)
	require.Len(t, got[0].Orders, 1)
	assert.Equal(t, "1/1", got[0].Orders[0].OrderId)
	assert.InDelta(t, 9.5, got[0].Orders[0].Total, 1e-9)
	assert.Empty(t, got[1].Orders)
}

func TestMap_NilLinkTraversesWithoutLinking(t *testing.T) {
	visited := 0
	root := navigation.Start[Customer]()
	order := navigation.Then[Customer, Order](root, "CREATED_ORDER", nil)
	navigation.Then(order, "ORDERED_BY", func(o *Order, c *Customer) { visited++ })
	s := navigation.New(root)

	c1, o1, o2 := customerNode(1), orderNode(1, 1), orderNode(1, 2)
	rows := []graph.Row{
		graph.NewRow("a", c1, "a_b", rel("CREATED_ORDER", c1, o1), "b", o1, "b_c", rel("ORDERED_BY", o1, c1), "c", c1),
		graph.NewRow("a", c1, "a_b", rel("CREATED_ORDER", c1, o2), "b", o2, "b_c", rel("ORDERED_BY", o2, c1), "c", c1),
	}

	got, err := New[Customer](nil).Map(s, compile(t, s), rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Orders)
	assert.Equal(t, 2, visited, "both orders were created and descended into")
}

// shopFixture builds 28 customers with 3 orders each; every order points back
// at its customer, who has 4 addresses.
func shopFixture() []graph.Row {
	var rows []graph.Row
	for c := 0; c < 28; c++ {
		cust := customerNode(c)
		for o := 0; o < 3; o++ {
			ord := orderNode(c, o)
			for a := 0; a < 4; a++ {
				addr := addressNode(c, a)
				rows = append(rows, graph.NewRow(
					"a", cust,
					"a_b", rel("CREATED_ORDER", cust, ord),
					"b", ord,
					"b_c", rel("ORDERED_BY", ord, cust),
					"c", cust,
					"c_d", rel("HAS_ADDRESS", cust, addr),
					"d", addr,
				))
			}
		}
	}
	return rows
}

func TestMap_ThreeLevelFixture(t *testing.T) {
	root := navigation.Start[Customer]()
	order := navigation.Then(root, "CREATED_ORDER", appendOrder)
	buyer := navigation.Then(order, "ORDERED_BY", setCustomer)
	navigation.Then(buyer, "HAS_ADDRESS", appendAddress)
	s := navigation.New(root)

	rows := shopFixture()
	require.Len(t, rows, 336)

	got, err := New[Customer](nil).Map(s, compile(t, s), rows)
	require.NoError(t, err)
	require.Len(t, got, 28)

	total := 0
	for _, c := range got {
		total++
		assert.Len(t, c.Orders, 3)
		for _, o := range c.Orders {
			total++
			require.NotNil(t, o.Customer)
			assert.Equal(t, c.CustomerId, o.Customer.CustomerId)
			total++
			total += len(o.Customer.Addresses)
			assert.Len(t, o.Customer.Addresses, 4)
		}
	}
	assert.Equal(t, 532, total)
}

func TestMap_MissingAliasTruncatesBranch(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New("warn", &buf)

	root := navigation.Start[Customer]()
	navigation.Then(root, "CREATED_ORDER", appendOrder)
	navigation.Then(root, "HAS_ADDRESS", appendAddress)
	s := navigation.New(root)

	c1, ad := customerNode(1), addressNode(1, 1)
	rows := []graph.Row{
		graph.NewRow("a", c1, "a_c", rel("HAS_ADDRESS", c1, ad), "c", ad),
	}

	got, err := New[Customer](l).Map(s, compile(t, s), rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Orders)
	assert.Len(t, got[0].Addresses, 1, "sibling branch is still mapped")
	assert.Contains(t, buf.String(), "alias missing from result")
	assert.Contains(t, buf.String(), "relationship=a_b")
}

func TestMap_MissingRootAlias(t *testing.T) {
	var buf bytes.Buffer
	s := navigation.New(navigation.Start[Customer]())

	got, err := New[Customer](logger.New("warn", &buf)).Map(s, compile(t, s), []graph.Row{graph.NewRow("x", customerNode(1))})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Contains(t, buf.String(), "root alias missing")
}

func TestMap_ConversionError(t *testing.T) {
	s := navigation.New(navigation.Start[Customer]())
	bad := customerNode(1)
	bad.Props = map[string]any{"CustomerId": "not-a-uuid"}

	_, err := New[Customer](nil).Map(s, compile(t, s), []graph.Row{graph.NewRow("a", bad)})
	assert.Error(t, err)
}
