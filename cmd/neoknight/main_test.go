package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTranslate(t *testing.T) {
	out, err := execute(t, "translate", "--name-prefix", "Cust", "--active", "true", "--order", "CustomerName", "--desc", "--page", "10", "--size", "5")
	require.NoError(t, err)
	assert.Equal(t,
		"query: MATCH (a:Customer) WHERE (a.CustomerName STARTS WITH 'Cust' AND a.Active = 'true') RETURN a ORDER BY a.CustomerName DESC SKIP 10 LIMIT 5\n"+
			"count: MATCH (a:Customer) WHERE (a.CustomerName STARTS WITH 'Cust' AND a.Active = 'true') RETURN count(DISTINCT a) AS count\n",
		out)
}

func TestTranslate_ClientSide(t *testing.T) {
	out, err := execute(t, "translate", "--min-age", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "client side: specification cannot be translated to cypher: age >= 30\n")
	assert.Contains(t, out, "query: MATCH (a:Customer) WHERE 1=1 RETURN a\n")
}

func TestTranslate_Key(t *testing.T) {
	out, err := execute(t, "translate", "--key", "c-1", "--with", "orders")
	require.NoError(t, err)
	assert.Equal(t,
		"query:  MATCH (a:Customer { CustomerId: $id })-[a_b:CREATED_ORDER]->(b:Order) RETURN a, a_b, b\n"+
			"delete: MATCH (a:Customer { CustomerId: $id })-[a_b:CREATED_ORDER]->(b:Order) DETACH DELETE a\n",
		out)
}

func TestTranslate_InvalidFlags(t *testing.T) {
	for _, args := range [][]string{
		{"translate", "--with", "friends"},
		{"translate", "--active", "perhaps"},
		{"translate", "--page", "-1"},
	} {
		_, err := execute(t, args...)
		assert.Error(t, err, args)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "neoknight version 0.1.0\n", out)
}
