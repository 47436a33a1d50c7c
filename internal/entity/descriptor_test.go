package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct {
	AccountID uuid.UUID `graph:"AccountId,key"`
	Name      string
	Age       int
	Balance   float64
	Active    bool
	Opened    time.Time
	Nickname  *string
	Tags      []string `graph:"-"`
	internal  string
}

type Audit struct {
	Created string
}

type audited struct {
	*Audit
	ID string `graph:",key"`
}

type spaced struct {
	ID        string `graph:",key"`
	FirstName string `graph:"first name"`
	Underbar  string `graph:"first_name"`
	Code      string `graph:"1code"`
}

type labelled struct {
	Code string
}

func (labelled) NodeLabel() string { return "Thing" }

type twoKeys struct {
	A string `graph:"A,key"`
	B string `graph:"B,key"`
}

func TestDescribe(t *testing.T) {
	d, err := Of[account]()
	require.NoError(t, err)

	assert.Equal(t, "account", d.Label)
	assert.Equal(t, "AccountId", d.Key)

	var names []string
	for _, f := range d.Fields() {
		names = append(names, f.Property)
	}
	assert.Equal(t, []string{"AccountId", "Name", "Age", "Balance", "Active", "Opened", "Nickname"}, names)

	again, err := Of[*account]()
	require.NoError(t, err)
	assert.Same(t, d, again, "descriptors are cached per type")
}

func TestDescribe_Errors(t *testing.T) {
	_, err := Of[int]()
	assert.ErrorIs(t, err, ErrNotStruct)

	_, err = Of[twoKeys]()
	assert.Error(t, err)
}

func TestDescribe_Labeler(t *testing.T) {
	d := MustOf[labelled]()
	assert.Equal(t, "Thing", d.Label)
	assert.Empty(t, d.Key)
}

func TestCreate_TypeDirectedConversion(t *testing.T) {
	d := MustOf[account]()
	id := uuid.New()
	opened := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	obj, err := d.Create(map[string]any{
		"AccountId": id.String(),
		"Name":      "Ada",
		"Age":       "36",
		"Balance":   "10.5",
		"Active":    "true",
		"Opened":    opened.Format(time.RFC3339),
		"Nickname":  "ada",
		"Unknown":   "ignored",
	})
	require.NoError(t, err)

	a := obj.(*account)
	assert.Equal(t, id, a.AccountID)
	assert.Equal(t, "Ada", a.Name)
	assert.Equal(t, 36, a.Age)
	assert.InDelta(t, 10.5, a.Balance, 1e-9)
	assert.True(t, a.Active)
	assert.True(t, opened.Equal(a.Opened))
	require.NotNil(t, a.Nickname)
	assert.Equal(t, "ada", *a.Nickname)
}

func TestCreate_NativeDriverValues(t *testing.T) {
	d := MustOf[account]()
	day := time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC)

	obj, err := d.Create(map[string]any{
		"Age":    int64(41),
		"Active": false,
		"Opened": dbtype.Date(day),
	})
	require.NoError(t, err)

	a := obj.(*account)
	assert.Equal(t, 41, a.Age)
	assert.False(t, a.Active)
	assert.True(t, day.Equal(a.Opened))
}

func TestCreate_MissingPropertiesKeepDefaults(t *testing.T) {
	d := MustOf[account]()

	obj, err := d.Create(map[string]any{"Name": "Bob", "Age": nil})
	require.NoError(t, err)

	a := obj.(*account)
	assert.Equal(t, "Bob", a.Name)
	assert.Zero(t, a.Age)
	assert.Equal(t, uuid.Nil, a.AccountID)
	assert.Nil(t, a.Nickname)
}

func TestCreate_ConversionErrors(t *testing.T) {
	d := MustOf[account]()

	tests := []struct {
		name  string
		props map[string]any
	}{
		{"bad identifier", map[string]any{"AccountId": "not-a-uuid"}},
		{"bad integer", map[string]any{"Age": "old"}},
		{"bad boolean", map[string]any{"Active": "maybe"}},
		{"bad time", map[string]any{"Opened": "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Create(tt.props)
			assert.Error(t, err)
		})
	}
}

func TestGetAndKeyValue(t *testing.T) {
	d := MustOf[account]()
	id := uuid.New()
	nick := "al"
	a := &account{AccountID: id, Name: "Al", Nickname: &nick}

	v, ok := d.Get(a, "Name")
	assert.True(t, ok)
	assert.Equal(t, "Al", v)

	v, ok = d.Get(a, "Nickname")
	assert.True(t, ok)
	assert.Equal(t, "al", v)

	_, ok = d.Get(a, "Missing")
	assert.False(t, ok)

	key, ok := d.KeyValue(a)
	assert.True(t, ok)
	assert.Equal(t, id, key)

	_, ok = MustOf[labelled]().KeyValue(&labelled{})
	assert.False(t, ok)
}

func TestPopulate_WrongType(t *testing.T) {
	d := MustOf[account]()
	assert.Error(t, d.Populate(&labelled{}, map[string]any{"Name": "x"}))
	assert.Error(t, d.Populate((*account)(nil), map[string]any{"Name": "x"}))
}

func TestCommandMappings(t *testing.T) {
	d := MustOf[account]()
	id := uuid.MustParse("9f1c1a52-6f0e-4c36-a0a8-0e6b3c7c4c11")
	opened := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

	mappings, err := d.CommandMappings(&account{
		AccountID: id,
		Name:      "Ada",
		Age:       36,
		Balance:   2.5,
		Active:    true,
		Opened:    opened,
		Tags:      []string{"skipped"},
	})
	require.NoError(t, err)

	assert.Equal(t, []Mapping{
		{Parameter: "accountid", Property: "AccountId", Value: "9f1c1a52-6f0e-4c36-a0a8-0e6b3c7c4c11"},
		{Parameter: "name", Property: "Name", Value: "Ada"},
		{Parameter: "age", Property: "Age", Value: "36"},
		{Parameter: "balance", Property: "Balance", Value: "2.5"},
		{Parameter: "active", Property: "Active", Value: "true"},
		{Parameter: "opened", Property: "Opened", Value: "2024-03-01T10:30:00Z"},
	}, mappings)
}

func TestFormat(t *testing.T) {
	n := 7
	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "x", Format("x"))
	assert.Equal(t, "42", Format(42))
	assert.Equal(t, "42", Format(float64(42)))
	assert.Equal(t, "7", Format(&n))
	assert.Equal(t, "true", Format(true))
	assert.Equal(t, "2024-01-02T00:00:00Z", Format(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestFormat_TimeInUTC(t *testing.T) {
	instant := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	berlin := instant.In(time.FixedZone("CET", 3600))

	assert.Equal(t, Format(instant), Format(berlin))
	assert.Equal(t, "2024-01-02T00:00:00Z", Format(berlin))
}

func TestEmbeddedPointer(t *testing.T) {
	d := MustOf[audited]()
	_, ok := d.Field("Created")
	require.True(t, ok, "promoted fields are mapped")

	obj, err := d.Create(map[string]any{"Created": "yesterday", "ID": "1"})
	require.NoError(t, err)
	a := obj.(*audited)
	require.NotNil(t, a.Audit)
	assert.Equal(t, "yesterday", a.Created)
	assert.Equal(t, "1", a.ID)

	bare := &audited{ID: "2"}
	_, ok = d.Get(bare, "Created")
	assert.False(t, ok, "a nil embedded pointer reads as absent")

	mappings, err := d.CommandMappings(bare)
	require.NoError(t, err)
	assert.Equal(t, []Mapping{{Parameter: "id", Property: "ID", Value: "2"}}, mappings)
}

func TestCommandMappings_ParameterNames(t *testing.T) {
	mappings, err := MustOf[spaced]().CommandMappings(&spaced{ID: "1", FirstName: "Ada", Underbar: "x", Code: "c"})
	require.NoError(t, err)

	var params []string
	for _, m := range mappings {
		params = append(params, m.Parameter)
	}
	assert.Equal(t, []string{"id", "first_name", "first_name_2", "p1code"}, params)
}
