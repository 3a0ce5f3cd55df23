package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestParseDummyID(t *testing.T) {
	id, err := ParseDummyID("42")
	require.NoError(t, err)
	assert.Equal(t, DummyID(42), id)

	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := ParseDummyID(bad)
		assert.Error(t, err, bad)
	}
}

func TestCloneIsDeep(t *testing.T) {
	birth := Date{Year: 1990, Month: time.May, Day: 1}
	orig := &Dummy{ID: 1, Name: "Ana", NationalID: ptr(int64(111)), Email: ptr("a@x.com"), Phone: ptr(int64(555)), BirthDate: &birth}

	c := orig.Clone()
	*c.NationalID = 222
	*c.Email = "b@x.com"
	c.BirthDate.Day = 2

	assert.Equal(t, int64(111), *orig.NationalID)
	assert.Equal(t, "a@x.com", *orig.Email)
	assert.Equal(t, 1, orig.BirthDate.Day)
	assert.Nil(t, (*Dummy)(nil).Clone())
}

func TestHasNationalIDAndEmail(t *testing.T) {
	d := &Dummy{NationalID: ptr(int64(111)), Email: ptr("a@x.com")}
	assert.True(t, d.HasNationalID(111))
	assert.False(t, d.HasNationalID(112))
	assert.True(t, d.HasEmail("a@x.com"))
	assert.False(t, (&Dummy{}).HasEmail(""))
}

func TestDateJSON(t *testing.T) {
	t.Run("round trips YYYY-MM-DD", func(t *testing.T) {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(`"1990-05-01"`), &d))
		assert.Equal(t, Date{Year: 1990, Month: time.May, Day: 1}, d)

		out, err := json.Marshal(d)
		require.NoError(t, err)
		assert.JSONEq(t, `"1990-05-01"`, string(out))
	})

	t.Run("rejects other layouts", func(t *testing.T) {
		for _, in := range []string{`"01/05/1990"`, `"1990-02-30"`, `19900501`, `"1990-05-01T00:00:00Z"`} {
			var d Date
			assert.Error(t, json.Unmarshal([]byte(in), &d), in)
		}
	})
}

func TestDateSQL(t *testing.T) {
	v, err := Date{Year: 2001, Month: time.January, Day: 9}.Value()
	require.NoError(t, err)
	assert.Equal(t, "2001-01-09", v)

	var d Date
	require.NoError(t, d.Scan(time.Date(1985, time.December, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1985-12-31", d.String())

	require.NoError(t, d.Scan([]byte("2020-02-29")))
	assert.Equal(t, "2020-02-29", d.String())

	require.NoError(t, d.Scan("2020-03-01T00:00:00Z"))
	assert.Equal(t, "2020-03-01", d.String())

	assert.Error(t, d.Scan(42))
}

func TestEvents(t *testing.T) {
	d := &Dummy{ID: 7, Name: "Ana", NationalID: ptr(int64(111))}

	created := DummyCreated(d)
	assert.Equal(t, EventDummyCreated, created.Type)
	assert.Equal(t, DummyID(7), created.DummyID)
	*created.Record.NationalID = 999
	assert.Equal(t, int64(111), *d.NationalID)

	assert.Equal(t, EventDummyUpdated, DummyUpdated(d).Type)

	deleted := DummyDeleted(7)
	assert.Equal(t, EventDummyDeleted, deleted.Type)
	assert.Nil(t, deleted.Record)
}
