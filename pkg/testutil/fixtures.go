package testutil

import "dummyapi/internal/dummy/models"

// DummyBuilder provides a fluent interface for building test records.
type DummyBuilder struct {
	dummy *models.Dummy
}

// NewDummy starts from a record with only a name set.
func NewDummy(name string) *DummyBuilder {
	return &DummyBuilder{dummy: &models.Dummy{Name: name}}
}

func (b *DummyBuilder) WithID(id models.DummyID) *DummyBuilder {
	b.dummy.ID = id
	return b
}

func (b *DummyBuilder) WithNationalID(n int64) *DummyBuilder {
	b.dummy.NationalID = &n
	return b
}

func (b *DummyBuilder) WithEmail(e string) *DummyBuilder {
	b.dummy.Email = &e
	return b
}

func (b *DummyBuilder) WithPhone(p int64) *DummyBuilder {
	b.dummy.Phone = &p
	return b
}

// WithBirthDate panics on a malformed date; fixtures are static.
func (b *DummyBuilder) WithBirthDate(s string) *DummyBuilder {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	b.dummy.BirthDate = &d
	return b
}

// Build returns a copy so one builder can seed several records.
func (b *DummyBuilder) Build() *models.Dummy {
	return b.dummy.Clone()
}
