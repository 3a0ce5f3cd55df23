package models

import (
	"fmt"
	"strconv"
)

// Unique field names, as reported in uniqueness violations.
const (
	FieldNationalID = "national id"
	FieldEmail      = "email"
)

// MaxNationalID is the exclusive upper bound for a national id on create.
const MaxNationalID int64 = 100_000_000

// DummyID identifies a stored record. Zero means "not assigned yet".
type DummyID int64

func (id DummyID) IsZero() bool { return id == 0 }

func (id DummyID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseDummyID parses a positive decimal id.
func ParseDummyID(s string) (DummyID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid dummy id %q", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("dummy id must be positive, got %d", n)
	}
	return DummyID(n), nil
}

// Dummy is the managed record. Optional fields are nil when absent.
type Dummy struct {
	ID         DummyID
	Name       string
	NationalID *int64
	Email      *string
	Phone      *int64
	BirthDate  *Date
}

// Clone returns a deep copy so stores and callers never share pointers.
func (d *Dummy) Clone() *Dummy {
	if d == nil {
		return nil
	}
	c := *d
	if d.NationalID != nil {
		v := *d.NationalID
		c.NationalID = &v
	}
	if d.Email != nil {
		v := *d.Email
		c.Email = &v
	}
	if d.Phone != nil {
		v := *d.Phone
		c.Phone = &v
	}
	if d.BirthDate != nil {
		v := *d.BirthDate
		c.BirthDate = &v
	}
	return &c
}

// HasNationalID reports whether the record carries n as its national id.
func (d *Dummy) HasNationalID(n int64) bool {
	return d.NationalID != nil && *d.NationalID == n
}

// HasEmail reports whether the record carries e as its email.
func (d *Dummy) HasEmail(e string) bool {
	return d.Email != nil && *d.Email == e
}
