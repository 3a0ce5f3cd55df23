package store

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/suite"

	"dummyapi/internal/dummy/models"
	"dummyapi/pkg/platform/sentinel"
)

type dummyStore interface {
	FindByID(ctx context.Context, id models.DummyID) (*models.Dummy, error)
	FindAll(ctx context.Context) ([]*models.Dummy, error)
	Save(ctx context.Context, d *models.Dummy) (*models.Dummy, error)
	Delete(ctx context.Context, id models.DummyID) error
	Count(ctx context.Context) (int, error)
}

var (
	_ dummyStore = (*InMemory)(nil)
	_ dummyStore = (*PostgresStore)(nil)
	_ dummyStore = (*RedisStore)(nil)
)

// StoreContractSuite holds the behaviour every backend must share.
// newStore must return an empty store.
type StoreContractSuite struct {
	suite.Suite
	newStore func() dummyStore
	store    dummyStore
	ctx      context.Context
}

func (s *StoreContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore()
}

func ptr[T any](v T) *T { return &v }

func ana() *models.Dummy {
	birth := models.Date{Year: 1990, Month: time.May, Day: 1}
	return &models.Dummy{
		Name:       "Ana",
		NationalID: ptr(int64(111)),
		Email:      ptr("a@x.com"),
		Phone:      ptr(int64(5551234)),
		BirthDate:  &birth,
	}
}

func (s *StoreContractSuite) save(d *models.Dummy) *models.Dummy {
	saved, err := s.store.Save(s.ctx, d)
	s.Require().NoError(err)
	return saved
}

func (s *StoreContractSuite) TestSaveAssignsIDAndRoundTrips() {
	saved := s.save(ana())
	s.False(saved.ID.IsZero())

	found, err := s.store.FindByID(s.ctx, saved.ID)
	s.Require().NoError(err)
	s.Equal(saved, found)
	s.Equal("1990-05-01", found.BirthDate.String())
}

func (s *StoreContractSuite) TestOptionalFieldsStayAbsent() {
	saved := s.save(&models.Dummy{Name: "Bare"})

	found, err := s.store.FindByID(s.ctx, saved.ID)
	s.Require().NoError(err)
	s.Nil(found.NationalID)
	s.Nil(found.Email)
	s.Nil(found.Phone)
	s.Nil(found.BirthDate)
}

func (s *StoreContractSuite) TestEmptyEmailRoundTrips() {
	saved := s.save(&models.Dummy{Name: "Ana", Email: ptr("")})

	found, err := s.store.FindByID(s.ctx, saved.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.Email)
	s.Equal("", *found.Email)

	all, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Require().NotNil(all[0].Email)
}

func (s *StoreContractSuite) TestEmptyEmailReleasedOnDelete() {
	first := s.save(&models.Dummy{Name: "Ana", Email: ptr("")})

	_, err := s.store.Save(s.ctx, &models.Dummy{Name: "Eve", Email: ptr("")})
	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)

	s.Require().NoError(s.store.Delete(s.ctx, first.ID))
	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)

	second := s.save(&models.Dummy{Name: "Bob", Email: ptr("")})
	s.NotEqual(first.ID, second.ID)
}

func (s *StoreContractSuite) TestEmptyEmailReleasedOnReplace() {
	first := s.save(&models.Dummy{Name: "Ana", Email: ptr("")})
	s.save(&models.Dummy{ID: first.ID, Name: "Ana", Email: ptr("a@x.com")})

	s.save(&models.Dummy{Name: "Bob", Email: ptr("")})
}

func (s *StoreContractSuite) TestFindByIDMissing() {
	_, err := s.store.FindByID(s.ctx, 999)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreContractSuite) TestSaveWithUnknownIDInserts() {
	d := ana()
	d.ID = 4242
	saved := s.save(d)

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
	found, err := s.store.FindByID(s.ctx, saved.ID)
	s.Require().NoError(err)
	s.Equal("Ana", found.Name)
}

func (s *StoreContractSuite) TestSaveReplacesExisting() {
	saved := s.save(ana())

	replacement := &models.Dummy{ID: saved.ID, Name: "Ana Maria", NationalID: ptr(int64(111)), Email: ptr("am@x.com")}
	updated := s.save(replacement)

	s.Equal(saved.ID, updated.ID)
	found, err := s.store.FindByID(s.ctx, saved.ID)
	s.Require().NoError(err)
	s.Equal("Ana Maria", found.Name)
	s.Equal("am@x.com", *found.Email)
	s.Nil(found.Phone, "update is a whole replacement")

	count, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)

	// The old email is released.
	other := s.save(&models.Dummy{Name: "Other", NationalID: ptr(int64(333)), Email: ptr("a@x.com")})
	s.NotEqual(saved.ID, other.ID)
}

func (s *StoreContractSuite) TestUniqueNationalID() {
	s.save(ana())

	dup := &models.Dummy{Name: "Eve", NationalID: ptr(int64(111)), Email: ptr("e@x.com")}
	_, err := s.store.Save(s.ctx, dup)

	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	s.Contains(err.Error(), "national id 111 already used")
	count, _ := s.store.Count(s.ctx)
	s.Equal(1, count)
}

func (s *StoreContractSuite) TestUniqueEmail() {
	s.save(ana())

	dup := &models.Dummy{Name: "Eve", NationalID: ptr(int64(444)), Email: ptr("a@x.com")}
	_, err := s.store.Save(s.ctx, dup)

	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	s.Contains(err.Error(), "email a@x.com already used")
}

func (s *StoreContractSuite) TestUpdateCannotStealUniqueValues() {
	first := s.save(ana())
	second := s.save(&models.Dummy{Name: "Bob", NationalID: ptr(int64(222)), Email: ptr("b@x.com")})

	steal := second.Clone()
	steal.NationalID = first.NationalID
	_, err := s.store.Save(s.ctx, steal)
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	found, err := s.store.FindByID(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Equal(int64(222), *found.NationalID)
}

func (s *StoreContractSuite) TestFindAllOrderedByID() {
	empty, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)

	a := s.save(ana())
	b := s.save(&models.Dummy{Name: "Bob", NationalID: ptr(int64(222))})
	c := s.save(&models.Dummy{Name: "Ana"})

	all, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]models.DummyID{a.ID, b.ID, c.ID}, []models.DummyID{all[0].ID, all[1].ID, all[2].ID})
}

func (s *StoreContractSuite) TestDelete() {
	saved := s.save(ana())

	s.Require().NoError(s.store.Delete(s.ctx, saved.ID))

	_, err := s.store.FindByID(s.ctx, saved.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, saved.ID), sentinel.ErrNotFound)

	// Unique values are released with the record.
	again := s.save(ana())
	s.NotEqual(saved.ID, again.ID)
}

func (s *StoreContractSuite) TestReturnedRecordsAreCopies() {
	saved := s.save(ana())
	saved.Name = "mutated"
	*saved.Email = "mutated@x.com"

	found, err := s.store.FindByID(s.ctx, saved.ID)
	s.Require().NoError(err)
	s.Equal("Ana", found.Name)
	s.Equal("a@x.com", *found.Email)
}

func (s *StoreContractSuite) TestSaveNil() {
	_, err := s.store.Save(s.ctx, nil)
	s.Error(err)
	s.False(errors.Is(err, sentinel.ErrAlreadyUsed))
}
