//go:build integration

package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"dummyapi/internal/dummy/models"
	"dummyapi/internal/dummy/service"
	"dummyapi/internal/dummy/store"
	dErrors "dummyapi/pkg/domain-errors"
	"dummyapi/pkg/testutil/containers"
)

type DummyTxSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	svc      *service.Service
}

func TestDummyTxSuite(t *testing.T) {
	suite.Run(t, new(DummyTxSuite))
}

func (s *DummyTxSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *DummyTxSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
	s.store = store.NewPostgres(s.postgres.DB)
	s.svc = service.New(s.store, service.WithTx(newDummyPostgresTx(s.postgres.DB)))
}

func (s *DummyTxSuite) TestRollbackOnError() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := newDummyPostgresTx(s.postgres.DB).RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.Save(ctx, &models.Dummy{Name: "Ana"}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *DummyTxSuite) TestNestedCallJoinsOuterTx() {
	ctx := context.Background()
	tx := newDummyPostgresTx(s.postgres.DB)

	err := tx.RunInTx(ctx, func(outer context.Context) error {
		return tx.RunInTx(outer, func(inner context.Context) error {
			_, err := s.store.Save(inner, &models.Dummy{Name: "Ana"})
			return err
		})
	})
	s.Require().NoError(err)

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *DummyTxSuite) TestServiceCreateConflictThroughTx() {
	ctx := context.Background()
	dni := int64(111)

	_, err := s.svc.Create(ctx, &models.Dummy{Name: "Ana", NationalID: &dni})
	s.Require().NoError(err)

	_, err = s.svc.Create(ctx, &models.Dummy{Name: "Bob", NationalID: &dni})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}
