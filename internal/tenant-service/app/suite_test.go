package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/pkg/apperr"
	"github.com/jcmexdev/marketplace/internal/store/memory"
	"github.com/jcmexdev/marketplace/internal/tenant"
)

type TenantSuite struct {
	suite.Suite
	ctx    context.Context
	svc    *Service
	tenant tenant.Tenant
}

func (s *TenantSuite) SetupTest() {
	s.ctx = context.Background()
	s.svc = NewService(memory.New())

	t, err := s.svc.Create(s.ctx, auth.Principal{ID: "owner"}, Details{Name: "Shop"})
	s.Require().NoError(err)
	s.tenant = t
}

func (s *TenantSuite) TestResolverSeesOwner() {
	got, err := tenant.NewStoreResolver(s.svc.repo).Resolve(s.ctx, s.tenant.ID)
	s.Require().NoError(err)
	s.Equal("owner", got.OwnerID)
}

func (s *TenantSuite) TestUpdateRequiresName() {
	_, err := s.svc.Update(s.ctx, s.tenant.ID, Details{})
	s.Equal(apperr.KindBadRequest, apperr.KindOf(err))
}

func (s *TenantSuite) TestDeletedTenantIsNotResolved() {
	_, err := s.svc.Delete(s.ctx, s.tenant.ID)
	s.Require().NoError(err)

	_, err = tenant.NewStoreResolver(s.svc.repo).Resolve(s.ctx, s.tenant.ID)
	s.Error(err)
}

func TestTenantSuite(t *testing.T) {
	suite.Run(t, new(TenantSuite))
}
