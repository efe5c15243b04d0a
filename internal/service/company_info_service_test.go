package service

import (
	"context"
	"testing"

	"github.com/camarpe/camarpe-backend/internal/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyInfoEmptyUntilSaved(t *testing.T) {
	svc := NewCompanyInfoService(repotest.New())

	info, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &CompanyInfoView{}, info)
}

func TestCompanyInfoPartialUpdate(t *testing.T) {
	svc := NewCompanyInfoService(repotest.New())
	ctx := context.Background()

	first, err := svc.Update(ctx, manager, UpdateCompanyInfoInput{
		CNPJ:      ptr(" 12.345.678/0001-90 "),
		Instagram: ptr("@camarpe"),
	})
	require.NoError(t, err)
	require.NotNil(t, first.ID)
	assert.Equal(t, "12.345.678/0001-90", *first.CNPJ)

	second, err := svc.Update(ctx, manager, UpdateCompanyInfoInput{Phone: ptr("38 3221-0000"), Instagram: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, *first.ID, *second.ID)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12.345.678/0001-90", *got.CNPJ)
	assert.Equal(t, "38 3221-0000", *got.Phone)
	assert.Nil(t, got.Instagram)
	assert.Nil(t, got.Website)
}

func TestCompanyInfoUpdateRequiresManagement(t *testing.T) {
	svc := NewCompanyInfoService(repotest.New())
	for _, actor := range []Actor{sales, production, {}} {
		_, err := svc.Update(context.Background(), actor, UpdateCompanyInfoInput{CNPJ: ptr("x")})
		assert.Error(t, err)
	}
	info, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, info.ID)
}
