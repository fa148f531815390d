package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/chapelhq/steward/internal/account"
)

func TestService_Create(t *testing.T) {
	type args struct {
		params account.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *account.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: account.CreateParams{
					Name:           "Main Fund",
					Type:           account.TypeAsset,
					Currency:       "EUR",
					OpeningBalance: decimal.NewFromInt(1000),
				},
			},
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, acc *account.Account) error {
						acc.ID = uuid.New()
						return nil
					})
			},
			wantErr: false,
		},
		{
			name: "RepoError",
			args: args{
				params: account.CreateParams{
					Name: "Main Fund",
					Type: account.TypeAsset,
				},
			},
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := account.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := account.NewService(repo)
			got, err := svc.Create(context.Background(), uuid.New(), tt.args.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, got)
			assert.NotEmpty(t, got.ID)
		})
	}
}

func TestService_Update_PartialMerge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	svc := account.NewService(repo)

	churchID := uuid.New()
	accID := uuid.New()

	existing := &account.Account{
		ID:       accID,
		ChurchID: churchID,
		Name:     "Main Fund",
		Type:     account.TypeAsset,
		Balance:  decimal.NewFromInt(1000),
		Currency: "EUR",
	}

	repo.EXPECT().GetAccount(gomock.Any(), churchID, accID).Return(existing, nil)
	repo.EXPECT().
		UpdateAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, acc *account.Account) error {
			assert.Equal(t, "Building Fund", acc.Name)
			assert.Equal(t, "EUR", acc.Currency) // untouched
			return nil
		})

	newName := "Building Fund"

	got, err := svc.Update(context.Background(), churchID, accID, account.UpdateParams{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Building Fund", got.Name)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(1000)))
}

func TestService_Update_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	svc := account.NewService(repo)

	churchID := uuid.New()
	accID := uuid.New()

	repo.EXPECT().GetAccount(gomock.Any(), churchID, accID).Return(nil, account.ErrNotFound)

	_, err := svc.Update(context.Background(), churchID, accID, account.UpdateParams{})
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	svc := account.NewService(repo)

	churchID := uuid.New()
	accID := uuid.New()

	repo.EXPECT().DeleteAccount(gomock.Any(), churchID, accID).Return(account.ErrNotFound)

	err := svc.Delete(context.Background(), churchID, accID)
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestService_List_TypeFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := account.NewMockRepository(ctrl)
	svc := account.NewService(repo)

	churchID := uuid.New()
	assetType := account.TypeAsset
	filter := account.ListFilter{Type: &assetType}

	repo.EXPECT().
		ListAccounts(gomock.Any(), churchID, filter).
		Return([]*account.Account{
			{ID: uuid.New(), Type: account.TypeAsset},
			{ID: uuid.New(), Type: account.TypeAsset},
		}, nil)

	got, err := svc.List(context.Background(), churchID, filter)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
