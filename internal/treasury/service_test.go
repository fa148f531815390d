package treasury_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/chapelhq/steward/internal/account"
	"github.com/chapelhq/steward/internal/budget"
	"github.com/chapelhq/steward/internal/treasury"
)

func newService(repo treasury.Repository) *treasury.Service {
	return treasury.NewService(repo, budget.NewGuard(decimal.NewFromInt(500)), "EUR")
}

func assetAccount(churchID uuid.UUID, balance int64) *account.Account {
	return &account.Account{
		ID:       uuid.New(),
		ChurchID: churchID,
		Type:     account.TypeAsset,
		Balance:  decimal.NewFromInt(balance),
		Currency: "EUR",
	}
}

func TestService_Create_AssetTransferUsesRateAsymmetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	src := assetAccount(churchID, 1000)
	dst := assetAccount(churchID, 500)

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().LockAccountPair(gomock.Any(), churchID, src.ID, dst.ID).Return(src, dst, nil)

	balances := map[uuid.UUID]decimal.Decimal{}

	ltx.EXPECT().
		SetAccountBalance(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
			balances[id] = balance
			return nil
		}).
		Times(2)
	ltx.EXPECT().
		InsertTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *treasury.Transaction) error {
			tx.ID = uuid.New()
			return nil
		})
	ltx.EXPECT().Commit().Return(nil)
	ltx.EXPECT().Rollback().Return(nil)

	got, err := svc.Create(context.Background(), churchID, uuid.New(), treasury.CreateParams{
		Description:   "transfer to building fund",
		Amount:        decimal.NewFromInt(200),
		ExchangeRate:  decimal.RequireFromString("1.1"),
		SourceID:      src.ID,
		DestinationID: dst.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, treasury.StatusCompleted, got.Status)

	// Source loses the raw amount, destination gains the rate-adjusted one.
	assert.True(t, balances[src.ID].Equal(decimal.NewFromInt(800)), "source balance = %s", balances[src.ID])
	assert.True(t, balances[dst.ID].Equal(decimal.NewFromInt(720)), "destination balance = %s", balances[dst.ID])
}

func TestService_Create_ExpenseAboveThresholdHeld(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	ministryID := uuid.New()
	src := assetAccount(churchID, 1000)
	dst := &account.Account{ID: uuid.New(), ChurchID: churchID, Type: account.TypeExpense}

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().LockAccountPair(gomock.Any(), churchID, src.ID, dst.ID).Return(src, dst, nil)
	// No SetAccountBalance calls: a held transaction must not touch balances.
	ltx.EXPECT().
		InsertTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *treasury.Transaction) error {
			assert.Equal(t, treasury.StatusPendingApproval, tx.Status)
			tx.ID = uuid.New()
			return nil
		})
	ltx.EXPECT().Commit().Return(nil)
	ltx.EXPECT().Rollback().Return(nil)

	got, err := svc.Create(context.Background(), churchID, uuid.New(), treasury.CreateParams{
		Amount:        decimal.NewFromInt(600),
		SourceID:      src.ID,
		DestinationID: dst.ID,
		MinistryID:    &ministryID,
	})
	require.NoError(t, err)
	assert.Equal(t, treasury.StatusPendingApproval, got.Status)
	assert.True(t, src.Balance.Equal(decimal.NewFromInt(1000)))
}

func TestService_Create_ExpenseAtOrBelowThresholdCompletes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	ministryID := uuid.New()
	src := assetAccount(churchID, 1000)
	dst := &account.Account{ID: uuid.New(), ChurchID: churchID, Type: account.TypeExpense}

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().LockAccountPair(gomock.Any(), churchID, src.ID, dst.ID).Return(src, dst, nil)

	var srcBalance decimal.Decimal

	// Only the asset side is written; the expense account has no balance.
	ltx.EXPECT().
		SetAccountBalance(gomock.Any(), src.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, balance decimal.Decimal) error {
			srcBalance = balance
			return nil
		})
	ltx.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(nil)
	ltx.EXPECT().Commit().Return(nil)
	ltx.EXPECT().Rollback().Return(nil)

	got, err := svc.Create(context.Background(), churchID, uuid.New(), treasury.CreateParams{
		Amount:        decimal.NewFromInt(500),
		SourceID:      src.ID,
		DestinationID: dst.ID,
		MinistryID:    &ministryID,
	})
	require.NoError(t, err)
	assert.Equal(t, treasury.StatusCompleted, got.Status)
	assert.True(t, srcBalance.Equal(decimal.NewFromInt(500)))
}

func TestService_Create_IncomeCreditsDestinationOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	src := &account.Account{ID: uuid.New(), ChurchID: churchID, Type: account.TypeIncome}
	dst := assetAccount(churchID, 100)

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().LockAccountPair(gomock.Any(), churchID, src.ID, dst.ID).Return(src, dst, nil)
	ltx.EXPECT().
		SetAccountBalance(gomock.Any(), dst.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, balance decimal.Decimal) error {
			assert.True(t, balance.Equal(decimal.NewFromInt(350)))
			return nil
		})
	ltx.EXPECT().
		InsertTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *treasury.Transaction) error {
			// Defaults fill in when the request omits them.
			assert.Equal(t, "EUR", tx.Currency)
			assert.True(t, tx.ExchangeRate.Equal(decimal.NewFromInt(1)))
			assert.False(t, tx.Date.IsZero())
			return nil
		})
	ltx.EXPECT().Commit().Return(nil)
	ltx.EXPECT().Rollback().Return(nil)

	_, err := svc.Create(context.Background(), churchID, uuid.New(), treasury.CreateParams{
		Description:   "sunday offering",
		Amount:        decimal.NewFromInt(250),
		SourceID:      src.ID,
		DestinationID: dst.ID,
	})
	require.NoError(t, err)
}

func TestService_Create_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	accID := uuid.New()

	type testCase struct {
		name    string
		params  treasury.CreateParams
		wantErr error
	}

	tests := []testCase{
		{
			name: "ZeroAmount",
			params: treasury.CreateParams{
				SourceID:      uuid.New(),
				DestinationID: uuid.New(),
			},
			wantErr: treasury.ErrInvalidAmount,
		},
		{
			name: "NegativeAmount",
			params: treasury.CreateParams{
				Amount:        decimal.NewFromInt(-5),
				SourceID:      uuid.New(),
				DestinationID: uuid.New(),
			},
			wantErr: treasury.ErrInvalidAmount,
		},
		{
			name: "MissingSource",
			params: treasury.CreateParams{
				Amount:        decimal.NewFromInt(10),
				DestinationID: uuid.New(),
			},
			wantErr: treasury.ErrInvalidAccount,
		},
		{
			name: "SameAccount",
			params: treasury.CreateParams{
				Amount:        decimal.NewFromInt(10),
				SourceID:      accID,
				DestinationID: accID,
			},
			wantErr: treasury.ErrInvalidAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), churchID, uuid.New(), tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Create_MissingAccountRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().
		LockAccountPair(gomock.Any(), churchID, gomock.Any(), gomock.Any()).
		Return(nil, nil, account.ErrNotFound)
	ltx.EXPECT().Rollback().Return(nil)
	// No Commit, no inserts: the unit of work is abandoned whole.

	_, err := svc.Create(context.Background(), churchID, uuid.New(), treasury.CreateParams{
		Amount:        decimal.NewFromInt(10),
		SourceID:      uuid.New(),
		DestinationID: uuid.New(),
	})
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestService_Amend_AppliesDeltaWithStoredRate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	userID := uuid.New()
	src := assetAccount(churchID, 800) // after the original 200 expense
	dst := assetAccount(churchID, 720) // credited 200×1.1 originally

	txID := uuid.New()
	stored := &treasury.Transaction{
		ID:            txID,
		ChurchID:      churchID,
		Description:   "supplies",
		Amount:        decimal.NewFromInt(200),
		ExchangeRate:  decimal.RequireFromString("1.1"),
		SourceID:      src.ID,
		DestinationID: dst.ID,
		Status:        treasury.StatusCompleted,
	}

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().GetTransactionForUpdate(gomock.Any(), churchID, txID).Return(stored, nil)
	ltx.EXPECT().LockAccountPair(gomock.Any(), churchID, src.ID, dst.ID).Return(src, dst, nil)

	balances := map[uuid.UUID]decimal.Decimal{}

	ltx.EXPECT().
		SetAccountBalance(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
			balances[id] = balance
			return nil
		}).
		Times(2)

	var audit *treasury.AuditEntry

	ltx.EXPECT().
		InsertAuditEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *treasury.AuditEntry) error {
			audit = entry
			entry.ID = uuid.New()
			return nil
		})
	ltx.EXPECT().
		UpdateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *treasury.Transaction) error {
			assert.True(t, tx.Amount.Equal(decimal.NewFromInt(500)))
			assert.Equal(t, "corrected supplies", tx.Description)
			return nil
		})
	ltx.EXPECT().Commit().Return(nil)
	ltx.EXPECT().Rollback().Return(nil)

	got, err := svc.Amend(context.Background(), churchID, userID, txID, treasury.AmendParams{
		Amount:      decimal.NewFromInt(500),
		Description: "corrected supplies",
		Reason:      "correction",
	})
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(500)))

	// Source: 800 + 200 - 500 = 500. Destination: 720 - 220 + 550 = 1050.
	assert.True(t, balances[src.ID].Equal(decimal.NewFromInt(500)), "source balance = %s", balances[src.ID])
	assert.True(t, balances[dst.ID].Equal(decimal.NewFromInt(1050)), "destination balance = %s", balances[dst.ID])

	require.NotNil(t, audit)
	assert.True(t, audit.OldAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, audit.NewAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "supplies", audit.OldDescription)
	assert.Equal(t, "corrected supplies", audit.NewDescription)
	assert.Equal(t, "correction", audit.Reason)
	assert.Equal(t, userID, audit.ChangedBy)
}

func TestService_Amend_SameAmountStillAudited(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	src := assetAccount(churchID, 800)
	dst := &account.Account{ID: uuid.New(), ChurchID: churchID, Type: account.TypeExpense}

	txID := uuid.New()
	stored := &treasury.Transaction{
		ID:            txID,
		ChurchID:      churchID,
		Amount:        decimal.NewFromInt(200),
		ExchangeRate:  decimal.NewFromInt(1),
		SourceID:      src.ID,
		DestinationID: dst.ID,
		Status:        treasury.StatusCompleted,
	}

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().GetTransactionForUpdate(gomock.Any(), churchID, txID).Return(stored, nil)
	ltx.EXPECT().LockAccountPair(gomock.Any(), churchID, src.ID, dst.ID).Return(src, dst, nil)
	ltx.EXPECT().
		SetAccountBalance(gomock.Any(), src.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, balance decimal.Decimal) error {
			// Reversing and reapplying the same amount is a numeric no-op.
			assert.True(t, balance.Equal(decimal.NewFromInt(800)))
			return nil
		})
	ltx.EXPECT().
		InsertAuditEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *treasury.AuditEntry) error {
			assert.Equal(t, "amount correction", entry.Reason) // default reason
			return nil
		})
	ltx.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)
	ltx.EXPECT().Commit().Return(nil)
	ltx.EXPECT().Rollback().Return(nil)

	_, err := svc.Amend(context.Background(), churchID, uuid.New(), txID, treasury.AmendParams{
		Amount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
}

func TestService_Amend_PendingSkipsBalances(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	src := assetAccount(churchID, 1000)
	dst := &account.Account{ID: uuid.New(), ChurchID: churchID, Type: account.TypeExpense}

	txID := uuid.New()
	stored := &treasury.Transaction{
		ID:            txID,
		ChurchID:      churchID,
		Amount:        decimal.NewFromInt(900),
		ExchangeRate:  decimal.NewFromInt(1),
		SourceID:      src.ID,
		DestinationID: dst.ID,
		Status:        treasury.StatusPendingApproval,
	}

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().GetTransactionForUpdate(gomock.Any(), churchID, txID).Return(stored, nil)
	ltx.EXPECT().LockAccountPair(gomock.Any(), churchID, src.ID, dst.ID).Return(src, dst, nil)
	// No SetAccountBalance: a pending transaction never touched balances.
	ltx.EXPECT().InsertAuditEntry(gomock.Any(), gomock.Any()).Return(nil)
	ltx.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)
	ltx.EXPECT().Commit().Return(nil)
	ltx.EXPECT().Rollback().Return(nil)

	_, err := svc.Amend(context.Background(), churchID, uuid.New(), txID, treasury.AmendParams{
		Amount: decimal.NewFromInt(700),
	})
	require.NoError(t, err)
}

func TestService_Amend_AuditFailureRollsBackAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	src := assetAccount(churchID, 800)
	dst := &account.Account{ID: uuid.New(), ChurchID: churchID, Type: account.TypeExpense}

	txID := uuid.New()
	stored := &treasury.Transaction{
		ID:            txID,
		ChurchID:      churchID,
		Amount:        decimal.NewFromInt(200),
		ExchangeRate:  decimal.NewFromInt(1),
		SourceID:      src.ID,
		DestinationID: dst.ID,
		Status:        treasury.StatusCompleted,
	}

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().GetTransactionForUpdate(gomock.Any(), churchID, txID).Return(stored, nil)
	ltx.EXPECT().LockAccountPair(gomock.Any(), churchID, src.ID, dst.ID).Return(src, dst, nil)
	ltx.EXPECT().SetAccountBalance(gomock.Any(), src.ID, gomock.Any()).Return(nil)
	ltx.EXPECT().InsertAuditEntry(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	ltx.EXPECT().Rollback().Return(nil)
	// Commit must never be reached; the balance write dies with the rollback.

	_, err := svc.Amend(context.Background(), churchID, uuid.New(), txID, treasury.AmendParams{
		Amount: decimal.NewFromInt(300),
	})
	assert.Error(t, err)
}

func TestService_Approve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	src := assetAccount(churchID, 1000)
	dst := &account.Account{ID: uuid.New(), ChurchID: churchID, Type: account.TypeExpense}

	txID := uuid.New()
	stored := &treasury.Transaction{
		ID:            txID,
		ChurchID:      churchID,
		Amount:        decimal.NewFromInt(600),
		ExchangeRate:  decimal.NewFromInt(1),
		SourceID:      src.ID,
		DestinationID: dst.ID,
		Status:        treasury.StatusPendingApproval,
	}

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().GetTransactionForUpdate(gomock.Any(), churchID, txID).Return(stored, nil)
	ltx.EXPECT().LockAccountPair(gomock.Any(), churchID, src.ID, dst.ID).Return(src, dst, nil)
	ltx.EXPECT().
		SetAccountBalance(gomock.Any(), src.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, balance decimal.Decimal) error {
			assert.True(t, balance.Equal(decimal.NewFromInt(400)))
			return nil
		})
	ltx.EXPECT().
		UpdateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *treasury.Transaction) error {
			assert.Equal(t, treasury.StatusCompleted, tx.Status)
			return nil
		})
	ltx.EXPECT().Commit().Return(nil)
	ltx.EXPECT().Rollback().Return(nil)

	got, err := svc.Approve(context.Background(), churchID, txID)
	require.NoError(t, err)
	assert.Equal(t, treasury.StatusCompleted, got.Status)
}

func TestService_Approve_AlreadyCompleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	txID := uuid.New()

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().
		GetTransactionForUpdate(gomock.Any(), churchID, txID).
		Return(&treasury.Transaction{ID: txID, Status: treasury.StatusCompleted}, nil)
	ltx.EXPECT().Rollback().Return(nil)

	_, err := svc.Approve(context.Background(), churchID, txID)
	assert.ErrorIs(t, err, treasury.ErrImmutableStatus)
}

func TestService_Delete_LeavesBalances(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	txID := uuid.New()

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().
		GetTransactionForUpdate(gomock.Any(), churchID, txID).
		Return(&treasury.Transaction{ID: txID, Status: treasury.StatusCompleted}, nil)
	ltx.EXPECT().SoftDeleteTransaction(gomock.Any(), churchID, txID).Return(nil)
	ltx.EXPECT().Commit().Return(nil)
	ltx.EXPECT().Rollback().Return(nil)

	err := svc.Delete(context.Background(), churchID, txID)
	require.NoError(t, err)
}

func TestService_Delete_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := treasury.NewMockRepository(ctrl)
	ltx := treasury.NewMockLedgerTx(ctrl)
	svc := newService(repo)

	churchID := uuid.New()
	txID := uuid.New()

	repo.EXPECT().Begin(gomock.Any()).Return(ltx, nil)
	ltx.EXPECT().GetTransactionForUpdate(gomock.Any(), churchID, txID).Return(nil, treasury.ErrNotFound)
	ltx.EXPECT().Rollback().Return(nil)

	err := svc.Delete(context.Background(), churchID, txID)
	assert.ErrorIs(t, err, treasury.ErrNotFound)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, treasury.ClassIncome, treasury.Classify(account.TypeIncome, account.TypeAsset))
	assert.Equal(t, treasury.ClassExpense, treasury.Classify(account.TypeAsset, account.TypeExpense))
	assert.Equal(t, treasury.ClassTransfer, treasury.Classify(account.TypeAsset, account.TypeAsset))
	assert.Equal(t, treasury.ClassOther, treasury.Classify(account.TypeLiability, account.TypeExpense))
	assert.Equal(t, treasury.ClassOther, treasury.Classify(account.TypeExpense, account.TypeIncome))
}

// fakeLedger is a minimal in-memory Repository for multi-step scenarios
// where mock choreography would obscure the arithmetic under test.
type fakeLedger struct {
	accounts map[uuid.UUID]*account.Account
	txs      map[uuid.UUID]*treasury.Transaction
	audits   []*treasury.AuditEntry
}

func newFakeLedger(accounts ...*account.Account) *fakeLedger {
	f := &fakeLedger{
		accounts: map[uuid.UUID]*account.Account{},
		txs:      map[uuid.UUID]*treasury.Transaction{},
	}
	for _, acc := range accounts {
		f.accounts[acc.ID] = acc
	}

	return f
}

func (f *fakeLedger) GetTransaction(_ context.Context, _, id uuid.UUID) (*treasury.Transaction, error) {
	tx, ok := f.txs[id]
	if !ok {
		return nil, treasury.ErrNotFound
	}

	return tx, nil
}

func (f *fakeLedger) ListTransactions(context.Context, uuid.UUID, treasury.ListFilter) ([]*treasury.Transaction, error) {
	var txs []*treasury.Transaction
	for _, tx := range f.txs {
		txs = append(txs, tx)
	}

	return txs, nil
}

func (f *fakeLedger) ListAuditEntries(_ context.Context, _, transactionID uuid.UUID) ([]*treasury.AuditEntry, error) {
	var entries []*treasury.AuditEntry
	for _, e := range f.audits {
		if e.TransactionID == transactionID {
			entries = append(entries, e)
		}
	}

	return entries, nil
}

func (f *fakeLedger) Begin(context.Context) (treasury.LedgerTx, error) {
	return &fakeLedgerTx{f: f}, nil
}

type fakeLedgerTx struct {
	f *fakeLedger
}

func (l *fakeLedgerTx) Commit() error   { return nil }
func (l *fakeLedgerTx) Rollback() error { return nil }

func (l *fakeLedgerTx) LockAccountPair(_ context.Context, churchID, sourceID, destID uuid.UUID) (*account.Account, *account.Account, error) {
	src, ok := l.f.accounts[sourceID]
	if !ok || src.ChurchID != churchID {
		return nil, nil, account.ErrNotFound
	}

	dst, ok := l.f.accounts[destID]
	if !ok || dst.ChurchID != churchID {
		return nil, nil, account.ErrNotFound
	}

	return src, dst, nil
}

func (l *fakeLedgerTx) SetAccountBalance(_ context.Context, accountID uuid.UUID, balance decimal.Decimal) error {
	l.f.accounts[accountID].Balance = balance
	return nil
}

func (l *fakeLedgerTx) InsertTransaction(_ context.Context, tx *treasury.Transaction) error {
	tx.ID = uuid.New()
	tx.CreatedAt = time.Now()
	l.f.txs[tx.ID] = tx

	return nil
}

func (l *fakeLedgerTx) GetTransactionForUpdate(ctx context.Context, churchID, id uuid.UUID) (*treasury.Transaction, error) {
	return l.f.GetTransaction(ctx, churchID, id)
}

func (l *fakeLedgerTx) UpdateTransaction(_ context.Context, tx *treasury.Transaction) error {
	l.f.txs[tx.ID] = tx
	return nil
}

func (l *fakeLedgerTx) SoftDeleteTransaction(_ context.Context, _, id uuid.UUID) error {
	delete(l.f.txs, id)
	return nil
}

func (l *fakeLedgerTx) InsertAuditEntry(_ context.Context, entry *treasury.AuditEntry) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	l.f.audits = append(l.f.audits, entry)

	return nil
}

// TestService_FullScenario walks the canonical create → amend → held-expense
// sequence and checks every intermediate balance.
func TestService_FullScenario(t *testing.T) {
	churchID := uuid.New()
	userID := uuid.New()
	ministryID := uuid.New()

	accA := &account.Account{
		ID:       uuid.New(),
		ChurchID: churchID,
		Name:     "Main Fund",
		Type:     account.TypeAsset,
		Balance:  decimal.NewFromInt(1000),
		Currency: "EUR",
	}
	accB := &account.Account{
		ID:       uuid.New(),
		ChurchID: churchID,
		Name:     "Outreach Expenses",
		Type:     account.TypeExpense,
		Currency: "EUR",
	}

	ledger := newFakeLedger(accA, accB)
	svc := newService(ledger)
	ctx := context.Background()

	// createTransaction(amount=200) with threshold=500 → completed, A=800.
	tx, err := svc.Create(ctx, churchID, userID, treasury.CreateParams{
		Description:   "flyers",
		Amount:        decimal.NewFromInt(200),
		SourceID:      accA.ID,
		DestinationID: accB.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, treasury.StatusCompleted, tx.Status)
	assert.True(t, accA.Balance.Equal(decimal.NewFromInt(800)), "A = %s", accA.Balance)

	// updateTransaction(amount=500) → revert +200, apply −500 → A=500.
	amended, err := svc.Amend(ctx, churchID, userID, tx.ID, treasury.AmendParams{
		Amount:      decimal.NewFromInt(500),
		Description: "flyers and venue",
		Reason:      "correction",
	})
	require.NoError(t, err)
	assert.True(t, accA.Balance.Equal(decimal.NewFromInt(500)), "A = %s", accA.Balance)

	entries, err := svc.AuditLog(ctx, churchID, amended.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].OldAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, entries[0].NewAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "correction", entries[0].Reason)

	// createTransaction(amount=600, ministry) → held, A untouched.
	held, err := svc.Create(ctx, churchID, userID, treasury.CreateParams{
		Description:   "retreat deposit",
		Amount:        decimal.NewFromInt(600),
		SourceID:      accA.ID,
		DestinationID: accB.ID,
		MinistryID:    &ministryID,
	})
	require.NoError(t, err)
	assert.Equal(t, treasury.StatusPendingApproval, held.Status)
	assert.True(t, accA.Balance.Equal(decimal.NewFromInt(500)), "A = %s", accA.Balance)

	// Approving it finally applies the effect.
	approved, err := svc.Approve(ctx, churchID, held.ID)
	require.NoError(t, err)
	assert.Equal(t, treasury.StatusCompleted, approved.Status)
	assert.True(t, accA.Balance.Equal(decimal.NewFromInt(-100)), "A = %s", accA.Balance)
}
