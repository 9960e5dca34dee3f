package services

import (
	"testing"

	"github.com/nicawallet/wallet-api/models"
)

func tx(amount int64, txType models.TransactionType) models.Transaction {
	return models.Transaction{Amount: models.Amount(amount), Type: txType}
}

func TestAggregatorScenario(t *testing.T) {
	// 500 expense + 2000 income, amounts in minor units.
	txs := []models.Transaction{
		tx(50000, models.TypeExpense),
		tx(200000, models.TypeIncome),
	}

	if got := Balance(txs); got != 150000 {
		t.Errorf("Balance = %d, want 150000", got)
	}
	if got := TotalIncome(txs); got != 200000 {
		t.Errorf("TotalIncome = %d, want 200000", got)
	}
	if got := TotalExpense(txs); got != 50000 {
		t.Errorf("TotalExpense = %d, want 50000", got)
	}
}

func TestAggregatorEmpty(t *testing.T) {
	var txs []models.Transaction

	if Balance(txs) != 0 || TotalIncome(txs) != 0 || TotalExpense(txs) != 0 {
		t.Errorf("empty list must aggregate to zeros, got balance=%d income=%d expense=%d",
			Balance(txs), TotalIncome(txs), TotalExpense(txs))
	}
}

func TestAggregatorProperties(t *testing.T) {
	sequences := [][]models.Transaction{
		nil,
		{tx(1, models.TypeIncome)},
		{tx(1, models.TypeExpense)},
		{tx(100, models.TypeIncome), tx(100, models.TypeExpense)},
		{tx(33333, models.TypeIncome), tx(12345, models.TypeExpense), tx(99999, models.TypeIncome)},
		{tx(1, models.TypeExpense), tx(2, models.TypeExpense), tx(3, models.TypeExpense)},
		{tx(750050, models.TypeIncome), tx(1, models.TypeExpense), tx(360065, models.TypeExpense)},
	}

	for i, txs := range sequences {
		balance := Balance(txs)
		income := TotalIncome(txs)
		expense := TotalExpense(txs)

		if balance != income-expense {
			t.Errorf("seq %d: balance %d != income %d - expense %d", i, balance, income, expense)
		}
		if balance < -expense || balance > income {
			t.Errorf("seq %d: balance %d outside [-%d, %d]", i, balance, expense, income)
		}
	}
}

func TestAggregatorOrderIndependent(t *testing.T) {
	forward := []models.Transaction{
		tx(10050, models.TypeIncome),
		tx(2500, models.TypeExpense),
		tx(999, models.TypeIncome),
	}
	reversed := []models.Transaction{forward[2], forward[1], forward[0]}

	if Balance(forward) != Balance(reversed) {
		t.Errorf("balance depends on order: %d vs %d", Balance(forward), Balance(reversed))
	}
}

func TestSummarize(t *testing.T) {
	txs := []models.Transaction{
		tx(200000, models.TypeIncome),
		tx(50000, models.TypeExpense),
	}

	got := Summarize(txs)
	want := models.Summary{Balance: 150000, TotalIncome: 200000, TotalExpense: 50000}
	if got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
}
