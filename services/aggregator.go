package services

import "github.com/nicawallet/wallet-api/models"

// Pure aggregation over a transaction snapshot. No I/O, no state: these are
// re-run from scratch on every snapshot emission, which is cheap because a
// snapshot is one user's ledger. Integer minor units keep the sums exact and
// independent of summation order.

func Balance(txs []models.Transaction) models.Amount {
	var balance models.Amount
	for _, t := range txs {
		if t.Type == models.TypeIncome {
			balance += t.Amount
		} else {
			balance -= t.Amount
		}
	}
	return balance
}

func TotalIncome(txs []models.Transaction) models.Amount {
	var total models.Amount
	for _, t := range txs {
		if t.Type == models.TypeIncome {
			total += t.Amount
		}
	}
	return total
}

func TotalExpense(txs []models.Transaction) models.Amount {
	var total models.Amount
	for _, t := range txs {
		if t.Type == models.TypeExpense {
			total += t.Amount
		}
	}
	return total
}

// Summarize computes all three totals in one pass.
func Summarize(txs []models.Transaction) models.Summary {
	summary := models.Summary{
		TotalIncome:  TotalIncome(txs),
		TotalExpense: TotalExpense(txs),
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpense
	return summary
}
