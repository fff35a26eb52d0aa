package metrics

import (
	"sort"

	"github.com/dvloznov/hcstc-decisioning/internal/domain"
	"github.com/shopspring/decimal"
)

// Balance reconstructs end-of-day balances. It starts from the combined
// account balance, which is taken to be the balance after the newest
// transaction, and walks backwards adding each amount back. Days without
// transactions carry the previous day's balance.
func Balance(txns []domain.Transaction, accounts []domain.Account) BalanceMetrics {
	var m BalanceMetrics
	var seed decimal.Decimal
	for _, a := range accounts {
		if v, ok := a.SeedBalance(); ok {
			seed = seed.Add(dec(v))
			m.Seeded = true
		}
	}
	if len(txns) == 0 {
		m.Average, m.Minimum, m.Maximum = pence(seed), pence(seed), pence(seed)
		return m
	}

	order := make([]int, len(txns))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return txns[order[a]].Day().After(txns[order[b]].Day())
	})

	endOfDay := make(map[int64]decimal.Decimal, len(txns))
	running := seed
	for _, i := range order {
		key := txns[i].Day().Unix()
		if _, ok := endOfDay[key]; !ok {
			endOfDay[key] = running
		}
		running = running.Add(dec(txns[i].Amount))
	}

	first := txns[order[len(order)-1]].Day()
	last := txns[order[0]].Day()
	var prev, total decimal.Decimal
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if v, ok := endOfDay[d.Unix()]; ok {
			prev = v
		}
		total = total.Add(prev)
		m.Daily = append(m.Daily, DailyBalance{Date: d, Balance: pence(prev)})
	}

	m.Minimum, m.Maximum = m.Daily[0].Balance, m.Daily[0].Balance
	for i, d := range m.Daily {
		m.Minimum = min(m.Minimum, d.Balance)
		m.Maximum = max(m.Maximum, d.Balance)
		if d.Balance < 0 {
			m.OverdraftDays++
			if i > 0 && m.Daily[i-1].Balance >= 0 {
				m.OverdraftTransitions++
			}
		}
	}
	m.Average = pence(total.Div(decimal.NewFromInt(int64(len(m.Daily)))))
	return m
}
