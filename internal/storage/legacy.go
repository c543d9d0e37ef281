package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type legacyDB struct {
	Users map[string]struct {
		Balance decimal.Decimal `json:"balance"`
		Name    string          `json:"name"`
	} `json:"users"`
	Deposits map[string]struct {
		UserID int64           `json:"userId"`
		Amount decimal.Decimal `json:"amount"`
		Crypto string          `json:"crypto"`
		Status string          `json:"status"`
	} `json:"deposits"`
	Orders map[string]struct {
		UserID int64           `json:"userId"`
		Svc    string          `json:"svc"`
		Qty    int64           `json:"qty"`
		Link   string          `json:"link"`
		Total  decimal.Decimal `json:"total"`
		Status string          `json:"status"`
	} `json:"orders"`
}

// DecodeLegacy reads the JSON database file written by the previous bot.
// Order statuses there are capitalized; they are lowered to match ours.
func DecodeLegacy(r io.Reader) (*State, error) {
	var db legacyDB
	if err := json.NewDecoder(r).Decode(&db); err != nil {
		return nil, fmt.Errorf("decode legacy database: %w", err)
	}

	state := NewState()
	for key, u := range db.Users {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("user id %q: %w", key, err)
		}
		state.Users[id] = UserState{Balance: u.Balance, DisplayName: u.Name}
	}
	for id, d := range db.Deposits {
		state.Deposits[id] = DepositState{
			UserID:   d.UserID,
			Amount:   d.Amount,
			Currency: d.Crypto,
			Status:   strings.ToLower(d.Status),
		}
	}
	for id, o := range db.Orders {
		state.Orders[id] = OrderState{
			UserID:      o.UserID,
			ServiceName: o.Svc,
			Quantity:    o.Qty,
			Link:        o.Link,
			Total:       o.Total,
			Status:      strings.ToLower(o.Status),
		}
	}

	return state, nil
}
