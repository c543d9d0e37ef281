// Package actions encodes and decodes the tokens carried by inline buttons.
// A token is "<verb>" or "<verb>:<arg>[:<arg>]"; every verb the bot emits is
// listed here and nothing else decodes.
package actions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindMenu
	KindDeposit
	KindAmount
	KindCustomAmount
	KindPay
	KindPaid
	KindApprove
	KindReject
	KindServices
	KindPlatform
	KindCategory
	KindService
	KindBuy
	KindMyOrders
	KindSupport
	KindReply
	KindAdmin
	KindAdminUsers
	KindAdminDeposits
	KindAdminOrders
	KindSetStatus
)

var kindNames = map[Kind]string{
	KindMenu:          "menu",
	KindDeposit:       "deposit",
	KindAmount:        "amount",
	KindCustomAmount:  "custom_amount",
	KindPay:           "pay",
	KindPaid:          "paid",
	KindApprove:       "approve",
	KindReject:        "reject",
	KindServices:      "services",
	KindPlatform:      "platform",
	KindCategory:      "category",
	KindService:       "service",
	KindBuy:           "buy",
	KindMyOrders:      "my_orders",
	KindSupport:       "support",
	KindReply:         "reply",
	KindAdmin:         "admin",
	KindAdminUsers:    "admin_users",
	KindAdminDeposits: "admin_deposits",
	KindAdminOrders:   "admin_orders",
	KindSetStatus:     "set_status",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// AdminOnly reports whether only the administrator may trigger k.
func (k Kind) AdminOnly() bool {
	switch k {
	case KindApprove, KindReject, KindReply, KindAdmin, KindAdminUsers, KindAdminDeposits, KindAdminOrders, KindSetStatus:
		return true
	}
	return false
}

// Order status codes used by KindSetStatus.
const (
	StatusProcessing = "proc"
	StatusCompleted  = "comp"
	StatusRejected   = "rej"
)

// Action is a decoded token. Only the fields relevant to Kind are set.
type Action struct {
	Kind     Kind
	ID       string
	Amount   decimal.Decimal
	Currency string
	Platform string
	Category string
	UserID   int64
	Status   string
}

func Menu() Action          { return Action{Kind: KindMenu} }
func Deposit() Action       { return Action{Kind: KindDeposit} }
func CustomAmount() Action  { return Action{Kind: KindCustomAmount} }
func Services() Action      { return Action{Kind: KindServices} }
func Buy() Action           { return Action{Kind: KindBuy} }
func MyOrders() Action      { return Action{Kind: KindMyOrders} }
func Support() Action       { return Action{Kind: KindSupport} }
func Admin() Action         { return Action{Kind: KindAdmin} }
func AdminUsers() Action    { return Action{Kind: KindAdminUsers} }
func AdminDeposits() Action { return Action{Kind: KindAdminDeposits} }
func AdminOrders() Action   { return Action{Kind: KindAdminOrders} }
func Pay(currency string) Action {
	return Action{Kind: KindPay, Currency: currency}
}
func Amount(amount decimal.Decimal) Action {
	return Action{Kind: KindAmount, Amount: amount}
}
func Paid(depositID string) Action    { return Action{Kind: KindPaid, ID: depositID} }
func Approve(depositID string) Action { return Action{Kind: KindApprove, ID: depositID} }
func Reject(depositID string) Action  { return Action{Kind: KindReject, ID: depositID} }
func Platform(name string) Action     { return Action{Kind: KindPlatform, Platform: name} }
func Category(platform, name string) Action {
	return Action{Kind: KindCategory, Platform: platform, Category: name}
}
func Service(id string) Action  { return Action{Kind: KindService, ID: id} }
func Reply(userID int64) Action { return Action{Kind: KindReply, UserID: userID} }
func SetStatus(status, orderID string) Action {
	return Action{Kind: KindSetStatus, Status: status, ID: orderID}
}

// Encode renders a as a token. It is the inverse of Parse.
func (a Action) Encode() string {
	switch a.Kind {
	case KindMenu:
		return "menu"
	case KindDeposit:
		return "dep"
	case KindAmount:
		return "amt:" + a.Amount.String()
	case KindCustomAmount:
		return "amt:custom"
	case KindPay:
		return "pay:" + a.Currency
	case KindPaid:
		return "paid:" + a.ID
	case KindApprove:
		return "appr:" + a.ID
	case KindReject:
		return "rej:" + a.ID
	case KindServices:
		return "svc"
	case KindPlatform:
		return "plat:" + a.Platform
	case KindCategory:
		return "cat:" + a.Platform + ":" + a.Category
	case KindService:
		return "svc:" + a.ID
	case KindBuy:
		return "buy"
	case KindMyOrders:
		return "orders"
	case KindSupport:
		return "support"
	case KindReply:
		return "arep:" + strconv.FormatInt(a.UserID, 10)
	case KindAdmin:
		return "adm"
	case KindAdminUsers:
		return "adm:users"
	case KindAdminDeposits:
		return "adm:deps"
	case KindAdminOrders:
		return "adm:orders"
	case KindSetStatus:
		return "st:" + a.Status + ":" + a.ID
	}
	return ""
}

// Parse decodes a token. Anything not produced by Encode is an error.
func Parse(token string) (Action, error) {
	verb, rest, hasArgs := strings.Cut(token, ":")

	if !hasArgs {
		switch verb {
		case "menu":
			return Menu(), nil
		case "dep":
			return Deposit(), nil
		case "svc":
			return Services(), nil
		case "buy":
			return Buy(), nil
		case "orders":
			return MyOrders(), nil
		case "support":
			return Support(), nil
		case "adm":
			return Admin(), nil
		}
		return Action{}, fmt.Errorf("unknown token %q", token)
	}

	if rest == "" {
		return Action{}, fmt.Errorf("token %q: empty argument", token)
	}

	switch verb {
	case "amt":
		if rest == "custom" {
			return CustomAmount(), nil
		}
		amount, err := decimal.NewFromString(rest)
		if err != nil || !amount.IsPositive() {
			return Action{}, fmt.Errorf("token %q: bad amount", token)
		}
		return Amount(amount), nil
	case "pay":
		return Pay(rest), nil
	case "paid":
		return Paid(rest), nil
	case "appr":
		return Approve(rest), nil
	case "rej":
		return Reject(rest), nil
	case "plat":
		return Platform(rest), nil
	case "cat":
		platform, category, ok := strings.Cut(rest, ":")
		if !ok || platform == "" || category == "" {
			return Action{}, fmt.Errorf("token %q: want cat:<platform>:<category>", token)
		}
		return Category(platform, category), nil
	case "svc":
		return Service(rest), nil
	case "arep":
		userID, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("token %q: bad user id", token)
		}
		return Reply(userID), nil
	case "adm":
		switch rest {
		case "users":
			return AdminUsers(), nil
		case "deps":
			return AdminDeposits(), nil
		case "orders":
			return AdminOrders(), nil
		}
	case "st":
		status, orderID, ok := strings.Cut(rest, ":")
		if !ok || orderID == "" {
			return Action{}, fmt.Errorf("token %q: want st:<status>:<order id>", token)
		}
		switch status {
		case StatusProcessing, StatusCompleted, StatusRejected:
			return SetStatus(status, orderID), nil
		}
	}

	return Action{}, fmt.Errorf("unknown token %q", token)
}
