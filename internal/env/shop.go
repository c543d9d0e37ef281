package environment

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"smm-bot/internal/config"
	"smm-bot/internal/stories/deposits"
)

// shopSettings is ShopConfig parsed and validated.
type shopSettings struct {
	MinimumDeposit decimal.Decimal
	Presets        []decimal.Decimal
	Addresses      deposits.StaticAddressBook
	// Currencies lists the currencies with an address, in display order.
	Currencies []deposits.Currency
}

func parseShopSettings(cfg config.ShopConfig) (*shopSettings, error) {
	minimum, err := decimal.NewFromString(cfg.MinimumDeposit)
	if err != nil || !minimum.IsPositive() {
		return nil, errors.Errorf("minimum deposit %q must be a positive amount", cfg.MinimumDeposit)
	}

	presets := make([]decimal.Decimal, 0, len(cfg.DepositPresets))
	for _, raw := range cfg.DepositPresets {
		amount, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "deposit preset %q", raw)
		}
		if amount.LessThan(minimum) {
			return nil, errors.Errorf("deposit preset %s is below the minimum %s", amount, minimum)
		}
		presets = append(presets, amount)
	}

	addresses := make(deposits.StaticAddressBook, len(cfg.PaymentAddresses))
	for rawCurrency, address := range cfg.PaymentAddresses {
		currency, ok := deposits.ParseCurrency(strings.ToUpper(strings.TrimSpace(rawCurrency)))
		if !ok {
			return nil, errors.Errorf("payment address for unknown currency %q", rawCurrency)
		}
		address = strings.TrimSpace(address)
		if address == "" {
			return nil, errors.Errorf("empty payment address for %s", currency)
		}
		addresses[currency] = address
	}

	currencies := lo.Filter(deposits.Currencies, func(c deposits.Currency, _ int) bool {
		_, ok := addresses[c]
		return ok
	})
	if len(currencies) == 0 {
		return nil, errors.New("no payment addresses configured")
	}

	return &shopSettings{
		MinimumDeposit: minimum,
		Presets:        presets,
		Addresses:      addresses,
		Currencies:     currencies,
	}, nil
}
