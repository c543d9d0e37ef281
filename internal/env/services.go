package environment

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"smm-bot/internal/config"
	"smm-bot/internal/ids"
	"smm-bot/internal/localization"
	"smm-bot/internal/storage"
	"smm-bot/internal/stories/catalog"
	"smm-bot/internal/stories/deposits"
	"smm-bot/internal/stories/ledger"
	"smm-bot/internal/stories/orders"
	"smm-bot/internal/stories/users"
	"smm-bot/internal/telegram"
	"smm-bot/internal/telegram/cmds"
	"smm-bot/internal/telegram/flows/deposit"
	"smm-bot/internal/telegram/flows/order"
	"smm-bot/internal/telegram/flows/support"
	"smm-bot/internal/telegram/states"
	"smm-bot/internal/workers"
	"smm-bot/internal/workers/pendingdeposits"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Storage   pinger
	Localizer *localization.Service
	Bot       *telegram.Bot
	Router    *telegram.Router
	Pool      *telegram.Pool
	Workers   *workers.Manager
}

func newServices(ctx context.Context, clients *Clients, cfg *config.Config, shop *shopSettings, logger *slog.Logger) (*Services, error) {
	storageImpl := storage.New(clients.SQLiteDB.DB)
	if err := storageImpl.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "migrate storage")
	}

	lang := cfg.Shop.Language
	l10n, err := localization.NewService(lang)
	if err != nil {
		return nil, errors.Wrap(err, "localization")
	}

	cat, err := catalog.Load(cfg.Shop.CatalogPath)
	if err != nil {
		return nil, errors.Wrap(err, "catalog")
	}

	idGen := ids.NewGenerator()
	ledgerService := ledger.NewService(storageImpl, logger.With("component", "ledger"))
	userService := users.NewService(storageImpl)
	depositService := deposits.NewService(
		storageImpl,
		ledgerService,
		shop.Addresses,
		idGen,
		shop.MinimumDeposit,
		logger.With("component", "deposits"),
	)
	orderService := orders.NewService(storageImpl, ledgerService, cat, idGen, logger.With("component", "orders"))

	bot := telegram.NewBot(clients.TelegramBot, cfg.Telegram.AdminID)
	stateManager := states.NewManager()
	adminChecker := telegram.NewAdminChecker(cfg.Telegram.AdminID)
	flowLogger := logger.With("component", "telegram")

	router := telegram.NewRouter(
		bot,
		stateManager,
		adminChecker,
		l10n,
		lang,
		flowLogger,
		cmds.NewMenuCommand(bot, stateManager, userService, ledgerService, adminChecker, l10n, lang, flowLogger),
		cmds.NewMyOrdersCommand(bot, orderService, l10n, lang),
		cmds.NewAdminCommand(bot, userService, depositService, orderService, l10n, lang),
		deposit.NewHandler(bot, stateManager, depositService, l10n, shop.Presets, shop.Currencies, lang, flowLogger),
		order.NewHandler(bot, stateManager, orderService, cat, ledgerService, l10n, lang, flowLogger),
		support.NewHandler(bot, stateManager, l10n, lang, flowLogger),
	)

	workerManager := workers.NewManager(
		logger.With("component", "workers"),
		pendingdeposits.NewWorker(
			depositService,
			bot,
			l10n,
			lang,
			cfg.Workers.PendingDepositsSchedule,
			cfg.Workers.PendingDepositsMinAge,
			logger.With("worker", "pending_deposits"),
		),
	)

	return &Services{
		Storage:   storageImpl,
		Localizer: l10n,
		Bot:       bot,
		Router:    router,
		Pool:      telegram.NewPool(router, cfg.Shop.DispatchShards, flowLogger),
		Workers:   workerManager,
	}, nil
}
