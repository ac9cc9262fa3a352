package container

import (
	"fmt"

	"github.com/garyjia/leave-approval/internal/application/conflict"
	"github.com/garyjia/leave-approval/internal/application/dispatcher"
	"github.com/garyjia/leave-approval/internal/application/ledger"
	"github.com/garyjia/leave-approval/internal/application/port"
	"github.com/garyjia/leave-approval/internal/application/service"
	"github.com/garyjia/leave-approval/internal/application/workflow"
	"github.com/garyjia/leave-approval/internal/domain/notification"
	"github.com/garyjia/leave-approval/internal/i18n"
	infraLark "github.com/garyjia/leave-approval/internal/infrastructure/external/lark"
	"github.com/garyjia/leave-approval/internal/infrastructure/persistence/repository"
	"github.com/garyjia/leave-approval/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/leave-approval/pkg/database"
	"go.uber.org/zap"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// MessagingBundle holds the outbound message channel.
type MessagingBundle struct {
	// Client is nil when Lark delivery is disabled
	Client *infraLark.SDKClient
	Sender port.MessageSender
}

// ServiceDeps holds dependencies for creating application services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Translator *i18n.Translator
	Sender     port.MessageSender
	Logger     *zap.Logger
}

// WorkflowDeps holds dependencies for creating the workflow engine.
type WorkflowDeps struct {
	Repos     *RepositoryBundle
	TxManager port.TransactionManager
	Directory port.Directory
	Logger    *zap.Logger
}

// ProvideDatabase opens the SQLite store and applies the embedded migrations.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).RunMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Request:        repository.NewRequestRepository(db.DB, logger),
		Employee:       repository.NewEmployeeRepository(db.DB, logger),
		DepartmentHead: repository.NewDepartmentHeadRepository(db.DB, logger),
		History:        repository.NewHistoryRepository(db.DB, logger),
	}, nil
}

// ProvideMessaging returns a Lark-backed sender when enabled, otherwise a
// sender that only logs what it would have sent.
func ProvideMessaging(cfg *LarkConfig, logger *zap.Logger) (*MessagingBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("lark config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if !cfg.Enabled {
		logger.Info("Lark delivery disabled, notifications go to the log")
		return &MessagingBundle{Sender: infraLark.NewLogMessenger(logger)}, nil
	}

	client := infraLark.NewSDKClient(infraLark.Config{
		AppID:         cfg.AppID,
		AppSecret:     cfg.AppSecret,
		ReceiveIDType: cfg.ReceiveIDType,
		Timeout:       cfg.APITimeout,
	}, logger)

	return &MessagingBundle{
		Client: client,
		Sender: infraLark.NewMessenger(client, logger),
	}, nil
}

// ProvideTranslator loads the bundled message catalogs.
func ProvideTranslator(cfg *NotificationConfig) (*i18n.Translator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("notification config is required")
	}
	return i18n.NewTranslator(cfg.Locale)
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service deps are required")
	}
	if deps.Repos == nil || deps.TxManager == nil {
		return nil, fmt.Errorf("repositories and transaction manager are required")
	}
	if deps.Translator == nil || deps.Sender == nil {
		return nil, fmt.Errorf("translator and message sender are required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	logAdapter := NewZapAdapter(deps.Logger)

	return &ServiceBundle{
		Directory: service.NewDirectoryService(
			deps.Repos.Employee,
			deps.Repos.DepartmentHead,
			deps.TxManager,
			logAdapter,
		),
		Notification: service.NewNotificationService(
			deps.Translator,
			deps.Sender,
			logAdapter,
		),
	}, nil
}

// ProvideDispatcher creates the intent dispatcher and routes every intent
// type to the notification service.
func ProvideDispatcher(notifications service.NotificationService, logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification service is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	disp := dispatcher.NewDispatcher(
		dispatcher.WithLogger(&dispatcherLoggerAdapter{logger: logger}),
	)

	for _, t := range notification.AllTypes() {
		disp.SubscribeNamed(t, "notification.deliver", notifications.Deliver)
	}

	logger.Info("Dispatcher created", zap.Int("intent_types", len(notification.AllTypes())))
	return disp, nil
}

// ProvideWorkflowEngine creates the approval workflow engine together with
// the balance ledger and conflict detector it runs inside its transactions.
func ProvideWorkflowEngine(deps *WorkflowDeps) (workflow.ApprovalWorkflow, error) {
	if deps == nil {
		return nil, fmt.Errorf("workflow deps are required")
	}
	if deps.Repos == nil || deps.TxManager == nil || deps.Directory == nil {
		return nil, fmt.Errorf("repositories, transaction manager and directory are required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	engine := workflow.NewEngine(
		deps.Repos.Request,
		deps.Repos.History,
		deps.TxManager,
		ledger.NewBalanceLedger(deps.Repos.Employee),
		conflict.NewDetector(deps.Repos.Request),
		deps.Directory,
		workflow.WithLogger(NewZapAdapter(deps.Logger)),
	)

	deps.Logger.Info("Workflow engine created")
	return engine, nil
}
