// Package storefront wires the client-side state of one device into a single
// application object.
package storefront

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/address"
	"github.com/a2b-grocery/storefront/pkg/api"
	"github.com/a2b-grocery/storefront/pkg/bag"
	"github.com/a2b-grocery/storefront/pkg/cart"
	"github.com/a2b-grocery/storefront/pkg/catalog"
	"github.com/a2b-grocery/storefront/pkg/checkout"
	"github.com/a2b-grocery/storefront/pkg/config"
	"github.com/a2b-grocery/storefront/pkg/device"
	"github.com/a2b-grocery/storefront/pkg/geo"
	"github.com/a2b-grocery/storefront/pkg/language"
	"github.com/a2b-grocery/storefront/pkg/models"
	"github.com/a2b-grocery/storefront/pkg/session"
	"github.com/a2b-grocery/storefront/pkg/storage"
)

type App struct {
	Config *config.Config
	Logger *zap.Logger
	Store  storage.Store

	Device    *device.Identity
	Language  *language.Preference
	API       *api.Client
	Session   *session.Manager
	Addresses *address.Manager
	Geocoder  *geo.Geocoder
	Catalog   *catalog.Browser
	Checkout  checkout.Flow

	// Exactly one of Bag and Cart is set, depending on CART_MODE.
	Bag  *bag.Synchronizer
	Cart *cart.Cart
}

// New builds the application. orderLog is only used in local cart mode; nil
// selects the durable-store log.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, store storage.Store, orderLog checkout.OrderLog) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		Store:  store,
	}

	app.Device = device.NewIdentity(store, logger.Named("device"))
	app.Language = language.Load(ctx, store, cfg.DefaultLanguage, logger.Named("language"))

	app.API = api.New(api.Options{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.APITimeout,
		Device:   app.Device,
		Language: app.Language,
		Token:    app.token,
		OnUnauthorized: func(ctx context.Context) {
			if app.Session != nil {
				app.Session.Expire(ctx)
			}
		},
		Logger: logger.Named("api"),
	})

	var auth session.Authenticator
	if cfg.CartMode == config.CartModeLocal {
		demo, err := session.NewDemoAuthenticator(cfg.DemoOTP)
		if err != nil {
			return nil, err
		}
		auth = demo
	} else {
		auth = session.NewAPIAuthenticator(app.API)
	}
	app.Session = session.NewManager(ctx, store, auth, logger.Named("session"))

	app.Geocoder = geo.NewGeocoder(cfg.GoogleMapsAPIKey, cfg.APITimeout, logger.Named("geo"))
	app.Addresses = address.NewManager(app.API, app.Geocoder, app.Device, logger.Named("address"))
	app.Catalog = catalog.NewBrowser(app.API, logger.Named("catalog"))

	switch cfg.CartMode {
	case config.CartModeLocal:
		app.Cart = cart.New(store, logger.Named("cart"))
		if orderLog == nil {
			orderLog = checkout.NewStoreOrderLog(store, logger.Named("orders"))
		}
		app.Checkout = checkout.NewLocalFlow(app.Cart, orderLog, app.Session, app.Addresses, cfg.DeliveryFee(), logger.Named("checkout"))
	case config.CartModeBag:
		app.Bag = bag.NewSynchronizer(app.API, app.Session, cfg.BagDebounce, logger.Named("bag"))
		app.Checkout = checkout.NewBagFlow(app.API, app.Bag, app.Session, app.Addresses, cfg.DeliveryFee(), logger.Named("checkout"))
	default:
		return nil, fmt.Errorf("unknown cart mode %q", cfg.CartMode)
	}

	app.Session.Subscribe(app.onAuthChange)
	return app, nil
}

func (a *App) token() string {
	if a.Session == nil {
		return ""
	}
	return a.Session.Token()
}

// onAuthChange moves the address flow and the bag to the new session.
func (a *App) onAuthChange(ctx context.Context, s *models.Session) {
	ctx = context.WithoutCancel(ctx)

	a.Addresses.Switch(ctx, s.IsRegistered())

	if a.Bag == nil {
		return
	}
	a.Bag.Reset()
	if s.IsAuthenticated() {
		if err := a.Bag.Refresh(ctx); err != nil {
			a.Logger.Warn("failed to load bag after sign in", zap.Error(err))
		}
	}
}

// Start loads the state that depends on the persisted session.
func (a *App) Start(ctx context.Context) {
	a.Logger.Info("starting storefront",
		zap.String("cart_mode", a.Config.CartMode),
		zap.String("device_id", a.Device.ID(ctx)),
		zap.String("session_state", string(a.Session.State())))

	a.Addresses.Switch(ctx, a.Session.IsRegistered())
	if a.Bag != nil {
		if err := a.Bag.Refresh(ctx); err != nil {
			a.Logger.Warn("failed to load bag on start", zap.Error(err))
		}
	}
}

func (a *App) Logout(ctx context.Context) error {
	return a.Session.Logout(ctx)
}

// Close waits for scheduled bag edits to be sent.
func (a *App) Close() {
	if a.Bag != nil {
		a.Bag.Wait()
	}
}

// DeliveryFee is the fixed fee of the active checkout flow.
func (a *App) DeliveryFee() float64 {
	return a.Config.DeliveryFee()
}
