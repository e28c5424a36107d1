// Package address keeps the delivery address selection of the device in
// step with its authentication state.
package address

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/models"
)

var ErrRegisteredOnly = errors.New("address: operation requires a registered session")

type Client interface {
	ListAddresses(ctx context.Context) ([]models.Address, error)
	GetAddress(ctx context.Context, id int) (*models.Address, error)
	CreateAddress(ctx context.Context, address models.Address) ([]models.Address, error)
	UpdateAddress(ctx context.Context, id int, address models.Address) (*models.Address, error)
	DeleteAddress(ctx context.Context, id int) error
	SetDefaultAddress(ctx context.Context, id int) error
	CreateGuestAddress(ctx context.Context, req models.GuestAddressRequest) (*models.Address, error)
	GetGuestAddress(ctx context.Context) (*models.Address, error)
}

type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}

type DeviceSource interface {
	ID(ctx context.Context) string
}

// Form is the address editor input. Description is filled by reverse
// geocoding when left empty.
type Form struct {
	AddressTag          string           `json:"addressTag" validate:"required"`
	Description         string           `json:"description" validate:"required"`
	Location            *models.Location `json:"location" validate:"required"`
	Street              string           `json:"street"`
	Building            string           `json:"building"`
	Floor               *int             `json:"floor" validate:"omitempty,gte=0"`
	ApartmentNumber     *int             `json:"appartmentNumber" validate:"omitempty,gte=0"`
	Landmark            string           `json:"landmark"`
	ContactPerson       string           `json:"contactPerson"`
	ContactPersonNumber string           `json:"contactPersonNumber"`
	IsDefault           bool             `json:"isDefault"`
}

func (f *Form) toAddress() models.Address {
	return models.Address{
		AddressTag:          strings.TrimSpace(f.AddressTag),
		Description:         strings.TrimSpace(f.Description),
		Street:              f.Street,
		Building:            f.Building,
		Floor:               f.Floor,
		ApartmentNumber:     f.ApartmentNumber,
		Landmark:            f.Landmark,
		Latitude:            f.Location.Lat,
		Longitude:           f.Location.Lng,
		NewContact:          f.ContactPerson != "",
		ContactPerson:       f.ContactPerson,
		ContactPersonNumber: f.ContactPersonNumber,
		IsDefault:           f.IsDefault,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type Manager struct {
	client   Client
	geocoder Geocoder
	device   DeviceSource
	logger   *zap.Logger

	mu  sync.RWMutex
	sel Selection
	// generation changes on every Switch; refreshes started under an older
	// generation drop their result.
	generation uint64
	loading    int
}

func NewManager(client Client, geocoder Geocoder, device DeviceSource, logger *zap.Logger) *Manager {
	return &Manager{
		client:   client,
		geocoder: geocoder,
		device:   device,
		logger:   logger,
		sel:      Guest{},
	}
}

// Selection returns a copy of the current selection.
func (m *Manager) Selection() Selection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.sel)
}

func (m *Manager) HasAddress() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sel.HasAddress()
}

func (m *Manager) Active() *models.Address {
	return m.Selection().Active()
}

func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading > 0
}

func (m *Manager) isRegistered() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sel.(Registered)
	return ok
}

// Switch activates the flow matching the session and loads its data. The
// other flow's state is dropped.
func (m *Manager) Switch(ctx context.Context, registered bool) {
	m.mu.Lock()
	m.generation++
	if registered {
		m.sel = Registered{}
	} else {
		m.sel = Guest{}
	}
	m.mu.Unlock()

	if registered {
		m.RefreshAddresses(ctx)
	} else {
		m.RefreshGuestAddress(ctx)
	}
}

// begin snapshots the generation for a refresh of the given variant. ok is
// false when that variant is not active.
func (m *Manager) begin(registered bool) (gen uint64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, isReg := m.sel.(Registered); isReg != registered {
		return 0, false
	}
	m.loading++
	return m.generation, true
}

// commit applies next only if no Switch happened since begin.
func (m *Manager) commit(gen uint64, next Selection) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading--
	if gen != m.generation {
		return false
	}
	m.sel = next
	return true
}

// RefreshAddresses reloads the registered list and selects the default
// entry, else the first. Failures leave the selection empty.
func (m *Manager) RefreshAddresses(ctx context.Context) {
	gen, ok := m.begin(true)
	if !ok {
		return
	}

	addresses, err := m.client.ListAddresses(ctx)
	if err != nil {
		m.logger.Error("failed to fetch addresses", zap.Error(err))
		m.commit(gen, Registered{})
		return
	}
	if !m.commit(gen, Registered{Addresses: addresses, Selected: models.DefaultAddress(addresses)}) {
		m.logger.Debug("dropping stale address refresh")
	}
}

// RefreshGuestAddress reloads the device's guest address. Failures mean no
// address yet.
func (m *Manager) RefreshGuestAddress(ctx context.Context) {
	gen, ok := m.begin(false)
	if !ok {
		return
	}

	address, err := m.client.GetGuestAddress(ctx)
	if err != nil {
		m.logger.Warn("failed to fetch guest address", zap.Error(err))
		address = nil
	}
	if !m.commit(gen, Guest{Address: address}) {
		m.logger.Debug("dropping stale guest address refresh")
	}
}

// SetSelectedAddress overrides the registered selection without touching
// the server list. Ignored while the guest flow is active.
func (m *Manager) SetSelectedAddress(address *models.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.sel.(Registered)
	if !ok {
		return
	}
	if address != nil {
		a := *address
		address = &a
	}
	reg.Selected = address
	m.sel = reg
}

// SelectByID selects an address from the loaded registered list.
func (m *Manager) SelectByID(id int) (*models.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.sel.(Registered)
	if !ok {
		return nil, ErrRegisteredOnly
	}
	for i := range reg.Addresses {
		if reg.Addresses[i].ID == id {
			a := reg.Addresses[i]
			reg.Selected = &a
			m.sel = reg
			out := a
			return &out, nil
		}
	}
	return nil, fmt.Errorf("address %d not found", id)
}

// SetGuestAddress overrides the guest address. Ignored while the registered
// flow is active.
func (m *Manager) SetGuestAddress(address *models.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sel.(Guest); !ok {
		return
	}
	if address != nil {
		a := *address
		address = &a
	}
	m.sel = Guest{Address: address}
}

func (m *Manager) prepare(ctx context.Context, form *Form) error {
	if strings.TrimSpace(form.Description) == "" && form.Location != nil && m.geocoder != nil {
		desc, err := m.geocoder.Reverse(ctx, form.Location.Lat, form.Location.Lng)
		if err != nil {
			m.logger.Warn("reverse geocoding failed", zap.Error(err))
		}
		form.Description = desc
	}
	return validate.StructCtx(ctx, form)
}

// Create saves a new address in the active flow and makes it the selection.
func (m *Manager) Create(ctx context.Context, form Form) (*models.Address, error) {
	if err := m.prepare(ctx, &form); err != nil {
		return nil, err
	}

	if !m.isRegistered() {
		return m.createGuest(ctx, form)
	}

	addresses, err := m.client.CreateAddress(ctx, form.toAddress())
	if err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	var created *models.Address
	for i := range addresses {
		if addresses[i].IsDefault {
			a := addresses[i]
			created = &a
			break
		}
	}
	if created == nil && len(addresses) > 0 {
		a := addresses[len(addresses)-1]
		created = &a
	}
	if created != nil {
		m.SetSelectedAddress(created)
	}
	m.RefreshAddresses(ctx)
	return created, nil
}

func (m *Manager) createGuest(ctx context.Context, form Form) (*models.Address, error) {
	req := models.GuestAddressRequest{
		FCMToken:    m.device.ID(ctx),
		Description: strings.TrimSpace(form.Description),
		AddressTag:  strings.TrimSpace(form.AddressTag),
		Latitude:    form.Location.Lat,
		Longitude:   form.Location.Lng,
	}
	created, err := m.client.CreateGuestAddress(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create guest address: %w", err)
	}

	m.RefreshGuestAddress(ctx)
	if active := m.Active(); active != nil {
		return active, nil
	}
	if created != nil && created.ID != 0 {
		m.SetGuestAddress(created)
	}
	return created, nil
}

// Address fetches one address of the registered user from the backend.
func (m *Manager) Address(ctx context.Context, id int) (*models.Address, error) {
	if !m.isRegistered() {
		return nil, ErrRegisteredOnly
	}
	address, err := m.client.GetAddress(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch address: %w", err)
	}
	return address, nil
}

func (m *Manager) Update(ctx context.Context, id int, form Form) (*models.Address, error) {
	if !m.isRegistered() {
		return nil, ErrRegisteredOnly
	}
	if err := m.prepare(ctx, &form); err != nil {
		return nil, err
	}

	address := form.toAddress()
	address.ID = id
	updated, err := m.client.UpdateAddress(ctx, id, address)
	if err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	m.RefreshAddresses(ctx)
	return updated, nil
}

func (m *Manager) Delete(ctx context.Context, id int) error {
	if !m.isRegistered() {
		return ErrRegisteredOnly
	}
	if err := m.client.DeleteAddress(ctx, id); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	m.RefreshAddresses(ctx)
	return nil
}

func (m *Manager) SetDefault(ctx context.Context, id int) error {
	if !m.isRegistered() {
		return ErrRegisteredOnly
	}
	if err := m.client.SetDefaultAddress(ctx, id); err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
	}
	m.RefreshAddresses(ctx)
	return nil
}
