package address

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/models"
)

type mockClient struct {
	ListAddressesFunc      func(ctx context.Context) ([]models.Address, error)
	GetAddressFunc         func(ctx context.Context, id int) (*models.Address, error)
	CreateAddressFunc      func(ctx context.Context, address models.Address) ([]models.Address, error)
	UpdateAddressFunc      func(ctx context.Context, id int, address models.Address) (*models.Address, error)
	DeleteAddressFunc      func(ctx context.Context, id int) error
	SetDefaultAddressFunc  func(ctx context.Context, id int) error
	CreateGuestAddressFunc func(ctx context.Context, req models.GuestAddressRequest) (*models.Address, error)
	GetGuestAddressFunc    func(ctx context.Context) (*models.Address, error)
}

func (m *mockClient) ListAddresses(ctx context.Context) ([]models.Address, error) {
	if m.ListAddressesFunc == nil {
		return nil, nil
	}
	return m.ListAddressesFunc(ctx)
}

func (m *mockClient) GetAddress(ctx context.Context, id int) (*models.Address, error) {
	return m.GetAddressFunc(ctx, id)
}

func (m *mockClient) CreateAddress(ctx context.Context, address models.Address) ([]models.Address, error) {
	return m.CreateAddressFunc(ctx, address)
}

func (m *mockClient) UpdateAddress(ctx context.Context, id int, address models.Address) (*models.Address, error) {
	return m.UpdateAddressFunc(ctx, id, address)
}

func (m *mockClient) DeleteAddress(ctx context.Context, id int) error {
	return m.DeleteAddressFunc(ctx, id)
}

func (m *mockClient) SetDefaultAddress(ctx context.Context, id int) error {
	return m.SetDefaultAddressFunc(ctx, id)
}

func (m *mockClient) CreateGuestAddress(ctx context.Context, req models.GuestAddressRequest) (*models.Address, error) {
	return m.CreateGuestAddressFunc(ctx, req)
}

func (m *mockClient) GetGuestAddress(ctx context.Context) (*models.Address, error) {
	if m.GetGuestAddressFunc == nil {
		return nil, nil
	}
	return m.GetGuestAddressFunc(ctx)
}

type staticDevice string

func (d staticDevice) ID(context.Context) string { return string(d) }

type geocoderFunc func(ctx context.Context, lat, lng float64) (string, error)

func (f geocoderFunc) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	return f(ctx, lat, lng)
}

func newTestManager(client *mockClient) *Manager {
	return NewManager(client, nil, staticDevice("device-1"), zap.NewNop())
}

var (
	work = models.Address{ID: 1, AddressTag: "Work", Description: "Smart Village"}
	home = models.Address{ID: 2, AddressTag: "Home", Description: "Zamalek", IsDefault: true}
)

func TestRefreshAddresses_SelectsDefault(t *testing.T) {
	client := &mockClient{
		ListAddressesFunc: func(context.Context) ([]models.Address, error) {
			return []models.Address{work, home}, nil
		},
	}
	m := newTestManager(client)
	m.Switch(context.Background(), true)

	sel, ok := m.Selection().(Registered)
	require.True(t, ok)
	require.NotNil(t, sel.Selected)
	assert.Equal(t, "Home", sel.Selected.AddressTag)
	assert.Len(t, sel.Addresses, 2)
	assert.True(t, m.HasAddress())
}

func TestRefreshAddresses_FallsBackToFirst(t *testing.T) {
	client := &mockClient{
		ListAddressesFunc: func(context.Context) ([]models.Address, error) {
			return []models.Address{work, {ID: 3, AddressTag: "Gym"}}, nil
		},
	}
	m := newTestManager(client)
	m.Switch(context.Background(), true)

	require.NotNil(t, m.Active())
	assert.Equal(t, "Work", m.Active().AddressTag)
}

func TestRefreshAddresses_FailureLeavesEmpty(t *testing.T) {
	calls := 0
	client := &mockClient{
		ListAddressesFunc: func(context.Context) ([]models.Address, error) {
			calls++
			if calls == 1 {
				return []models.Address{home}, nil
			}
			return nil, errors.New("boom")
		},
	}
	m := newTestManager(client)
	m.Switch(context.Background(), true)
	require.True(t, m.HasAddress())

	m.RefreshAddresses(context.Background())
	assert.False(t, m.HasAddress())
	assert.Equal(t, 2, calls)
}

func TestHasAddress(t *testing.T) {
	addr := &models.Address{ID: 9}

	tests := []struct {
		name string
		sel  Selection
		want bool
	}{
		{name: "registered with selection", sel: Registered{Selected: addr}, want: true},
		{name: "registered without selection", sel: Registered{Addresses: []models.Address{work}}, want: false},
		{name: "guest with address", sel: Guest{Address: addr}, want: true},
		{name: "guest without address", sel: Guest{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sel.HasAddress())
		})
	}
}

func TestSwitch_ResetsOtherBranch(t *testing.T) {
	guest := &models.Address{ID: 7, AddressTag: "Guest"}
	client := &mockClient{
		ListAddressesFunc: func(context.Context) ([]models.Address, error) {
			return []models.Address{home}, nil
		},
		GetGuestAddressFunc: func(context.Context) (*models.Address, error) {
			return guest, nil
		},
	}
	ctx := context.Background()
	m := newTestManager(client)

	m.Switch(ctx, false)
	g, ok := m.Selection().(Guest)
	require.True(t, ok)
	assert.Equal(t, 7, g.Address.ID)

	m.Switch(ctx, true)
	r, ok := m.Selection().(Registered)
	require.True(t, ok)
	assert.Equal(t, 2, r.Selected.ID)

	client.GetGuestAddressFunc = func(context.Context) (*models.Address, error) {
		return nil, errors.New("not found")
	}
	m.Switch(ctx, false)
	g, ok = m.Selection().(Guest)
	require.True(t, ok)
	assert.Nil(t, g.Address)
	assert.False(t, m.HasAddress())
}

func TestRefresh_DropsStaleResult(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	client := &mockClient{
		ListAddressesFunc: func(context.Context) ([]models.Address, error) {
			close(started)
			<-release
			return []models.Address{home}, nil
		},
	}
	m := newTestManager(client)

	m.mu.Lock()
	m.sel = Registered{}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.RefreshAddresses(ctx)
		close(done)
	}()

	<-started
	m.Switch(ctx, false)
	close(release)
	<-done

	_, isGuest := m.Selection().(Guest)
	assert.True(t, isGuest)
	assert.False(t, m.HasAddress())
	assert.False(t, m.IsLoading())
}

func TestRefreshAddresses_IgnoredInGuestFlow(t *testing.T) {
	client := &mockClient{
		ListAddressesFunc: func(context.Context) ([]models.Address, error) {
			t.Fatal("registered list must not be fetched in the guest flow")
			return nil, nil
		},
	}
	m := newTestManager(client)
	m.RefreshAddresses(context.Background())
	_, isGuest := m.Selection().(Guest)
	assert.True(t, isGuest)
}

func TestSetOverrides(t *testing.T) {
	m := newTestManager(&mockClient{})
	addr := &models.Address{ID: 4, AddressTag: "Office"}

	m.SetSelectedAddress(addr)
	assert.False(t, m.HasAddress(), "registered override is ignored in the guest flow")

	m.SetGuestAddress(addr)
	assert.True(t, m.HasAddress())

	m.Switch(context.Background(), true)
	m.SetSelectedAddress(addr)
	assert.Equal(t, 4, m.Active().ID)
}

func TestCreate_Registered(t *testing.T) {
	ctx := context.Background()
	created := models.Address{ID: 5, AddressTag: "Parents", Description: "Heliopolis"}
	var sent models.Address
	client := &mockClient{
		CreateAddressFunc: func(_ context.Context, address models.Address) ([]models.Address, error) {
			sent = address
			return []models.Address{work, created}, nil
		},
	}
	m := newTestManager(client)
	m.Switch(ctx, true)

	client.ListAddressesFunc = func(context.Context) ([]models.Address, error) {
		return []models.Address{work, created}, nil
	}

	floor := 3
	got, err := m.Create(ctx, Form{
		AddressTag:  "Parents",
		Description: "Heliopolis",
		Location:    &models.Location{Lat: 30.1, Lng: 31.3},
		Floor:       &floor,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got.ID)
	assert.Equal(t, 30.1, sent.Latitude)
	assert.Equal(t, 3, *sent.Floor)
	assert.True(t, m.HasAddress())
}

func TestCreate_Guest(t *testing.T) {
	ctx := context.Background()
	var sent models.GuestAddressRequest
	client := &mockClient{
		CreateGuestAddressFunc: func(_ context.Context, req models.GuestAddressRequest) (*models.Address, error) {
			sent = req
			return &models.Address{}, nil
		},
	}
	m := newTestManager(client)
	m.Switch(ctx, false)

	client.GetGuestAddressFunc = func(context.Context) (*models.Address, error) {
		return &models.Address{ID: 11, AddressTag: "Home", Description: "Maadi"}, nil
	}

	got, err := m.Create(ctx, Form{
		AddressTag:  "Home",
		Description: "Maadi",
		Location:    &models.Location{Lat: 29.96, Lng: 31.25},
	})
	require.NoError(t, err)
	assert.Equal(t, "device-1", sent.FCMToken)
	assert.Equal(t, 11, got.ID)
	assert.True(t, m.HasAddress())
}

func TestCreate_Validation(t *testing.T) {
	client := &mockClient{
		CreateGuestAddressFunc: func(context.Context, models.GuestAddressRequest) (*models.Address, error) {
			t.Fatal("invalid form must not reach the backend")
			return nil, nil
		},
	}
	m := newTestManager(client)

	tests := []struct {
		name string
		form Form
	}{
		{name: "missing tag", form: Form{Description: "Maadi", Location: &models.DefaultLocation}},
		{name: "missing description", form: Form{AddressTag: "Home", Location: &models.DefaultLocation}},
		{name: "missing location", form: Form{AddressTag: "Home", Description: "Maadi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Create(context.Background(), tt.form)
			assert.Error(t, err)
		})
	}
}

func TestCreate_FillsDescriptionFromGeocoder(t *testing.T) {
	ctx := context.Background()
	var sent models.GuestAddressRequest
	client := &mockClient{
		CreateGuestAddressFunc: func(_ context.Context, req models.GuestAddressRequest) (*models.Address, error) {
			sent = req
			return &models.Address{ID: 1}, nil
		},
	}
	geocoder := geocoderFunc(func(context.Context, float64, float64) (string, error) {
		return "Tahrir Square, Cairo", nil
	})
	m := NewManager(client, geocoder, staticDevice("device-1"), zap.NewNop())

	_, err := m.Create(ctx, Form{AddressTag: "Home", Location: &models.DefaultLocation})
	require.NoError(t, err)
	assert.Equal(t, "Tahrir Square, Cairo", sent.Description)
}

func TestRegisteredOnlyOperations(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(&mockClient{})

	_, err := m.Update(ctx, 1, Form{})
	assert.ErrorIs(t, err, ErrRegisteredOnly)
	assert.ErrorIs(t, m.Delete(ctx, 1), ErrRegisteredOnly)
	assert.ErrorIs(t, m.SetDefault(ctx, 1), ErrRegisteredOnly)
	_, err = m.SelectByID(1)
	assert.ErrorIs(t, err, ErrRegisteredOnly)
	_, err = m.Address(ctx, 1)
	assert.ErrorIs(t, err, ErrRegisteredOnly)
}

func TestAddress_FetchesDetail(t *testing.T) {
	ctx := context.Background()
	client := &mockClient{
		GetAddressFunc: func(_ context.Context, id int) (*models.Address, error) {
			if id != home.ID {
				return nil, errors.New("not found")
			}
			a := home
			return &a, nil
		},
	}
	m := newTestManager(client)
	m.Switch(ctx, true)

	got, err := m.Address(ctx, home.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zamalek", got.Description)

	_, err = m.Address(ctx, 99)
	assert.Error(t, err)
}

func TestSetDefault_Refreshes(t *testing.T) {
	ctx := context.Background()
	defaultID := 1
	client := &mockClient{
		ListAddressesFunc: func(context.Context) ([]models.Address, error) {
			a, b := work, home
			a.IsDefault = a.ID == defaultID
			b.IsDefault = b.ID == defaultID
			return []models.Address{a, b}, nil
		},
		SetDefaultAddressFunc: func(_ context.Context, id int) error {
			defaultID = id
			return nil
		},
	}
	m := newTestManager(client)
	m.Switch(ctx, true)
	assert.Equal(t, 1, m.Active().ID)

	require.NoError(t, m.SetDefault(ctx, 2))
	assert.Equal(t, 2, m.Active().ID)
}
