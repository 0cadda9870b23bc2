package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/booking"
	clientRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/client"
	serviceRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/service"
	therapistRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/therapist"
	"github.com/luisperes28-droid/desperto-app-sub001/models"
)

type stubTherapistRepo struct {
	therapist *models.Therapist
}

func (r *stubTherapistRepo) GetByID(ctx context.Context, id string) (*models.Therapist, error) {
	if r.therapist != nil && r.therapist.ID == id {
		return r.therapist, nil
	}
	return nil, therapistRepo.ErrNotFound
}

func (r *stubTherapistRepo) List(ctx context.Context) ([]models.Therapist, error) {
	return []models.Therapist{*r.therapist}, nil
}

func (r *stubTherapistRepo) Create(ctx context.Context, t *models.Therapist) error { return nil }

func (r *stubTherapistRepo) UpdateAvailability(ctx context.Context, id string, av models.TherapistAvailability) error {
	return nil
}

type stubBookingRepo struct {
	byTherapist []models.Booking
	byClient    []models.Booking
}

func (r *stubBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}

func (r *stubBookingRepo) ListByTherapistAndDate(ctx context.Context, therapistID, date string) ([]models.Booking, error) {
	return r.byTherapist, nil
}

func (r *stubBookingRepo) ListByClientAndDate(ctx context.Context, clientID, date string) ([]models.Booking, error) {
	return r.byClient, nil
}

func (r *stubBookingRepo) CreateIfSlotFree(ctx context.Context, b *models.Booking, durationFor bookingRepo.DurationFunc, bufferMinutes int, excludeBookingID string) error {
	return nil
}

func (r *stubBookingRepo) Update(ctx context.Context, b *models.Booking) error { return nil }

func (r *stubBookingRepo) SetPaymentOutcome(ctx context.Context, bookingID, txnID string, payment models.PaymentStatus, status models.BookingStatus) (bool, error) {
	return true, nil
}

func (r *stubBookingRepo) ListDueReminders(ctx context.Context, dates []string) ([]models.Booking, error) {
	return nil, nil
}

func (r *stubBookingRepo) MarkReminderSent(ctx context.Context, bookingID string) error { return nil }

type stubServiceRepo struct {
	services []models.Service
}

func (r *stubServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	for i := range r.services {
		if r.services[i].ID == id {
			return &r.services[i], nil
		}
	}
	return nil, serviceRepo.ErrNotFound
}

func (r *stubServiceRepo) List(ctx context.Context) ([]models.Service, error) {
	return r.services, nil
}

func (r *stubServiceRepo) Create(ctx context.Context, s *models.Service) error { return nil }

type stubClientRepo struct {
	client *models.Client
}

func (r *stubClientRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	return nil, clientRepo.ErrNotFound
}

func (r *stubClientRepo) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	if r.client != nil && r.client.Email == email {
		return r.client, nil
	}
	return nil, clientRepo.ErrNotFound
}

func (r *stubClientRepo) FindOrCreate(ctx context.Context, c models.Client) (*models.Client, error) {
	return &c, nil
}

func (r *stubClientRepo) AppendNotification(ctx context.Context, clientID string, n models.Notification) error {
	return nil
}

func newSchedulingFixture(bookings *stubBookingRepo, client *models.Client) *DefaultSchedulingEngine {
	return &DefaultSchedulingEngine{
		TherapistRepo: &stubTherapistRepo{therapist: &models.Therapist{
			ID: "th-1",
			Availability: models.TherapistAvailability{
				WorkingDays: []time.Weekday{
					time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
				},
				WorkingHours: models.Window{Start: 9 * 60, End: 18 * 60},
				Breaks:       []models.Window{{Start: 13 * 60, End: 14 * 60}},
			},
		}},
		BookingRepo: bookings,
		ServiceRepo: &stubServiceRepo{services: []models.Service{
			{ID: "svc-60", DurationMinutes: 60},
		}},
		ClientRepo: &stubClientRepo{client: client},
	}
}

const testDate = "2030-06-03" // a Monday, far from any advance horizon

func TestListAvailableSlotsFullDay(t *testing.T) {
	engine := newSchedulingFixture(&stubBookingRepo{}, nil)

	result, err := engine.ListAvailableSlots(context.Background(), testDate, "th-1", 60, "")
	require.NoError(t, err)
	assert.Empty(t, result.DayUnavailableReason)
	require.Len(t, result.Slots, 18)

	var available int
	for _, s := range result.Slots {
		if s.Available {
			available++
		}
	}
	// 18 candidates minus the three that run into the lunch break.
	assert.Equal(t, 15, available)
}

func TestListAvailableSlotsBlockedDate(t *testing.T) {
	engine := newSchedulingFixture(&stubBookingRepo{}, nil)
	th, err := engine.TherapistRepo.GetByID(context.Background(), "th-1")
	require.NoError(t, err)
	th.Availability.BlockedDates = []string{testDate}

	result, err := engine.ListAvailableSlots(context.Background(), testDate, "th-1", 60, "")
	require.NoError(t, err)
	assert.Equal(t, ReasonDateBlocked, result.DayUnavailableReason)
	assert.Empty(t, result.Slots)
}

func TestListAvailableSlotsNonWorkingDay(t *testing.T) {
	engine := newSchedulingFixture(&stubBookingRepo{}, nil)

	result, err := engine.ListAvailableSlots(context.Background(), "2030-06-02", "th-1", 60, "") // a Sunday
	require.NoError(t, err)
	assert.Equal(t, ReasonNotWorkingDay, result.DayUnavailableReason)
	assert.Empty(t, result.Slots)
}

func TestListAvailableSlotsExcludesTherapistBookings(t *testing.T) {
	bookings := &stubBookingRepo{byTherapist: []models.Booking{
		{ID: "b1", TherapistID: "th-1", ServiceID: "svc-60", StartMinute: 10 * 60},
	}}
	engine := newSchedulingFixture(bookings, nil)

	result, err := engine.ListAvailableSlots(context.Background(), testDate, "th-1", 60, "")
	require.NoError(t, err)

	s := slotByTime(t, result.Slots, "10:00")
	require.False(t, s.Available)
	assert.Equal(t, ReasonAlreadyBooked, s.Reason)
}

func TestListAvailableSlotsExcludesClientBookingsElsewhere(t *testing.T) {
	client := &models.Client{ID: "cl-1", Email: "alex@example.com"}
	bookings := &stubBookingRepo{byClient: []models.Booking{
		{ID: "b2", TherapistID: "th-9", ClientID: "cl-1", ServiceID: "svc-60", StartMinute: 15 * 60},
	}}
	engine := newSchedulingFixture(bookings, client)

	result, err := engine.ListAvailableSlots(context.Background(), testDate, "th-1", 60, "alex@example.com")
	require.NoError(t, err)

	s := slotByTime(t, result.Slots, "15:00")
	require.False(t, s.Available)
	assert.Equal(t, ReasonClientConflict, s.Reason)
}

func TestListAvailableSlotsFirstTimeClient(t *testing.T) {
	engine := newSchedulingFixture(&stubBookingRepo{}, nil)

	// An unknown email is a first-time client, not an error.
	result, err := engine.ListAvailableSlots(context.Background(), testDate, "th-1", 60, "new@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Slots)
}

func TestListAvailableSlotsUnknownTherapist(t *testing.T) {
	engine := newSchedulingFixture(&stubBookingRepo{}, nil)

	_, err := engine.ListAvailableSlots(context.Background(), testDate, "th-404", 60, "")
	assert.Error(t, err)
}

func TestListAvailableSlotsBadDate(t *testing.T) {
	engine := newSchedulingFixture(&stubBookingRepo{}, nil)

	_, err := engine.ListAvailableSlots(context.Background(), "03/06/2030", "th-1", 60, "")
	assert.Error(t, err)
}
