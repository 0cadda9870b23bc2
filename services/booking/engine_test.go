package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisperes28-droid/desperto-app-sub001/models"
	"github.com/luisperes28-droid/desperto-app-sub001/services/coupon"
	"github.com/luisperes28-droid/desperto-app-sub001/services/scheduling"
)

const fixtureDate = "2030-06-03" // a Monday

type engineFixture struct {
	engine   *DefaultBookingEngine
	bookings *memBookingRepo
	ledger   *fakeLedger
	payments *fakePayments
	notifier *fakeNotifier
}

func newEngineFixture(existing ...*models.Booking) *engineFixture {
	therapist := &models.Therapist{
		ID:   "th-1",
		Name: "Dana",
		Availability: models.TherapistAvailability{
			WorkingDays: []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
			},
			WorkingHours: models.Window{Start: 9 * 60, End: 18 * 60},
			Breaks:       []models.Window{{Start: 13 * 60, End: 14 * 60}},
		},
	}
	other := &models.Therapist{
		ID:           "th-2",
		Name:         "Riley",
		Availability: therapist.Availability,
	}

	f := &engineFixture{
		bookings: newMemBookingRepo(existing...),
		ledger:   &fakeLedger{},
		payments: &fakePayments{outcomes: map[string]PaymentOutcome{}},
		notifier: &fakeNotifier{},
	}
	f.engine = NewDefaultBookingEngine(
		f.bookings,
		&memTherapistRepo{therapists: map[string]*models.Therapist{"th-1": therapist, "th-2": other}},
		&memServiceRepo{services: map[string]*models.Service{
			"svc-60": {ID: "svc-60", Name: "Therapy Session", DurationMinutes: 60, Price: 80},
			"svc-90": {ID: "svc-90", Name: "Extended Session", DurationMinutes: 90, Price: 120},
		}},
		&memClientRepo{byEmail: map[string]*models.Client{}},
		f.ledger,
		f.payments,
		f.notifier,
	)
	return f
}

func validInput() models.BookingInput {
	return models.BookingInput{
		ClientName:  "Alex",
		ClientEmail: "alex@example.com",
		ServiceID:   "svc-60",
		TherapistID: "th-1",
		Date:        fixtureDate,
		StartMinute: 10 * 60,
	}
}

func TestCreateBookingPendingWithoutPayment(t *testing.T) {
	f := newEngineFixture()

	bk, err := f.engine.CreateBooking(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, bk.Status)
	assert.Equal(t, models.PaymentPending, bk.PaymentStatus)
	assert.Equal(t, fixtureDate, bk.Date)
	assert.Equal(t, 600, bk.StartMinute)

	stored, err := f.bookings.GetByID(context.Background(), bk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, stored.Status)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "Booking received", sent[0].Title)
}

func TestCreateBookingConfirmedWithVerifiedPayment(t *testing.T) {
	f := newEngineFixture()
	f.payments.outcomes["pi_1"] = OutcomePaid

	input := validInput()
	input.PaymentProof = "pi_1"

	bk, err := f.engine.CreateBooking(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, bk.Status)
	assert.Equal(t, models.PaymentPaid, bk.PaymentStatus)
	assert.Equal(t, "txn-pi_1", bk.PaymentTxnID)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "Booking confirmed", sent[0].Title)
}

func TestCreateBookingUnconfirmedPaymentRejected(t *testing.T) {
	f := newEngineFixture()
	f.payments.outcomes["pi_pending"] = OutcomePending

	input := validInput()
	input.PaymentProof = "pi_pending"

	_, err := f.engine.CreateBooking(context.Background(), input)
	var preq *PaymentRequiredError
	require.ErrorAs(t, err, &preq)

	// Nothing was written.
	list, err := f.bookings.ListByTherapistAndDate(context.Background(), "th-1", fixtureDate)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newEngineFixture()

	cases := []struct {
		name  string
		mut   func(*models.BookingInput)
		field string
	}{
		{"missing email", func(in *models.BookingInput) { in.ClientEmail = "" }, "clientEmail"},
		{"missing therapist", func(in *models.BookingInput) { in.TherapistID = "" }, "therapistId"},
		{"missing service", func(in *models.BookingInput) { in.ServiceID = "" }, "serviceId"},
		{"bad date", func(in *models.BookingInput) { in.Date = "03-06-2030" }, "date"},
		{"negative start", func(in *models.BookingInput) { in.StartMinute = -30 }, "startMinute"},
		{"unknown service", func(in *models.BookingInput) { in.ServiceID = "svc-404" }, "serviceId"},
		{"unknown therapist", func(in *models.BookingInput) { in.TherapistID = "th-404" }, "therapistId"},
		{"off the slot grid", func(in *models.BookingInput) { in.StartMinute = 10*60 + 15 }, "startMinute"},
		{"before working hours", func(in *models.BookingInput) { in.StartMinute = 8 * 60 }, "startMinute"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mut(&input)
			_, err := f.engine.CreateBooking(context.Background(), input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestCreateBookingBlockedDate(t *testing.T) {
	f := newEngineFixture()
	therapist, err := f.engine.TherapistRepo.GetByID(context.Background(), "th-1")
	require.NoError(t, err)
	av := therapist.Availability
	av.BlockedDates = []string{fixtureDate}
	require.NoError(t, f.engine.TherapistRepo.UpdateAvailability(context.Background(), "th-1", av))

	_, err = f.engine.CreateBooking(context.Background(), validInput())
	var perr *PolicyViolationError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, scheduling.ReasonDateBlocked, perr.Reason)
}

func TestCreateBookingSlotTaken(t *testing.T) {
	f := newEngineFixture(&models.Booking{
		ID:          "bk-existing",
		ClientID:    "client-other@example.com",
		ServiceID:   "svc-60",
		TherapistID: "th-1",
		Date:        fixtureDate,
		StartMinute: 10 * 60,
		Status:      models.BookingConfirmed,
	})

	_, err := f.engine.CreateBooking(context.Background(), validInput())
	var cerr *SlotConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, scheduling.ReasonAlreadyBooked, cerr.Reason)
	assert.Equal(t, "th-1", cerr.OccupiedBy)
}

func TestCreateBookingClientConflictAcrossTherapists(t *testing.T) {
	f := newEngineFixture(&models.Booking{
		ID:          "bk-elsewhere",
		ClientID:    "client-alex@example.com",
		ServiceID:   "svc-60",
		TherapistID: "th-2",
		Date:        fixtureDate,
		StartMinute: 10 * 60,
		Status:      models.BookingConfirmed,
	})

	_, err := f.engine.CreateBooking(context.Background(), validInput())
	var cerr *SlotConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, scheduling.ReasonClientConflict, cerr.Reason)
}

func TestCreateBookingDuringBreak(t *testing.T) {
	f := newEngineFixture()

	input := validInput()
	input.StartMinute = 13 * 60

	_, err := f.engine.CreateBooking(context.Background(), input)
	var cerr *SlotConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, scheduling.ReasonBreak, cerr.Reason)
}

func TestCreateBookingCouponCoversFullCharge(t *testing.T) {
	f := newEngineFixture()
	f.ledger.validation = &models.CouponValidation{
		Coupon:   models.Coupon{ID: "cpn-1", Code: "FREE-100", Type: models.CouponFreeService},
		Discount: 80,
	}

	input := validInput()
	input.CouponCode = "FREE-100"

	bk, err := f.engine.CreateBooking(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, bk.Status)
	assert.Equal(t, models.PaymentPaid, bk.PaymentStatus)
	assert.Equal(t, 80.0, bk.DiscountApplied)
	assert.Equal(t, "FREE-100", bk.CouponCode)

	require.Len(t, f.ledger.redeemed, 1)
	assert.Equal(t, bk.ID, f.ledger.redeemed[0])
}

func TestCreateBookingPartialCouponStaysPending(t *testing.T) {
	f := newEngineFixture()
	f.ledger.validation = &models.CouponValidation{
		Coupon:   models.Coupon{ID: "cpn-2", Code: "SAVE-20", Type: models.CouponFixedAmount, Value: 20},
		Discount: 20,
	}

	input := validInput()
	input.CouponCode = "SAVE-20"

	bk, err := f.engine.CreateBooking(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, bk.Status)
	assert.Equal(t, models.PaymentPartial, bk.PaymentStatus)
	assert.Equal(t, 20.0, bk.DiscountApplied)
}

func TestCreateBookingInvalidCouponRejected(t *testing.T) {
	f := newEngineFixture()
	f.ledger.validateErr = coupon.NewCouponError(coupon.CodeExpired, "coupon expired")

	input := validInput()
	input.CouponCode = "OLD-CODE"

	_, err := f.engine.CreateBooking(context.Background(), input)
	var cerr *coupon.CouponError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, coupon.CodeExpired, cerr.Code)

	list, err := f.bookings.ListByTherapistAndDate(context.Background(), "th-1", fixtureDate)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateBookingRedemptionRaceReleasesSlot(t *testing.T) {
	f := newEngineFixture()
	f.ledger.validation = &models.CouponValidation{
		Coupon:   models.Coupon{ID: "cpn-3", Code: "LAST-ONE", Type: models.CouponFixedAmount, Value: 10},
		Discount: 10,
	}
	f.ledger.redeemErr = coupon.NewCouponError(coupon.CodeLimitReached, "coupon has no uses left")

	input := validInput()
	input.CouponCode = "LAST-ONE"

	_, err := f.engine.CreateBooking(context.Background(), input)
	var cerr *coupon.CouponError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, coupon.CodeLimitReached, cerr.Code)

	// The inserted booking was compensated away; the slot is free again.
	list, lerr := f.bookings.ListByTherapistAndDate(context.Background(), "th-1", fixtureDate)
	require.NoError(t, lerr)
	assert.Empty(t, list)
}

func TestCreateBookingConcurrentCommitsOneWinner(t *testing.T) {
	f := newEngineFixture()

	const contenders = 6
	results := make(chan error, contenders)
	var wg sync.WaitGroup
	for i := 0; i < contenders; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			input := validInput()
			input.ClientEmail = "client" + string(rune('a'+i)) + "@example.com"
			_, err := f.engine.CreateBooking(context.Background(), input)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		if err == nil {
			won++
			continue
		}
		lost++
		var cerr *SlotConflictError
		require.ErrorAs(t, err, &cerr)
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, contenders-1, lost)

	list, err := f.bookings.ListByTherapistAndDate(context.Background(), "th-1", fixtureDate)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateBookingMinAdvanceNotice(t *testing.T) {
	f := newEngineFixture()
	tomorrow := time.Now().AddDate(0, 0, 1)
	// Pick a date far enough that a large notice window still bites.
	therapist, err := f.engine.TherapistRepo.GetByID(context.Background(), "th-1")
	require.NoError(t, err)
	av := therapist.Availability
	av.WorkingDays = []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
	av.MinAdvanceNoticeHours = 72
	require.NoError(t, f.engine.TherapistRepo.UpdateAvailability(context.Background(), "th-1", av))

	input := validInput()
	input.Date = tomorrow.Format("2006-01-02")

	_, err = f.engine.CreateBooking(context.Background(), input)
	var perr *PolicyViolationError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, scheduling.ReasonTooSoon, perr.Reason)
}

func TestCreateBookingMaxAdvanceHorizon(t *testing.T) {
	f := newEngineFixture()
	therapist, err := f.engine.TherapistRepo.GetByID(context.Background(), "th-1")
	require.NoError(t, err)
	av := therapist.Availability
	av.MaxAdvanceBookingDays = 30
	require.NoError(t, f.engine.TherapistRepo.UpdateAvailability(context.Background(), "th-1", av))

	_, err = f.engine.CreateBooking(context.Background(), validInput())
	var perr *PolicyViolationError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, scheduling.ReasonTooFarAhead, perr.Reason)
}
