package booking

import (
	"context"
	"sync"

	bookingRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/booking"
	clientRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/client"
	serviceRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/service"
	therapistRepo "github.com/luisperes28-droid/desperto-app-sub001/database/repository/therapist"
	"github.com/luisperes28-droid/desperto-app-sub001/models"
)

// memBookingRepo mirrors the Mongo repository's semantics in memory:
// the overlap check and the insert in CreateIfSlotFree run under one lock,
// and SetPaymentOutcome is conditional on the stored transaction id.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newMemBookingRepo(bookings ...*models.Booking) *memBookingRepo {
	repo := &memBookingRepo{bookings: make(map[string]*models.Booking)}
	for _, b := range bookings {
		repo.bookings[b.ID] = b
	}
	return repo
}

func (r *memBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *memBookingRepo) ListByTherapistAndDate(ctx context.Context, therapistID, date string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.TherapistID == therapistID && b.Date == date && b.Status != models.BookingCancelled {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) ListByClientAndDate(ctx context.Context, clientID, date string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.ClientID == clientID && b.Date == date && b.Status != models.BookingCancelled {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) CreateIfSlotFree(ctx context.Context, booking *models.Booking, durationFor bookingRepo.DurationFunc, bufferMinutes int, excludeBookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	newStart := booking.StartMinute
	newEnd := booking.StartMinute + durationFor(booking.ServiceID)
	for _, b := range r.bookings {
		if b.Date != booking.Date || b.Status == models.BookingCancelled || b.ID == excludeBookingID {
			continue
		}
		if b.TherapistID != booking.TherapistID && b.ClientID != booking.ClientID {
			continue
		}
		exStart := b.StartMinute - bufferMinutes
		exEnd := b.StartMinute + durationFor(b.ServiceID) + bufferMinutes
		if newStart < exEnd && newEnd > exStart {
			return bookingRepo.ErrSlotTaken
		}
	}
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *memBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[booking.ID]; !ok {
		return bookingRepo.ErrNotFound
	}
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *memBookingRepo) SetPaymentOutcome(ctx context.Context, bookingID, txnID string, payment models.PaymentStatus, status models.BookingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return false, bookingRepo.ErrNotFound
	}
	if b.PaymentTxnID != "" && b.PaymentTxnID != txnID {
		return false, nil
	}
	b.PaymentTxnID = txnID
	b.PaymentStatus = payment
	b.Status = status
	return true, nil
}

func (r *memBookingRepo) ListDueReminders(ctx context.Context, dates []string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.Status != models.BookingConfirmed || b.ReminderSent {
			continue
		}
		for _, d := range dates {
			if b.Date == d {
				out = append(out, *b)
				break
			}
		}
	}
	return out, nil
}

func (r *memBookingRepo) MarkReminderSent(ctx context.Context, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	b.ReminderSent = true
	return nil
}

type memTherapistRepo struct {
	therapists map[string]*models.Therapist
}

func (r *memTherapistRepo) GetByID(ctx context.Context, id string) (*models.Therapist, error) {
	if t, ok := r.therapists[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, therapistRepo.ErrNotFound
}

func (r *memTherapistRepo) List(ctx context.Context) ([]models.Therapist, error) {
	var out []models.Therapist
	for _, t := range r.therapists {
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTherapistRepo) Create(ctx context.Context, t *models.Therapist) error {
	r.therapists[t.ID] = t
	return nil
}

func (r *memTherapistRepo) UpdateAvailability(ctx context.Context, therapistID string, availability models.TherapistAvailability) error {
	t, ok := r.therapists[therapistID]
	if !ok {
		return therapistRepo.ErrNotFound
	}
	t.Availability = availability
	return nil
}

type memServiceRepo struct {
	services map[string]*models.Service
}

func (r *memServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	if s, ok := r.services[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, serviceRepo.ErrNotFound
}

func (r *memServiceRepo) List(ctx context.Context) ([]models.Service, error) {
	var out []models.Service
	for _, s := range r.services {
		out = append(out, *s)
	}
	return out, nil
}

func (r *memServiceRepo) Create(ctx context.Context, s *models.Service) error {
	r.services[s.ID] = s
	return nil
}

type memClientRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.Client
}

func (r *memClientRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byEmail {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, clientRepo.ErrNotFound
}

func (r *memClientRepo) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byEmail[email]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, clientRepo.ErrNotFound
}

func (r *memClientRepo) FindOrCreate(ctx context.Context, client models.Client) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byEmail[client.Email]; ok {
		cp := *c
		return &cp, nil
	}
	client.ID = "client-" + client.Email
	r.byEmail[client.Email] = &client
	cp := client
	return &cp, nil
}

func (r *memClientRepo) AppendNotification(ctx context.Context, clientID string, n models.Notification) error {
	return nil
}

// fakeLedger scripts coupon behavior for engine tests.
type fakeLedger struct {
	mu          sync.Mutex
	validation  *models.CouponValidation
	validateErr error
	redeemErr   error
	redeemed    []string // booking ids passed to Redeem
}

func (l *fakeLedger) Validate(ctx context.Context, code, serviceID, clientEmail string, chargeAmount float64) (*models.CouponValidation, error) {
	if l.validateErr != nil {
		return nil, l.validateErr
	}
	return l.validation, nil
}

func (l *fakeLedger) Redeem(ctx context.Context, couponID, bookingID, clientID string, discountApplied float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.redeemErr != nil {
		return l.redeemErr
	}
	l.redeemed = append(l.redeemed, bookingID)
	return nil
}

// fakePayments resolves proofs from a scripted table.
type fakePayments struct {
	outcomes map[string]PaymentOutcome // ref -> outcome
	err      error
}

func (p *fakePayments) VerifyPayment(ctx context.Context, ref string) (string, PaymentOutcome, error) {
	if p.err != nil {
		return "", OutcomeFailed, p.err
	}
	if outcome, ok := p.outcomes[ref]; ok {
		return "txn-" + ref, outcome, nil
	}
	return "", OutcomeFailed, nil
}

type recordedNotification struct {
	ClientID string
	Kind     models.NotificationType
	Title    string
}

// fakeNotifier records every notification for assertion.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []recordedNotification
}

func (n *fakeNotifier) Notify(ctx context.Context, clientID string, kind models.NotificationType, title, message string, data map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, recordedNotification{ClientID: clientID, Kind: kind, Title: title})
	return nil
}

func (n *fakeNotifier) all() []recordedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]recordedNotification, len(n.sent))
	copy(out, n.sent)
	return out
}
