package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/config"
	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	pkgerrors "github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/outbox"
	"github.com/mfigueroa/openshelf-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepo struct {
	content      map[uuid.UUID]*models.ContentItem
	borrows      map[uuid.UUID]*models.BorrowRecord
	reservations map[uuid.UUID]*models.Reservation
	waitlist     map[uuid.UUID]*models.WaitlistEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		content:      make(map[uuid.UUID]*models.ContentItem),
		borrows:      make(map[uuid.UUID]*models.BorrowRecord),
		reservations: make(map[uuid.UUID]*models.Reservation),
		waitlist:     make(map[uuid.UUID]*models.WaitlistEntry),
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) FindContentItem(ctx context.Context, contentID uuid.UUID) (*models.ContentItem, error) {
	content, ok := f.content[contentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *content
	return &copied, nil
}

func (f *fakeRepo) LockContentItem(ctx context.Context, contentID uuid.UUID) (*models.ContentItem, error) {
	return f.FindContentItem(ctx, contentID)
}

func (f *fakeRepo) UpdateContentStatus(ctx context.Context, contentID uuid.UUID, status enums.ContentStatus) error {
	content, ok := f.content[contentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	content.Status = status
	return nil
}

func (f *fakeRepo) CreateBorrowRecord(ctx context.Context, record *models.BorrowRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	copied := *record
	f.borrows[record.ID] = &copied
	return nil
}

func (f *fakeRepo) FindBorrowRecord(ctx context.Context, borrowID uuid.UUID) (*models.BorrowRecord, error) {
	record, ok := f.borrows[borrowID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeRepo) FindActiveBorrowByContent(ctx context.Context, contentID uuid.UUID) (*models.BorrowRecord, error) {
	for _, record := range f.borrows {
		if record.ContentID == contentID && record.Status != enums.BorrowStatusReturned {
			copied := *record
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) MarkBorrowReturned(ctx context.Context, borrowID uuid.UUID, returnedAt time.Time) error {
	record, ok := f.borrows[borrowID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	at := returnedAt
	record.ReturnDate = &at
	record.Status = enums.BorrowStatusReturned
	return nil
}

func (f *fakeRepo) UpdateBorrowStatus(ctx context.Context, borrowID uuid.UUID, status enums.BorrowStatus) error {
	record, ok := f.borrows[borrowID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.Status = status
	return nil
}

func (f *fakeRepo) CountActiveBorrowsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, record := range f.borrows {
		if record.UserID == userID && record.Status != enums.BorrowStatusReturned {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) ListBorrowRecords(ctx context.Context, filter BorrowListFilter, params pagination.Params) (*BorrowRecordList, error) {
	list := &BorrowRecordList{}
	for _, record := range f.borrows {
		if filter.UserID != nil && record.UserID != *filter.UserID {
			continue
		}
		if filter.ContentID != nil && record.ContentID != *filter.ContentID {
			continue
		}
		if filter.Status != nil && record.Status != *filter.Status {
			continue
		}
		list.Records = append(list.Records, *borrowRecordFromModel(record))
	}
	return list, nil
}

func (f *fakeRepo) ListOverdueBorrows(ctx context.Context, cutoff time.Time) ([]models.BorrowRecord, error) {
	var rows []models.BorrowRecord
	for _, record := range f.borrows {
		if record.Status == enums.BorrowStatusBorrowed && record.DueDate.Before(cutoff) {
			rows = append(rows, *record)
		}
	}
	return rows, nil
}

func (f *fakeRepo) CreateReservation(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	copied := *reservation
	f.reservations[reservation.ID] = &copied
	return nil
}

func (f *fakeRepo) FindReservation(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error) {
	reservation, ok := f.reservations[reservationID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *reservation
	return &copied, nil
}

func (f *fakeRepo) FindPendingReservation(ctx context.Context, userID, contentID uuid.UUID) (*models.Reservation, error) {
	for _, reservation := range f.reservations {
		if reservation.UserID == userID && reservation.ContentID == contentID && reservation.Status == enums.ReservationStatusPending {
			copied := *reservation
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindEarliestPendingReservation(ctx context.Context, contentID uuid.UUID) (*models.Reservation, error) {
	var earliest *models.Reservation
	for _, reservation := range f.reservations {
		if reservation.ContentID != contentID || reservation.Status != enums.ReservationStatusPending {
			continue
		}
		if earliest == nil || reservation.ReservationDate.Before(earliest.ReservationDate) {
			earliest = reservation
		}
	}
	if earliest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *earliest
	return &copied, nil
}

func (f *fakeRepo) UpdateReservationStatus(ctx context.Context, reservationID uuid.UUID, status enums.ReservationStatus) error {
	reservation, ok := f.reservations[reservationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	reservation.Status = status
	return nil
}

func (f *fakeRepo) ListExpiredPendingReservations(ctx context.Context, cutoff time.Time) ([]models.Reservation, error) {
	var rows []models.Reservation
	for _, reservation := range f.reservations {
		if reservation.Status == enums.ReservationStatusPending && reservation.ExpiryDate.Before(cutoff) {
			rows = append(rows, *reservation)
		}
	}
	return rows, nil
}

func (f *fakeRepo) CreateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	copied := *entry
	f.waitlist[entry.ID] = &copied
	return nil
}

func (f *fakeRepo) FindWaitingEntry(ctx context.Context, userID, contentID uuid.UUID) (*models.WaitlistEntry, error) {
	for _, entry := range f.waitlist {
		if entry.UserID == userID && entry.ContentID == contentID && entry.Status == enums.WaitlistStatusWaiting {
			copied := *entry
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindWaitlistHead(ctx context.Context, contentID uuid.UUID) (*models.WaitlistEntry, error) {
	var head *models.WaitlistEntry
	for _, entry := range f.waitlist {
		if entry.ContentID != contentID || entry.Status != enums.WaitlistStatusWaiting {
			continue
		}
		if head == nil || entry.Position < head.Position {
			head = entry
		}
	}
	if head == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *head
	return &copied, nil
}

func (f *fakeRepo) MaxWaitingPosition(ctx context.Context, contentID uuid.UUID) (int, error) {
	max := 0
	for _, entry := range f.waitlist {
		if entry.ContentID == contentID && entry.Status == enums.WaitlistStatusWaiting && entry.Position > max {
			max = entry.Position
		}
	}
	return max, nil
}

func (f *fakeRepo) CountWaiting(ctx context.Context, contentID uuid.UUID) (int64, error) {
	var count int64
	for _, entry := range f.waitlist {
		if entry.ContentID == contentID && entry.Status == enums.WaitlistStatusWaiting {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) UpdateWaitlistStatus(ctx context.Context, entryID uuid.UUID, status enums.WaitlistStatus) error {
	entry, ok := f.waitlist[entryID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	entry.Status = status
	return nil
}

func (f *fakeRepo) ShiftWaitingPositions(ctx context.Context, contentID uuid.UUID, abovePosition int) error {
	for _, entry := range f.waitlist {
		if entry.ContentID == contentID && entry.Status == enums.WaitlistStatusWaiting && entry.Position > abovePosition {
			entry.Position--
		}
	}
	return nil
}

type recordingOutbox struct {
	events []outbox.DomainEvent
}

func (r *recordingOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordingOutbox) types() []enums.OutboxEventType {
	types := make([]enums.OutboxEventType, 0, len(r.events))
	for _, event := range r.events {
		types = append(types, event.EventType)
	}
	return types
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func circulationConfig() config.CirculationConfig {
	return config.CirculationConfig{
		BorrowPeriodDays:      14,
		ReservationExpiryDays: 2,
		MaxActiveBorrows:      5,
	}
}

func newTestService(t *testing.T, repo *fakeRepo, sink *recordingOutbox) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:        repo,
		TxRunner:    stubTxRunner{},
		Outbox:      sink,
		Circulation: circulationConfig(),
	})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func seedContent(repo *fakeRepo, status enums.ContentStatus) uuid.UUID {
	id := uuid.New()
	repo.content[id] = &models.ContentItem{ID: id, Title: "item", Status: status}
	return id
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s got %s (%v)", code, typed.Code(), err)
	}
}

func TestBorrowHappyPath(t *testing.T) {
	repo := newFakeRepo()
	sink := &recordingOutbox{}
	svc := newTestService(t, repo, sink)
	contentID := seedContent(repo, enums.ContentStatusAvailable)
	userID := uuid.New()

	record, err := svc.Borrow(context.Background(), BorrowInput{
		ActorID:   userID,
		ActorRole: enums.UserRoleStudent,
		ContentID: contentID,
	})
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}
	if record.Status != enums.BorrowStatusBorrowed {
		t.Fatalf("expected borrowed status got %s", record.Status)
	}
	wantDue := record.BorrowDate.Add(14 * 24 * time.Hour)
	if !record.DueDate.Equal(wantDue) {
		t.Fatalf("expected due date %s got %s", wantDue, record.DueDate)
	}
	if repo.content[contentID].Status != enums.ContentStatusBorrowed {
		t.Fatalf("content status not updated: %s", repo.content[contentID].Status)
	}
	if len(sink.events) != 1 || sink.events[0].EventType != enums.EventContentBorrowed {
		t.Fatalf("unexpected events %v", sink.types())
	}
}

func TestBorrowArchivedContent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &recordingOutbox{})
	contentID := seedContent(repo, enums.ContentStatusArchived)

	_, err := svc.Borrow(context.Background(), BorrowInput{
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleStudent,
		ContentID: contentID,
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestBorrowConflicts(t *testing.T) {
	repo := newFakeRepo()
	sink := &recordingOutbox{}
	svc := newTestService(t, repo, sink)
	contentID := seedContent(repo, enums.ContentStatusAvailable)
	alice := uuid.New()
	bob := uuid.New()

	if _, err := svc.Borrow(context.Background(), BorrowInput{ActorID: alice, ActorRole: enums.UserRoleStudent, ContentID: contentID}); err != nil {
		t.Fatalf("first borrow failed: %v", err)
	}

	_, err := svc.Borrow(context.Background(), BorrowInput{ActorID: alice, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	assertCode(t, err, pkgerrors.CodeConflict)

	_, err = svc.Borrow(context.Background(), BorrowInput{ActorID: bob, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	assertCode(t, err, pkgerrors.CodeConflict)

	if len(sink.events) != 1 {
		t.Fatalf("conflicting borrows must not emit events, got %v", sink.types())
	}
}

func TestBorrowGuestForbidden(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &recordingOutbox{})
	contentID := seedContent(repo, enums.ContentStatusAvailable)

	_, err := svc.Borrow(context.Background(), BorrowInput{
		ActorID:   uuid.New(),
		ActorRole: enums.UserRoleGuest,
		ContentID: contentID,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestBorrowLimitReached(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &recordingOutbox{})
	userID := uuid.New()
	for i := 0; i < 5; i++ {
		contentID := seedContent(repo, enums.ContentStatusAvailable)
		if _, err := svc.Borrow(context.Background(), BorrowInput{ActorID: userID, ActorRole: enums.UserRoleStudent, ContentID: contentID}); err != nil {
			t.Fatalf("borrow %d failed: %v", i, err)
		}
	}

	contentID := seedContent(repo, enums.ContentStatusAvailable)
	_, err := svc.Borrow(context.Background(), BorrowInput{ActorID: userID, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestBorrowFulfilsOwnReservation(t *testing.T) {
	repo := newFakeRepo()
	sink := &recordingOutbox{}
	svc := newTestService(t, repo, sink)
	contentID := seedContent(repo, enums.ContentStatusAvailable)
	userID := uuid.New()

	reservation, err := svc.Reserve(context.Background(), ReserveInput{ActorID: userID, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if repo.content[contentID].Status != enums.ContentStatusReserved {
		t.Fatalf("reserving a free copy should promote it, got %s", repo.content[contentID].Status)
	}

	if _, err := svc.Borrow(context.Background(), BorrowInput{ActorID: userID, ActorRole: enums.UserRoleStudent, ContentID: contentID}); err != nil {
		t.Fatalf("borrow failed: %v", err)
	}
	if got := repo.reservations[reservation.ID].Status; got != enums.ReservationStatusFulfilled {
		t.Fatalf("expected fulfilled reservation got %s", got)
	}
}

func TestReturnForbiddenForOtherStudents(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &recordingOutbox{})
	contentID := seedContent(repo, enums.ContentStatusAvailable)
	alice := uuid.New()

	record, err := svc.Borrow(context.Background(), BorrowInput{ActorID: alice, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	_, err = svc.Return(context.Background(), ReturnInput{ActorID: uuid.New(), ActorRole: enums.UserRoleStudent, BorrowID: record.ID})
	assertCode(t, err, pkgerrors.CodeForbidden)

	// Staff can return on behalf of the borrower.
	if _, err := svc.Return(context.Background(), ReturnInput{ActorID: uuid.New(), ActorRole: enums.UserRoleLibrarian, BorrowID: record.ID}); err != nil {
		t.Fatalf("librarian return failed: %v", err)
	}
	if repo.content[contentID].Status != enums.ContentStatusAvailable {
		t.Fatalf("expected available got %s", repo.content[contentID].Status)
	}
}

func TestReturnAlreadyReturned(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &recordingOutbox{})
	contentID := seedContent(repo, enums.ContentStatusAvailable)
	alice := uuid.New()

	record, err := svc.Borrow(context.Background(), BorrowInput{ActorID: alice, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}
	if _, err := svc.Return(context.Background(), ReturnInput{ActorID: alice, ActorRole: enums.UserRoleStudent, BorrowID: record.ID}); err != nil {
		t.Fatalf("return failed: %v", err)
	}

	_, err = svc.Return(context.Background(), ReturnInput{ActorID: alice, ActorRole: enums.UserRoleStudent, BorrowID: record.ID})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestReturnPromotesPendingReservation(t *testing.T) {
	repo := newFakeRepo()
	sink := &recordingOutbox{}
	svc := newTestService(t, repo, sink)
	contentID := seedContent(repo, enums.ContentStatusAvailable)
	alice := uuid.New()
	bob := uuid.New()

	record, err := svc.Borrow(context.Background(), BorrowInput{ActorID: alice, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}
	reservation, err := svc.Reserve(context.Background(), ReserveInput{ActorID: bob, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	if _, err := svc.Return(context.Background(), ReturnInput{ActorID: alice, ActorRole: enums.UserRoleStudent, BorrowID: record.ID}); err != nil {
		t.Fatalf("return failed: %v", err)
	}

	if repo.content[contentID].Status != enums.ContentStatusReserved {
		t.Fatalf("expected reserved got %s", repo.content[contentID].Status)
	}
	if got := repo.reservations[reservation.ID].Status; got != enums.ReservationStatusPending {
		t.Fatalf("promotion must keep the reservation pending, got %s", got)
	}

	last := sink.events[len(sink.events)-1]
	if last.EventType != enums.EventReservationReady {
		t.Fatalf("expected reservation_ready as final event, got %v", sink.types())
	}
}

func TestReturnPromotesWaitlistHead(t *testing.T) {
	repo := newFakeRepo()
	sink := &recordingOutbox{}
	svc := newTestService(t, repo, sink)
	contentID := seedContent(repo, enums.ContentStatusAvailable)
	alice := uuid.New()
	bob := uuid.New()
	dana := uuid.New()

	record, err := svc.Borrow(context.Background(), BorrowInput{ActorID: alice, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}
	bobEntry, err := svc.JoinWaitlist(context.Background(), JoinWaitlistInput{ActorID: bob, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("join waitlist failed: %v", err)
	}
	danaEntry, err := svc.JoinWaitlist(context.Background(), JoinWaitlistInput{ActorID: dana, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("join waitlist failed: %v", err)
	}
	if bobEntry.Position != 1 || danaEntry.Position != 2 {
		t.Fatalf("expected positions 1 and 2, got %d and %d", bobEntry.Position, danaEntry.Position)
	}

	if _, err := svc.Return(context.Background(), ReturnInput{ActorID: alice, ActorRole: enums.UserRoleStudent, BorrowID: record.ID}); err != nil {
		t.Fatalf("return failed: %v", err)
	}

	if got := repo.waitlist[bobEntry.ID].Status; got != enums.WaitlistStatusNotified {
		t.Fatalf("expected head notified got %s", got)
	}
	if got := repo.waitlist[danaEntry.ID].Position; got != 1 {
		t.Fatalf("expected remaining position 1 got %d", got)
	}
	if repo.content[contentID].Status != enums.ContentStatusReserved {
		t.Fatalf("expected reserved got %s", repo.content[contentID].Status)
	}

	promoted, err := repo.FindPendingReservation(context.Background(), bob, contentID)
	if err != nil {
		t.Fatalf("expected promoted reservation for head: %v", err)
	}
	if promoted.Status != enums.ReservationStatusPending {
		t.Fatalf("expected pending promoted reservation got %s", promoted.Status)
	}

	last := sink.events[len(sink.events)-1]
	if last.EventType != enums.EventWaitlistPromoted {
		t.Fatalf("expected waitlist_promoted as final event, got %v", sink.types())
	}
}

func TestReserveDuplicate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &recordingOutbox{})
	contentID := seedContent(repo, enums.ContentStatusBorrowed)
	userID := uuid.New()

	if _, err := svc.Reserve(context.Background(), ReserveInput{ActorID: userID, ActorRole: enums.UserRoleStudent, ContentID: contentID}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	_, err := svc.Reserve(context.Background(), ReserveInput{ActorID: userID, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestJoinWaitlistDuplicate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &recordingOutbox{})
	contentID := seedContent(repo, enums.ContentStatusBorrowed)
	userID := uuid.New()

	if _, err := svc.JoinWaitlist(context.Background(), JoinWaitlistInput{ActorID: userID, ActorRole: enums.UserRoleStudent, ContentID: contentID}); err != nil {
		t.Fatalf("join waitlist failed: %v", err)
	}
	_, err := svc.JoinWaitlist(context.Background(), JoinWaitlistInput{ActorID: userID, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestQueryAvailabilityAfterBorrow(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &recordingOutbox{})
	contentID := seedContent(repo, enums.ContentStatusAvailable)
	alice := uuid.New()
	bob := uuid.New()

	record, err := svc.Borrow(context.Background(), BorrowInput{ActorID: alice, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}
	if _, err := svc.JoinWaitlist(context.Background(), JoinWaitlistInput{ActorID: bob, ActorRole: enums.UserRoleStudent, ContentID: contentID}); err != nil {
		t.Fatalf("join waitlist failed: %v", err)
	}

	view, err := svc.QueryAvailability(context.Background(), contentID, &alice)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if view.Status != enums.ContentStatusBorrowed || !view.UserHasBorrowed {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.BorrowID == nil || *view.BorrowID != record.ID {
		t.Fatalf("expected borrow id %s got %v", record.ID, view.BorrowID)
	}
	if view.WaitlistCount != 1 {
		t.Fatalf("expected waitlist count 1 got %d", view.WaitlistCount)
	}

	bobView, err := svc.QueryAvailability(context.Background(), contentID, &bob)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if bobView.UserHasBorrowed {
		t.Fatal("bob has not borrowed")
	}
	if bobView.WaitlistPosition == nil || *bobView.WaitlistPosition != 1 {
		t.Fatalf("expected position 1 got %v", bobView.WaitlistPosition)
	}
}

func TestListBorrowedScopesNonStaff(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, &recordingOutbox{})
	alice := uuid.New()
	bob := uuid.New()
	for _, userID := range []uuid.UUID{alice, bob} {
		contentID := seedContent(repo, enums.ContentStatusAvailable)
		if _, err := svc.Borrow(context.Background(), BorrowInput{ActorID: userID, ActorRole: enums.UserRoleStudent, ContentID: contentID}); err != nil {
			t.Fatalf("borrow failed: %v", err)
		}
	}

	own, err := svc.ListBorrowed(context.Background(), ListBorrowedInput{ActorID: alice, ActorRole: enums.UserRoleStudent})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(own.Records) != 1 || own.Records[0].UserID != alice {
		t.Fatalf("expected only alice's records, got %+v", own.Records)
	}

	all, err := svc.ListBorrowed(context.Background(), ListBorrowedInput{ActorID: uuid.New(), ActorRole: enums.UserRoleLibrarian})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all.Records) != 2 {
		t.Fatalf("staff should see both records, got %d", len(all.Records))
	}
}

func TestExpireReservationPromotesNext(t *testing.T) {
	repo := newFakeRepo()
	sink := &recordingOutbox{}
	svc := newTestService(t, repo, sink)
	contentID := seedContent(repo, enums.ContentStatusAvailable)
	bob := uuid.New()
	dana := uuid.New()

	reservation, err := svc.Reserve(context.Background(), ReserveInput{ActorID: bob, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if _, err := svc.JoinWaitlist(context.Background(), JoinWaitlistInput{ActorID: dana, ActorRole: enums.UserRoleStudent, ContentID: contentID}); err != nil {
		t.Fatalf("join waitlist failed: %v", err)
	}

	if err := svc.ExpireReservation(context.Background(), reservation.ID); err != nil {
		t.Fatalf("expire failed: %v", err)
	}

	if got := repo.reservations[reservation.ID].Status; got != enums.ReservationStatusExpired {
		t.Fatalf("expected expired got %s", got)
	}
	promoted, err := repo.FindPendingReservation(context.Background(), dana, contentID)
	if err != nil {
		t.Fatalf("expected promoted reservation: %v", err)
	}
	if promoted.UserID != dana {
		t.Fatalf("promoted the wrong user: %s", promoted.UserID)
	}
	if repo.content[contentID].Status != enums.ContentStatusReserved {
		t.Fatalf("expected reserved got %s", repo.content[contentID].Status)
	}

	// A second sweep pass over the same id is a no-op.
	if err := svc.ExpireReservation(context.Background(), reservation.ID); err != nil {
		t.Fatalf("second expire should be a no-op: %v", err)
	}
}

func TestExpireReservationKeepsArchivedState(t *testing.T) {
	repo := newFakeRepo()
	sink := &recordingOutbox{}
	svc := newTestService(t, repo, sink)
	contentID := seedContent(repo, enums.ContentStatusAvailable)
	bob := uuid.New()
	dana := uuid.New()

	reservation, err := svc.Reserve(context.Background(), ReserveInput{ActorID: bob, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if _, err := svc.JoinWaitlist(context.Background(), JoinWaitlistInput{ActorID: dana, ActorRole: enums.UserRoleStudent, ContentID: contentID}); err != nil {
		t.Fatalf("join waitlist failed: %v", err)
	}

	// Admin archives the item while the reservation is outstanding.
	repo.content[contentID].Status = enums.ContentStatusArchived

	if err := svc.ExpireReservation(context.Background(), reservation.ID); err != nil {
		t.Fatalf("expire failed: %v", err)
	}

	if got := repo.reservations[reservation.ID].Status; got != enums.ReservationStatusExpired {
		t.Fatalf("expected expired got %s", got)
	}
	if got := repo.content[contentID].Status; got != enums.ContentStatusArchived {
		t.Fatalf("sweep must not lift archive state, got %s", got)
	}
	if _, err := repo.FindPendingReservation(context.Background(), dana, contentID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("no one should be promoted onto an archived item: %v", err)
	}
}

func TestReturnKeepsArchivedState(t *testing.T) {
	repo := newFakeRepo()
	sink := &recordingOutbox{}
	svc := newTestService(t, repo, sink)
	contentID := seedContent(repo, enums.ContentStatusAvailable)
	alice := uuid.New()

	record, err := svc.Borrow(context.Background(), BorrowInput{ActorID: alice, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	// Item is pulled from circulation while the copy is still out.
	repo.content[contentID].Status = enums.ContentStatusArchived

	if _, err := svc.Return(context.Background(), ReturnInput{ActorID: alice, ActorRole: enums.UserRoleStudent, BorrowID: record.ID}); err != nil {
		t.Fatalf("return failed: %v", err)
	}

	if got := repo.borrows[record.ID].Status; got != enums.BorrowStatusReturned {
		t.Fatalf("expected returned got %s", got)
	}
	if got := repo.content[contentID].Status; got != enums.ContentStatusArchived {
		t.Fatalf("return must not lift archive state, got %s", got)
	}
}

func TestMarkBorrowOverdue(t *testing.T) {
	repo := newFakeRepo()
	sink := &recordingOutbox{}
	svc := newTestService(t, repo, sink).(*service)
	contentID := seedContent(repo, enums.ContentStatusAvailable)
	alice := uuid.New()

	record, err := svc.Borrow(context.Background(), BorrowInput{ActorID: alice, ActorRole: enums.UserRoleStudent, ContentID: contentID})
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}

	// Not yet due: no transition.
	if err := svc.MarkBorrowOverdue(context.Background(), record.ID); err != nil {
		t.Fatalf("mark overdue failed: %v", err)
	}
	if got := repo.borrows[record.ID].Status; got != enums.BorrowStatusBorrowed {
		t.Fatalf("early sweep must not transition, got %s", got)
	}

	svc.now = func() time.Time { return record.DueDate.Add(72 * time.Hour) }
	if err := svc.MarkBorrowOverdue(context.Background(), record.ID); err != nil {
		t.Fatalf("mark overdue failed: %v", err)
	}
	if got := repo.borrows[record.ID].Status; got != enums.BorrowStatusOverdue {
		t.Fatalf("expected overdue got %s", got)
	}
	if repo.content[contentID].Status != enums.ContentStatusBorrowed {
		t.Fatalf("overdue copy is still out, got %s", repo.content[contentID].Status)
	}

	last := sink.events[len(sink.events)-1]
	if last.EventType != enums.EventBorrowOverdue {
		t.Fatalf("expected borrow_overdue event, got %v", sink.types())
	}
}
