package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lifedrop/database"
	ledgerRepo "lifedrop/database/repository/ledger"
	"lifedrop/database/repository/mocks"
	requestRepo "lifedrop/database/repository/request"
	"lifedrop/models"
	"lifedrop/services/ledger"
	"lifedrop/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 5, 10, 6, 30, 0, 0, time.UTC)

var (
	requester = Actor{Subject: "U1"}
	donorD1   = Actor{Subject: "D1"}
)

type recordingDispatcher struct {
	mu     sync.Mutex
	pushes []models.PushPayload
	err    error
}

func (d *recordingDispatcher) Enqueue(_ context.Context, p models.PushPayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pushes = append(d.pushes, p)
	return d.err
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

type fixture struct {
	svc      *DefaultLifecycleService
	requests *mocks.RequestRepo
	alerts   *mocks.AlertRepo
	donors   *mocks.DonorRepo
	ledger   *ledger.DefaultLedgerService
	dispatch *recordingDispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := ledgerRepo.NewMemLevelDBLedgerRepo()
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	f := &fixture{
		requests: new(mocks.RequestRepo),
		alerts:   new(mocks.AlertRepo),
		donors:   new(mocks.DonorRepo),
		ledger:   &ledger.DefaultLedgerService{Repo: repo, Logger: zap.NewNop(), Now: func() time.Time { return fixedNow }},
		dispatch: &recordingDispatcher{},
	}
	ids := []string{"R1", "N1", "N2"}
	f.svc = &DefaultLifecycleService{
		RequestRepo: f.requests,
		AlertRepo:   f.alerts,
		DonorRepo:   f.donors,
		Ledger:      f.ledger,
		Dispatcher:  f.dispatch,
		Logger:      zap.NewNop(),
		Now:         func() time.Time { return fixedNow },
		NewID: func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		},
	}
	return f
}

func (f *fixture) history(t *testing.T, requestID string) []models.LedgerBlock {
	t.Helper()
	blocks, err := f.ledger.GetHistory(context.Background(), requestID)
	require.NoError(t, err)
	return blocks
}

func validInput() models.CreateRequestInput {
	return models.CreateRequestInput{
		RequesterID:   "U1",
		PatientName:   "Ravi",
		ContactNumber: "9876543210",
		BloodGroup:    models.ONeg,
		Units:         2,
		Urgency:       5,
		Hospital:      "GH",
		Lat:           13.08,
		Lng:           80.27,
	}
}

func TestCreateRequest(t *testing.T) {
	f := newFixture(t)
	f.requests.On("Create", mock.Anything, mock.AnythingOfType("*models.BloodRequest")).Return(nil)

	req, err := f.svc.CreateRequest(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "R1", req.ID)
	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, fixedNow, req.Timestamp)

	blocks := f.history(t, "R1")
	require.Len(t, blocks, 1)
	assert.Equal(t, models.EventRequestInitialized, blocks[0].Event)
	assert.Equal(t, `{"group":"O-","hospital":"GH","patient":"Ravi"}`, blocks[0].Data)
	assert.Equal(t, models.GenesisHash, blocks[0].PreviousHash)
}

func TestCreateRequestValidation(t *testing.T) {
	cases := map[string]func(in *models.CreateRequestInput){
		"bad requester":  func(in *models.CreateRequestInput) { in.RequesterID = "u 1" },
		"no patient":     func(in *models.CreateRequestInput) { in.PatientName = "  " },
		"no contact":     func(in *models.CreateRequestInput) { in.ContactNumber = "" },
		"unknown group":  func(in *models.CreateRequestInput) { in.BloodGroup = "C+" },
		"zero units":     func(in *models.CreateRequestInput) { in.Units = 0 },
		"urgency high":   func(in *models.CreateRequestInput) { in.Urgency = 6 },
		"no hospital":    func(in *models.CreateRequestInput) { in.Hospital = "" },
		"lat off planet": func(in *models.CreateRequestInput) { in.Lat = 91 },
		"lng off planet": func(in *models.CreateRequestInput) { in.Lng = -181 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			in := validInput()
			mutate(&in)

			_, err := f.svc.CreateRequest(context.Background(), in)
			assert.True(t, utils.IsValidation(err), "got %v", err)
			f.requests.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Empty(t, f.history(t, "R1"))
		})
	}
}

func TestSendAlertIsIdempotent(t *testing.T) {
	f := newFixture(t)
	req := &models.BloodRequest{ID: "R1", RequesterID: "U1", PatientName: "Ravi", BloodGroup: models.ONeg, Hospital: "GH", Status: models.StatusPending}
	donor := &models.Donor{ID: "D1", FullName: "Asha", FCMToken: "tok-1"}
	stored := &models.Alert{ID: "N1", DonorID: "D1", RequestID: "R1", Status: models.AlertPending}

	f.requests.On("GetByID", mock.Anything, "R1").Return(req, nil)
	f.donors.On("GetByID", mock.Anything, "D1").Return(donor, nil)
	f.alerts.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*models.Alert")).Return(stored, true, nil).Once()
	f.alerts.On("CreateIfAbsent", mock.Anything, mock.AnythingOfType("*models.Alert")).Return(stored, false, nil).Once()

	alert, created, err := f.svc.SendAlert(context.Background(), requester, "R1", "D1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "N1", alert.ID)

	again, created, err := f.svc.SendAlert(context.Background(), requester, "R1", "D1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "N1", again.ID)

	require.Len(t, f.dispatch.pushes, 1)
	push := f.dispatch.pushes[0]
	assert.Equal(t, models.PushRequestAlert, push.Kind)
	assert.Equal(t, "tok-1", push.Token)
	assert.Equal(t, "Hero! Ravi needs O- blood at GH.", push.Body)
}

func TestSendAlertSurvivesQueueFailure(t *testing.T) {
	f := newFixture(t)
	f.dispatch.err = errors.New("redis down")
	f.requests.On("GetByID", mock.Anything, "R1").Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusPending}, nil)
	f.donors.On("GetByID", mock.Anything, "D1").Return(&models.Donor{ID: "D1", FCMToken: "tok"}, nil)
	f.alerts.On("CreateIfAbsent", mock.Anything, mock.Anything).
		Return(&models.Alert{ID: "N1", DonorID: "D1", RequestID: "R1", Status: models.AlertPending}, true, nil)

	_, created, err := f.svc.SendAlert(context.Background(), requester, "R1", "D1")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestSendAlertRejectsClosedRequest(t *testing.T) {
	f := newFixture(t)
	f.requests.On("GetByID", mock.Anything, "R1").Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusCompleted}, nil)

	_, _, err := f.svc.SendAlert(context.Background(), requester, "R1", "D1")
	assert.Equal(t, utils.CodeInvalidTransition, utils.ErrorCode(err))
}

func TestSendAlertUnknownDonor(t *testing.T) {
	f := newFixture(t)
	f.requests.On("GetByID", mock.Anything, "R1").Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusPending}, nil)
	f.donors.On("GetByID", mock.Anything, "D9").Return(nil, database.ErrNotFound)

	_, _, err := f.svc.SendAlert(context.Background(), requester, "R1", "D9")
	assert.True(t, utils.IsNotFound(err))
}

func TestRespond(t *testing.T) {
	cases := []struct {
		decision models.AlertStatus
		target   models.RequestStatus
		event    string
	}{
		{models.AlertAccepted, models.StatusAccepted, models.EventDonorAccepted},
		{models.AlertDeclined, models.StatusRejected, models.EventDonorDeclined},
	}
	for _, tc := range cases {
		t.Run(string(tc.decision), func(t *testing.T) {
			f := newFixture(t)
			f.alerts.On("GetByID", mock.Anything, "N1").
				Return(&models.Alert{ID: "N1", DonorID: "D1", RequestID: "R1", Status: models.AlertPending}, nil)
			f.requests.On("GetByID", mock.Anything, "R1").
				Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusPending}, nil)
			f.alerts.On("UpdateStatus", mock.Anything, "N1", tc.decision, "").Return(nil)
			f.requests.On("UpdateStatus", mock.Anything, "R1", models.StatusPending, tc.target).Return(nil)

			alert, err := f.svc.Respond(context.Background(), donorD1, "N1", tc.decision)
			require.NoError(t, err)
			assert.Equal(t, tc.decision, alert.Status)

			blocks := f.history(t, "R1")
			require.Len(t, blocks, 1)
			assert.Equal(t, tc.event, blocks[0].Event)
			assert.Equal(t, `{"donor_id":"D1","time":"2026-05-10T06:30:00.000Z"}`, blocks[0].Data)
			f.requests.AssertExpectations(t)
			f.alerts.AssertExpectations(t)
		})
	}
}

func TestRespondRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Respond(context.Background(), donorD1, "N1", models.AlertDonated)
	assert.True(t, utils.IsValidation(err))

	f.alerts.On("GetByID", mock.Anything, "N1").
		Return(&models.Alert{ID: "N1", DonorID: "D1", RequestID: "R1", Status: models.AlertAccepted}, nil)
	_, err = f.svc.Respond(context.Background(), donorD1, "N1", models.AlertDeclined)
	assert.Equal(t, utils.CodeInvalidTransition, utils.ErrorCode(err))
	assert.Empty(t, f.history(t, "R1"))
}

func TestRecordDonation(t *testing.T) {
	f := newFixture(t)
	f.alerts.On("GetByID", mock.Anything, "N1").
		Return(&models.Alert{ID: "N1", DonorID: "D1", RequestID: "R1", Status: models.AlertAccepted}, nil)
	f.requests.On("GetByID", mock.Anything, "R1").
		Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusAccepted}, nil)
	f.donors.On("GetByID", mock.Anything, "D1").Return(&models.Donor{ID: "D1", FullName: "Asha"}, nil)
	f.alerts.On("UpdateStatus", mock.Anything, "N1", models.AlertDonated, "BAG-7").Return(nil)
	f.donors.On("RecordDonation", mock.Anything, "D1", fixedNow).Return(nil)
	f.requests.On("UpdateStatus", mock.Anything, "R1", models.StatusAccepted, models.StatusOnTheWay).Return(nil)

	matches := &countingInvalidator{}
	f.svc.Matches = matches

	alert, err := f.svc.RecordDonation(context.Background(), donorD1, "N1", " BAG-7 ")
	require.NoError(t, err)
	assert.Equal(t, 1, matches.calls)
	assert.Equal(t, models.AlertDonated, alert.Status)
	assert.Equal(t, "BAG-7", alert.BloodBagID)

	blocks := f.history(t, "R1")
	require.Len(t, blocks, 1)
	assert.Equal(t, models.EventBagDispatched, blocks[0].Event)
	assert.Equal(t, `{"bag_id":"BAG-7","donor":"Asha"}`, blocks[0].Data)
	f.donors.AssertExpectations(t)
	f.requests.AssertExpectations(t)
}

func TestRecordDonationUnknownDonor(t *testing.T) {
	f := newFixture(t)
	f.alerts.On("GetByID", mock.Anything, "N1").
		Return(&models.Alert{ID: "N1", DonorID: "D1", RequestID: "R1", Status: models.AlertAccepted}, nil)
	f.requests.On("GetByID", mock.Anything, "R1").
		Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusAccepted}, nil)
	f.donors.On("GetByID", mock.Anything, "D1").Return(nil, database.ErrNotFound)
	f.alerts.On("UpdateStatus", mock.Anything, "N1", models.AlertDonated, "BAG-7").Return(nil)
	f.requests.On("UpdateStatus", mock.Anything, "R1", models.StatusAccepted, models.StatusOnTheWay).Return(nil)

	_, err := f.svc.RecordDonation(context.Background(), donorD1, "N1", "BAG-7")
	require.NoError(t, err)
	f.donors.AssertNotCalled(t, "RecordDonation", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, `{"bag_id":"BAG-7","donor":"Unknown"}`, f.history(t, "R1")[0].Data)
}

func TestRecordDonationNeedsAcceptedAlert(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RecordDonation(context.Background(), donorD1, "N1", "")
	assert.True(t, utils.IsValidation(err))

	f.alerts.On("GetByID", mock.Anything, "N1").
		Return(&models.Alert{ID: "N1", DonorID: "D1", RequestID: "R1", Status: models.AlertPending}, nil)
	_, err = f.svc.RecordDonation(context.Background(), donorD1, "N1", "BAG-7")
	assert.Equal(t, utils.CodeInvalidTransition, utils.ErrorCode(err))
}

func TestCompleteRequest(t *testing.T) {
	f := newFixture(t)
	f.requests.On("GetByID", mock.Anything, "R1").
		Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusOnTheWay}, nil)
	f.requests.On("UpdateStatus", mock.Anything, "R1", models.StatusOnTheWay, models.StatusCompleted).Return(nil)
	f.alerts.On("CompleteByRequest", mock.Anything, "R1").Return(nil)

	req, err := f.svc.CompleteRequest(context.Background(), requester, "R1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, req.Status)
	blocks := f.history(t, "R1")
	require.Len(t, blocks, 1)
	assert.Equal(t, models.EventRequestCompleted, blocks[0].Event)
	assert.Equal(t, `{"status":"Life Saved ✅"}`, blocks[0].Data)
	f.alerts.AssertExpectations(t)
}

func TestCompleteRequestFromPendingIsRejected(t *testing.T) {
	f := newFixture(t)
	f.requests.On("GetByID", mock.Anything, "R1").
		Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusPending}, nil)

	_, err := f.svc.CompleteRequest(context.Background(), requester, "R1")
	assert.Equal(t, utils.CodeInvalidTransition, utils.ErrorCode(err))
	assert.Empty(t, f.history(t, "R1"))
	f.requests.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLostStatusRaceIsATransitionError(t *testing.T) {
	f := newFixture(t)
	f.requests.On("GetByID", mock.Anything, "R1").
		Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusOnTheWay}, nil)
	f.requests.On("UpdateStatus", mock.Anything, "R1", models.StatusOnTheWay, models.StatusCompleted).
		Return(requestRepo.ErrStatusChanged)

	_, err := f.svc.CompleteRequest(context.Background(), requester, "R1")
	assert.Equal(t, utils.CodeInvalidTransition, utils.ErrorCode(err))
	assert.Empty(t, f.history(t, "R1"))
	f.alerts.AssertNotCalled(t, "CompleteByRequest", mock.Anything, mock.Anything)
}

func brokenLedger() *ledger.DefaultLedgerService {
	repo := new(mocks.LedgerRepo)
	repo.On("LastBlock", mock.Anything).Return(nil, errors.New("connection reset"))
	return &ledger.DefaultLedgerService{Repo: repo, Logger: zap.NewNop()}
}

func TestLedgerFailureReleasesRequest(t *testing.T) {
	f := newFixture(t)
	f.svc.Ledger = brokenLedger()

	f.requests.On("GetByID", mock.Anything, "R1").
		Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusOnTheWay}, nil)
	f.requests.On("UpdateStatus", mock.Anything, "R1", models.StatusOnTheWay, models.StatusCompleted).Return(nil).Once()
	f.requests.On("UpdateStatus", mock.Anything, "R1", models.StatusCompleted, models.StatusOnTheWay).Return(nil).Once()

	_, err := f.svc.CompleteRequest(context.Background(), requester, "R1")
	assert.True(t, utils.IsStoreUnavailable(err))
	f.requests.AssertExpectations(t)
	f.alerts.AssertNotCalled(t, "CompleteByRequest", mock.Anything, mock.Anything)
}

func TestLedgerFailureLeavesAlertAndDonorAlone(t *testing.T) {
	f := newFixture(t)
	f.svc.Ledger = brokenLedger()

	f.alerts.On("GetByID", mock.Anything, "N1").
		Return(&models.Alert{ID: "N1", DonorID: "D1", RequestID: "R1", Status: models.AlertAccepted}, nil)
	f.requests.On("GetByID", mock.Anything, "R1").
		Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusAccepted}, nil)
	f.donors.On("GetByID", mock.Anything, "D1").Return(&models.Donor{ID: "D1", FullName: "Asha"}, nil)
	f.requests.On("UpdateStatus", mock.Anything, "R1", models.StatusAccepted, models.StatusOnTheWay).Return(nil).Once()
	f.requests.On("UpdateStatus", mock.Anything, "R1", models.StatusOnTheWay, models.StatusAccepted).Return(nil).Once()

	_, err := f.svc.RecordDonation(context.Background(), donorD1, "N1", "BAG-7")
	assert.True(t, utils.IsStoreUnavailable(err))
	f.requests.AssertExpectations(t)
	f.alerts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.donors.AssertNotCalled(t, "RecordDonation", mock.Anything, mock.Anything, mock.Anything)
}

func TestRespondLosingRaceRecordsNothing(t *testing.T) {
	f := newFixture(t)
	f.alerts.On("GetByID", mock.Anything, "N2").
		Return(&models.Alert{ID: "N2", DonorID: "D1", RequestID: "R1", Status: models.AlertPending}, nil)
	f.requests.On("GetByID", mock.Anything, "R1").
		Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusPending}, nil)
	// Another donor accepted first.
	f.requests.On("UpdateStatus", mock.Anything, "R1", models.StatusPending, models.StatusAccepted).
		Return(requestRepo.ErrStatusChanged)

	_, err := f.svc.Respond(context.Background(), donorD1, "N2", models.AlertAccepted)
	assert.Equal(t, utils.CodeInvalidTransition, utils.ErrorCode(err))
	assert.Empty(t, f.history(t, "R1"))
	f.alerts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateRequestStoreFailureRecordsNothing(t *testing.T) {
	f := newFixture(t)
	f.requests.On("Create", mock.Anything, mock.Anything).Return(errors.New("write concern timeout"))

	_, err := f.svc.CreateRequest(context.Background(), validInput())
	assert.True(t, utils.IsStoreUnavailable(err))
	assert.Empty(t, f.history(t, "R1"))
}

func TestCreateRequestLedgerFailureRemovesRequest(t *testing.T) {
	f := newFixture(t)
	f.svc.Ledger = brokenLedger()
	f.requests.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.requests.On("Delete", mock.Anything, "R1").Return(nil)

	_, err := f.svc.CreateRequest(context.Background(), validInput())
	assert.True(t, utils.IsStoreUnavailable(err))
	f.requests.AssertCalled(t, "Delete", mock.Anything, "R1")
}

func TestActorsOnlyTouchTheirOwnRecords(t *testing.T) {
	f := newFixture(t)
	f.alerts.On("GetByID", mock.Anything, "N1").
		Return(&models.Alert{ID: "N1", DonorID: "D1", RequestID: "R1", Status: models.AlertAccepted}, nil)
	f.requests.On("GetByID", mock.Anything, "R1").
		Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusOnTheWay}, nil)
	ctx := context.Background()
	otherDonor := Actor{Subject: "D2"}
	otherRequester := Actor{Subject: "U2"}

	_, err := f.svc.Respond(ctx, otherDonor, "N1", models.AlertDeclined)
	assert.Equal(t, utils.CodeForbidden, utils.ErrorCode(err))
	_, err = f.svc.RecordDonation(ctx, otherDonor, "N1", "BAG-7")
	assert.Equal(t, utils.CodeForbidden, utils.ErrorCode(err))
	_, err = f.svc.CompleteRequest(ctx, otherRequester, "R1")
	assert.Equal(t, utils.CodeForbidden, utils.ErrorCode(err))
	_, err = f.svc.GetRequest(ctx, otherRequester, "R1")
	assert.Equal(t, utils.CodeForbidden, utils.ErrorCode(err))
	_, _, err = f.svc.SendAlert(ctx, otherRequester, "R1", "D1")
	assert.Equal(t, utils.CodeForbidden, utils.ErrorCode(err))
	_, err = f.svc.GetRequest(ctx, Actor{}, "R1")
	assert.Equal(t, utils.CodeForbidden, utils.ErrorCode(err))

	req, err := f.svc.GetRequest(ctx, Actor{Subject: "A1", Admin: true}, "R1")
	require.NoError(t, err)
	assert.Equal(t, "R1", req.ID)

	assert.Empty(t, f.history(t, "R1"))
	f.requests.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.alerts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.donors.AssertNotCalled(t, "RecordDonation", mock.Anything, mock.Anything, mock.Anything)
}

func TestFullLifecycleKeepsChainValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.requests.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.requests.On("UpdateStatus", mock.Anything, "R1", mock.Anything, mock.Anything).Return(nil)
	f.alerts.On("UpdateStatus", mock.Anything, "N1", mock.Anything, mock.Anything).Return(nil)
	f.alerts.On("CompleteByRequest", mock.Anything, "R1").Return(nil)
	f.donors.On("GetByID", mock.Anything, "D1").Return(&models.Donor{ID: "D1", FullName: "Asha"}, nil)
	f.donors.On("RecordDonation", mock.Anything, "D1", fixedNow).Return(nil)

	_, err := f.svc.CreateRequest(ctx, validInput())
	require.NoError(t, err)

	f.alerts.On("GetByID", mock.Anything, "N1").
		Return(&models.Alert{ID: "N1", DonorID: "D1", RequestID: "R1", Status: models.AlertPending}, nil).Once()
	f.requests.On("GetByID", mock.Anything, "R1").
		Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusPending}, nil).Once()
	_, err = f.svc.Respond(ctx, donorD1, "N1", models.AlertAccepted)
	require.NoError(t, err)

	f.alerts.On("GetByID", mock.Anything, "N1").
		Return(&models.Alert{ID: "N1", DonorID: "D1", RequestID: "R1", Status: models.AlertAccepted}, nil).Once()
	f.requests.On("GetByID", mock.Anything, "R1").
		Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusAccepted}, nil).Once()
	_, err = f.svc.RecordDonation(ctx, donorD1, "N1", "BAG-7")
	require.NoError(t, err)

	f.requests.On("GetByID", mock.Anything, "R1").
		Return(&models.BloodRequest{ID: "R1", RequesterID: "U1", Status: models.StatusOnTheWay}, nil).Once()
	_, err = f.svc.CompleteRequest(ctx, requester, "R1")
	require.NoError(t, err)

	blocks := f.history(t, "R1")
	require.Len(t, blocks, 4)
	events := make([]string, len(blocks))
	for i, b := range blocks {
		events[i] = b.Event
	}
	assert.Equal(t, []string{
		models.EventRequestInitialized,
		models.EventDonorAccepted,
		models.EventBagDispatched,
		models.EventRequestCompleted,
	}, events)

	report, err := f.ledger.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, int64(4), report.Blocks)
}

func TestListRequests(t *testing.T) {
	f := newFixture(t)
	f.requests.On("ListByRequester", mock.Anything, "U1").Return(nil, nil).Once()
	f.requests.On("ListByRequester", mock.Anything, "U2").Return(nil, errors.New("cursor killed"))

	reqs, err := f.svc.ListRequests(context.Background(), "U1")
	require.NoError(t, err)
	assert.NotNil(t, reqs)
	assert.Empty(t, reqs)

	_, err = f.svc.ListRequests(context.Background(), "U2")
	assert.True(t, utils.IsStoreUnavailable(err))
}
