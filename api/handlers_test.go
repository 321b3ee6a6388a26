package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"raffler/models"
	"raffler/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestServer() (*Server, *service.MockRaffleService, *service.MockLedgerService) {
	raffle := new(service.MockRaffleService)
	ledger := new(service.MockLedgerService)
	return NewServer(":0", raffle, ledger), raffle, ledger
}

func doRequest(t *testing.T, server *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	server, _, _ := newTestServer()

	rec := doRequest(t, server, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_GetRaffle(t *testing.T) {
	server, raffle, _ := newTestServer()

	state := &models.RaffleState{
		RoundNumber: 4,
		Phase:       models.RafflePhaseOpen,
		LastResetAt: time.Now(),
	}
	raffle.On("GetState", mock.Anything).Return(state, nil)
	raffle.On("EntrantCount", mock.Anything).Return(2, nil)
	raffle.On("EntranceFee").Return(int64(100))
	raffle.On("RoundInterval").Return(5 * time.Minute)
	raffle.On("OracleSpec").Return(models.RandomnessSpec{SubscriptionID: "sub-1"})

	rec := doRequest(t, server, http.MethodGet, "/raffle", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var body raffleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(4), body.RoundNumber)
	assert.Equal(t, models.RafflePhaseOpen, body.Phase)
	assert.Equal(t, int64(100), body.EntranceFee)
	assert.Equal(t, 2, body.EntrantCount)
}

func TestServer_Enter(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		server, raffle, _ := newTestServer()

		entrant := &models.Entrant{ID: 1, RoundNumber: 4, Position: 2, ParticipantID: "alice", AmountPaid: 100}
		raffle.On("Enter", mock.Anything, "alice", int64(100)).Return(entrant, nil)

		rec := doRequest(t, server, http.MethodPost, "/raffle/entries",
			`{"participant_id": "alice", "amount": 100}`)

		require.Equal(t, http.StatusCreated, rec.Code)

		var body models.Entrant
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Position)
	})

	t.Run("below fee", func(t *testing.T) {
		server, raffle, _ := newTestServer()

		raffle.On("Enter", mock.Anything, "alice", int64(50)).
			Return(nil, models.ErrInsufficientPayment)

		rec := doRequest(t, server, http.MethodPost, "/raffle/entries",
			`{"participant_id": "alice", "amount": 50}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("raffle closed", func(t *testing.T) {
		server, raffle, _ := newTestServer()

		raffle.On("Enter", mock.Anything, "alice", int64(100)).
			Return(nil, models.ErrNotOpen)

		rec := doRequest(t, server, http.MethodPost, "/raffle/entries",
			`{"participant_id": "alice", "amount": 100}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		server, _, _ := newTestServer()

		rec := doRequest(t, server, http.MethodPost, "/raffle/entries", "not json")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Trigger(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		server, raffle, _ := newTestServer()

		raffle.On("PerformDraw", mock.Anything).Return("req-1", nil)

		rec := doRequest(t, server, http.MethodPost, "/raffle/draws", "")

		require.Equal(t, http.StatusAccepted, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "req-1", body["request_id"])
	})

	t.Run("not eligible", func(t *testing.T) {
		server, raffle, _ := newTestServer()

		raffle.On("PerformDraw", mock.Anything).Return("", &models.TriggerNotEligibleError{
			Report: models.EligibilityReport{
				Phase:        models.RafflePhaseOpen,
				EntrantCount: 0,
			},
		})

		rec := doRequest(t, server, http.MethodPost, "/raffle/draws", "")

		require.Equal(t, http.StatusConflict, rec.Code)

		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotNil(t, body.Details)
	})
}

func TestServer_Eligibility(t *testing.T) {
	server, raffle, _ := newTestServer()

	raffle.On("CheckEligibility", mock.Anything).Return(&models.EligibilityReport{
		Eligible:     true,
		Phase:        models.RafflePhaseOpen,
		EntrantCount: 3,
		PoolBalance:  300,
	}, nil)

	rec := doRequest(t, server, http.MethodGet, "/raffle/eligibility", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var body models.EligibilityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Eligible)
	assert.Equal(t, 3, body.EntrantCount)
}

func TestServer_GetEntrant(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server, raffle, _ := newTestServer()

		entrant := &models.Entrant{ID: 7, RoundNumber: 4, Position: 1, ParticipantID: "bob"}
		raffle.On("GetEntrant", mock.Anything, 1).Return(entrant, nil)

		rec := doRequest(t, server, http.MethodGet, "/raffle/entrants/1", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("out of range", func(t *testing.T) {
		server, raffle, _ := newTestServer()

		raffle.On("GetEntrant", mock.Anything, 9).Return(nil, models.ErrIndexOutOfRange)

		rec := doRequest(t, server, http.MethodGet, "/raffle/entrants/9", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-integer index", func(t *testing.T) {
		server, _, _ := newTestServer()

		rec := doRequest(t, server, http.MethodGet, "/raffle/entrants/abc", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Accounts(t *testing.T) {
	t.Run("get account", func(t *testing.T) {
		server, _, ledger := newTestServer()

		ledger.On("GetAccount", mock.Anything, "alice").
			Return(&models.Account{ID: "alice", Balance: 500}, nil)

		rec := doRequest(t, server, http.MethodGet, "/accounts/alice", "")

		require.Equal(t, http.StatusOK, rec.Code)

		var body models.Account
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, int64(500), body.Balance)
	})

	t.Run("unknown account", func(t *testing.T) {
		server, _, ledger := newTestServer()

		ledger.On("GetAccount", mock.Anything, "ghost").
			Return(nil, models.ErrAccountNotFound)

		rec := doRequest(t, server, http.MethodGet, "/accounts/ghost", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("deposit", func(t *testing.T) {
		server, _, ledger := newTestServer()

		ledger.On("Deposit", mock.Anything, "alice", int64(200)).
			Return(&models.Account{ID: "alice", Balance: 700}, nil)

		rec := doRequest(t, server, http.MethodPost, "/accounts/alice/deposits",
			`{"amount": 200}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var body models.Account
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, int64(700), body.Balance)
	})
}
