package service

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/SagaParticipants/pkg/errors"
	"github.com/utafrali/SagaParticipants/pkg/saga"
	"github.com/utafrali/SagaParticipants/services/label/internal/config"
	"github.com/utafrali/SagaParticipants/services/label/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newParticipant(faults saga.FaultInjector) *Participant {
	return NewParticipant(&config.Config{ServiceName: "label-service"}, faults, testLogger())
}

func labelRequest(orderID string) saga.Request[domain.LabelRequest] {
	return saga.Request[domain.LabelRequest]{OrderID: orderID}
}

func TestExecute_GeneratesOnce(t *testing.T) {
	p := newParticipant(saga.NoFaults{})

	first, err := p.Execute(context.Background(), labelRequest("O1"))
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, saga.StatusCreated, first.Record.Status)

	second, err := p.Execute(context.Background(), labelRequest("O1"))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Record.LabelID, second.Record.LabelID)
}

func TestExecute_FailureIs503AndStoresNothing(t *testing.T) {
	p := newParticipant(saga.AlwaysFail{})

	_, err := p.Execute(context.Background(), labelRequest("O1"))

	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
	assert.True(t, apperrors.IsRetryable(err))
	assert.Equal(t, 0, p.Len())
}

func TestExecute_ReplayIsNotFaulted(t *testing.T) {
	faults := saga.NewFaultSequence(false, true)
	p := newParticipant(faults)

	first, err := p.Execute(context.Background(), labelRequest("O1"))
	require.NoError(t, err)
	second, err := p.Execute(context.Background(), labelRequest("O1"))
	require.NoError(t, err)

	assert.Equal(t, first.Record, second.Record)
	assert.Equal(t, 1, faults.Draws())
}

func TestCompensate(t *testing.T) {
	p := newParticipant(saga.NoFaults{})
	_, err := p.Execute(context.Background(), labelRequest("O1"))
	require.NoError(t, err)

	view, err := p.Compensate(context.Background(), "O1")
	require.NoError(t, err)
	assert.Equal(t, saga.Outcome{OrderID: "O1", Status: saga.StatusCompensated}, view)
	assert.Equal(t, 0, p.Len())

	again, err := p.Compensate(context.Background(), "O1")
	require.NoError(t, err)
	assert.Equal(t, saga.Outcome{OrderID: "O1", Status: saga.StatusNotFoundOrAlreadyCompensated}, again)
}

func TestCompensate_ThenRegenerates(t *testing.T) {
	p := newParticipant(saga.NoFaults{})
	first, err := p.Execute(context.Background(), labelRequest("O1"))
	require.NoError(t, err)
	_, err = p.Compensate(context.Background(), "O1")
	require.NoError(t, err)

	again, err := p.Execute(context.Background(), labelRequest("O1"))

	require.NoError(t, err)
	assert.True(t, again.Created)
	assert.NotEqual(t, first.Record.LabelID, again.Record.LabelID)
}
