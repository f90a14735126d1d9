// Package mocks holds testify mocks of the repository interfaces for service
// and handler tests.
package mocks

import (
	"context"
	"time"

	"lifedrop/models"

	"github.com/stretchr/testify/mock"
)

type RequestRepo struct{ mock.Mock }

func (m *RequestRepo) Create(ctx context.Context, req *models.BloodRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *RequestRepo) GetByID(ctx context.Context, id string) (*models.BloodRequest, error) {
	args := m.Called(ctx, id)
	req, _ := args.Get(0).(*models.BloodRequest)
	return req, args.Error(1)
}

func (m *RequestRepo) UpdateStatus(ctx context.Context, id string, from, to models.RequestStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *RequestRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *RequestRepo) ListByRequester(ctx context.Context, requesterID string) ([]models.BloodRequest, error) {
	args := m.Called(ctx, requesterID)
	reqs, _ := args.Get(0).([]models.BloodRequest)
	return reqs, args.Error(1)
}

type DonorRepo struct{ mock.Mock }

func (m *DonorRepo) GetByID(ctx context.Context, id string) (*models.Donor, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*models.Donor)
	return d, args.Error(1)
}

func (m *DonorRepo) FindEligible(ctx context.Context, types []models.BloodType, cutoff time.Time) ([]models.Donor, error) {
	args := m.Called(ctx, types, cutoff)
	d, _ := args.Get(0).([]models.Donor)
	return d, args.Error(1)
}

func (m *DonorRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	return m.Called(ctx, id, available).Error(0)
}

func (m *DonorRepo) UpdateFCMToken(ctx context.Context, id, token string) error {
	return m.Called(ctx, id, token).Error(0)
}

func (m *DonorRepo) RecordDonation(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *DonorRepo) FindCooldownComplete(ctx context.Context, cutoff time.Time) ([]models.Donor, error) {
	args := m.Called(ctx, cutoff)
	d, _ := args.Get(0).([]models.Donor)
	return d, args.Error(1)
}

func (m *DonorRepo) MarkCooldownNotified(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *DonorRepo) Create(ctx context.Context, donor *models.Donor) error {
	return m.Called(ctx, donor).Error(0)
}

type AlertRepo struct{ mock.Mock }

func (m *AlertRepo) CreateIfAbsent(ctx context.Context, alert *models.Alert) (*models.Alert, bool, error) {
	args := m.Called(ctx, alert)
	a, _ := args.Get(0).(*models.Alert)
	return a, args.Bool(1), args.Error(2)
}

func (m *AlertRepo) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*models.Alert)
	return a, args.Error(1)
}

func (m *AlertRepo) UpdateStatus(ctx context.Context, id string, status models.AlertStatus, bagID string) error {
	return m.Called(ctx, id, status, bagID).Error(0)
}

func (m *AlertRepo) ListByDonor(ctx context.Context, donorID string) ([]models.Alert, error) {
	args := m.Called(ctx, donorID)
	a, _ := args.Get(0).([]models.Alert)
	return a, args.Error(1)
}

func (m *AlertRepo) CompleteByRequest(ctx context.Context, requestID string) error {
	return m.Called(ctx, requestID).Error(0)
}

type LedgerRepo struct{ mock.Mock }

func (m *LedgerRepo) LastBlock(ctx context.Context) (*models.LedgerBlock, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).(*models.LedgerBlock)
	return b, args.Error(1)
}

func (m *LedgerRepo) Append(ctx context.Context, block models.LedgerBlock) error {
	return m.Called(ctx, block).Error(0)
}

func (m *LedgerRepo) ByRequest(ctx context.Context, requestID string) ([]models.LedgerBlock, error) {
	args := m.Called(ctx, requestID)
	b, _ := args.Get(0).([]models.LedgerBlock)
	return b, args.Error(1)
}

func (m *LedgerRepo) All(ctx context.Context) ([]models.LedgerBlock, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]models.LedgerBlock)
	return b, args.Error(1)
}
