package externalapi

import (
	"context"
	"testing"

	"github.com/medtrack/medication-api/cache"
	"github.com/medtrack/medication-api/entities"
)

type countingOpenFDA struct {
	searchCalls int
	labelCalls  int
	pairCalls   int

	label *FDADrugResult
}

func (m *countingOpenFDA) SearchDrugs(ctx context.Context, term string, limit int) (*FDADrugResponse, error) {
	m.searchCalls++
	return &FDADrugResponse{}, nil
}

func (m *countingOpenFDA) SearchByRxCui(ctx context.Context, rxCui string) (*FDADrugResponse, error) {
	return &FDADrugResponse{}, nil
}

func (m *countingOpenFDA) GetDrugLabel(ctx context.Context, ndc string) (*FDADrugResult, error) {
	m.labelCalls++
	return m.label, nil
}

func (m *countingOpenFDA) GetDrugInteractions(ctx context.Context, rxCui string) ([]entities.DrugInteraction, error) {
	return nil, nil
}

func (m *countingOpenFDA) GetDrugInteractionsByNames(ctx context.Context, name1, name2 string) ([]entities.DrugInteraction, error) {
	m.pairCalls++
	return []entities.DrugInteraction{}, nil
}

func TestCachedSearchDrugsLimitIsPartOfKey(t *testing.T) {
	inner := &countingOpenFDA{}
	svc := NewCachedOpenFDAService(inner, cache.New())
	ctx := context.Background()

	svc.SearchDrugs(ctx, "advil", 5)
	svc.SearchDrugs(ctx, "advil", 5)
	svc.SearchDrugs(ctx, "advil", 10)

	if inner.searchCalls != 2 {
		t.Errorf("Expected distinct limits to miss separately, got %d calls", inner.searchCalls)
	}
}

func TestCachedDrugLabelNilNotCached(t *testing.T) {
	inner := &countingOpenFDA{label: nil}
	svc := NewCachedOpenFDAService(inner, cache.New())
	ctx := context.Background()

	svc.GetDrugLabel(ctx, "0363-0160")
	svc.GetDrugLabel(ctx, "0363-0160")

	if inner.labelCalls != 2 {
		t.Errorf("Expected nil label to retry upstream, got %d calls", inner.labelCalls)
	}

	inner.label = &FDADrugResult{}
	svc.GetDrugLabel(ctx, "0363-0160")
	svc.GetDrugLabel(ctx, "0363-0160")

	if inner.labelCalls != 3 {
		t.Errorf("Expected non-nil label cached, got %d calls", inner.labelCalls)
	}
}

func TestCachedInteractionPairEmptyListCached(t *testing.T) {
	inner := &countingOpenFDA{}
	svc := NewCachedOpenFDAService(inner, cache.New())
	ctx := context.Background()

	svc.GetDrugInteractionsByNames(ctx, "Tylenol", "Advil")
	svc.GetDrugInteractionsByNames(ctx, "tylenol", "advil")

	if inner.pairCalls != 1 {
		t.Errorf("Expected normalized pair key to hit, got %d calls", inner.pairCalls)
	}
}
