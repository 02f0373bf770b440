package health

import (
	"context"
	"errors"
	"testing"

	"github.com/medtrack/medication-api/entities"
	"github.com/medtrack/medication-api/externalapi"
)

type mockRxNorm struct {
	err   error
	calls int
}

func (m *mockRxNorm) SearchApproximate(ctx context.Context, term string) ([]externalapi.RxNormCandidate, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []externalapi.RxNormCandidate{{RxCui: "1191", Name: term}}, nil
}

func (m *mockRxNorm) GetRxCuiProperties(ctx context.Context, rxCui string) (*externalapi.RxNormProperties, error) {
	return nil, nil
}

func (m *mockRxNorm) GetActiveIngredients(ctx context.Context, rxCui string) ([]string, error) {
	return nil, nil
}

func (m *mockRxNorm) GetDrugClasses(ctx context.Context, rxCui string) ([]string, error) {
	return nil, nil
}

func (m *mockRxNorm) GetRelatedDrugs(ctx context.Context, rxCui, relationship string) ([]externalapi.RxNormConceptProperty, error) {
	return nil, nil
}

type mockOpenFDA struct {
	err   error
	calls int
}

func (m *mockOpenFDA) SearchDrugs(ctx context.Context, term string, limit int) (*externalapi.FDADrugResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &externalapi.FDADrugResponse{}, nil
}

func (m *mockOpenFDA) SearchByRxCui(ctx context.Context, rxCui string) (*externalapi.FDADrugResponse, error) {
	return nil, nil
}

func (m *mockOpenFDA) GetDrugLabel(ctx context.Context, ndc string) (*externalapi.FDADrugResult, error) {
	return nil, nil
}

func (m *mockOpenFDA) GetDrugInteractions(ctx context.Context, rxCui string) ([]entities.DrugInteraction, error) {
	return nil, nil
}

func (m *mockOpenFDA) GetDrugInteractionsByNames(ctx context.Context, name1, name2 string) ([]entities.DrugInteraction, error) {
	return nil, nil
}

func TestCheckAllBothHealthy(t *testing.T) {
	rxNorm := &mockRxNorm{}
	openFDA := &mockOpenFDA{}
	m := NewMonitor(rxNorm, openFDA)

	statuses := m.CheckAll(context.Background())
	if len(statuses) != 2 {
		t.Fatalf("Expected 2 statuses, got %d", len(statuses))
	}

	for name, status := range statuses {
		if !status.Healthy {
			t.Errorf("Expected %s healthy, got %+v", name, status)
		}
		if status.ConsecutiveFailures != 0 {
			t.Errorf("Expected no failures for %s, got %d", name, status.ConsecutiveFailures)
		}
		if status.LastChecked.IsZero() {
			t.Errorf("Expected %s LastChecked set", name)
		}
	}

	if !m.AllHealthy() {
		t.Error("Expected AllHealthy true")
	}
	if rxNorm.calls != 1 || openFDA.calls != 1 {
		t.Errorf("Expected one probe per API, got %d and %d", rxNorm.calls, openFDA.calls)
	}
}

func TestCheckAllBothFailing(t *testing.T) {
	m := NewMonitor(
		&mockRxNorm{err: errors.New("rxnorm timeout")},
		&mockOpenFDA{err: errors.New("openfda 500")},
	)

	statuses := m.CheckAll(context.Background())
	if len(statuses) != 2 {
		t.Fatalf("Expected 2 statuses, got %d", len(statuses))
	}
	for name, status := range statuses {
		if status.Healthy {
			t.Errorf("Expected %s unhealthy", name)
		}
		if status.ConsecutiveFailures != 1 {
			t.Errorf("Expected 1 consecutive failure for %s, got %d", name, status.ConsecutiveFailures)
		}
		if status.LastError == "" {
			t.Errorf("Expected %s LastError recorded", name)
		}
	}
	if m.AllHealthy() {
		t.Error("Expected AllHealthy false")
	}
}

func TestConsecutiveFailuresAccumulateAndReset(t *testing.T) {
	rxNorm := &mockRxNorm{err: errors.New("down")}
	m := NewMonitor(rxNorm, &mockOpenFDA{})

	m.CheckAll(context.Background())
	m.CheckAll(context.Background())

	status := m.Status(externalapi.RxNormAPIName)
	if status.ConsecutiveFailures != 2 {
		t.Fatalf("Expected 2 consecutive failures, got %d", status.ConsecutiveFailures)
	}

	// Recovery resets the counter and clears the error.
	rxNorm.err = nil
	m.CheckAll(context.Background())

	status = m.Status(externalapi.RxNormAPIName)
	if !status.Healthy {
		t.Error("Expected healthy after recovery")
	}
	if status.ConsecutiveFailures != 0 {
		t.Errorf("Expected failures reset, got %d", status.ConsecutiveFailures)
	}
	if status.LastError != "" {
		t.Errorf("Expected LastError cleared, got %q", status.LastError)
	}
}

func TestStatusUnknownAPI(t *testing.T) {
	m := NewMonitor(&mockRxNorm{}, &mockOpenFDA{})

	status := m.Status("NoSuchAPI")
	if status.Healthy {
		t.Error("Expected unknown API reported unhealthy")
	}
	if status.ApiName != "NoSuchAPI" {
		t.Errorf("Expected name echoed, got %q", status.ApiName)
	}
}

func TestAllHealthyBeforeFirstProbe(t *testing.T) {
	m := NewMonitor(&mockRxNorm{}, &mockOpenFDA{})

	// Statuses start unhealthy until the first successful probe.
	if m.AllHealthy() {
		t.Error("Expected AllHealthy false before any probe")
	}
}
