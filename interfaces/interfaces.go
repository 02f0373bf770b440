// Package interfaces defines the core abstractions of the medication API
// to keep services testable and decoupled from storage and transport.
package interfaces

import (
	"context"
	"time"

	"github.com/medtrack/medication-api/entities"
	"github.com/medtrack/medication-api/externalapi"
)

// Repository is the generic persistence contract. Implementations operate on
// one entity type; predicates run against loaded rows, which is acceptable
// at personal-regimen scale.
type Repository[T any] interface {
	GetByID(ctx context.Context, id int64) (*T, error)
	GetAll(ctx context.Context) ([]T, error)
	Find(ctx context.Context, match func(*T) bool) ([]T, error)
	FindFirst(ctx context.Context, match func(*T) bool) (*T, error)
	Add(ctx context.Context, entity *T) (*T, error)
	Update(ctx context.Context, entity *T) (*T, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
	CountWhere(ctx context.Context, match func(*T) bool) (int, error)
}

// RxNormClient is the drug vocabulary lookup contract (RxNorm-shaped).
// Empty results are normal return values; only transport or protocol
// failures surface as errors.
type RxNormClient interface {
	SearchApproximate(ctx context.Context, term string) ([]externalapi.RxNormCandidate, error)
	GetRxCuiProperties(ctx context.Context, rxCui string) (*externalapi.RxNormProperties, error)
	GetActiveIngredients(ctx context.Context, rxCui string) ([]string, error)
	GetDrugClasses(ctx context.Context, rxCui string) ([]string, error)
	GetRelatedDrugs(ctx context.Context, rxCui, relationship string) ([]externalapi.RxNormConceptProperty, error)
}

// OpenFDAClient is the drug label and interaction contract (OpenFDA-shaped).
type OpenFDAClient interface {
	SearchDrugs(ctx context.Context, term string, limit int) (*externalapi.FDADrugResponse, error)
	SearchByRxCui(ctx context.Context, rxCui string) (*externalapi.FDADrugResponse, error)
	GetDrugLabel(ctx context.Context, ndc string) (*externalapi.FDADrugResult, error)
	GetDrugInteractions(ctx context.Context, rxCui string) ([]entities.DrugInteraction, error)
	GetDrugInteractionsByNames(ctx context.Context, name1, name2 string) ([]entities.DrugInteraction, error)
}

// HealthMonitor tracks rolling health state of the external APIs.
type HealthMonitor interface {
	CheckAll(ctx context.Context) map[string]ApiHealthStatus
	Status(apiName string) ApiHealthStatus
	AllHealthy() bool
}

// ApiHealthStatus is the process-lifetime health snapshot of one API.
type ApiHealthStatus struct {
	ApiName             string        `json:"api_name"`
	Healthy             bool          `json:"healthy"`
	LastChecked         time.Time     `json:"last_checked"`
	ResponseTime        time.Duration `json:"response_time"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	LastError           string        `json:"last_error,omitempty"`
}

// Scheduler manages background jobs (periodic API health probes).
type Scheduler interface {
	Start() error
	Stop()
}
