package repositories

import (
	"context"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
)

// SmartCodeRepositoryFacade reads the smart-code registry. The registry is data,
// not engine logic: it is loaded once and consulted by validators.
type SmartCodeRepositoryFacade interface {
	ListSmartCodeEntries(ctx context.Context) ([]domain.SmartCodeEntry, error)
	SaveSmartCodeEntry(ctx context.Context, entry domain.SmartCodeEntry) error
}
