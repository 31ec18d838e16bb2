package services

import (
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The organization service is the isolation guard every other service
	// authorizes through, so it comes first.
	container.Organization = NewOrganizationService(repos.OrganizationRepo)

	// The smart-code registry feeds behavior to the entity, relationship and
	// transaction services.
	container.SmartCode = NewSmartCodeService(repos.SmartCodeRepo)

	container.Entity = NewEntityService(
		repos.EntityRepo,
		repos.RelationshipRepo,
		container.SmartCode,
		container.Organization,
		cfg.MaxReadLimit,
	)
	container.Relationship = NewRelationshipService(
		repos.RelationshipRepo,
		repos.EntityRepo,
		container.SmartCode,
		container.Organization,
	)
	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		container.SmartCode,
		container.Organization,
		DuplicatePolicy{
			ExactConfidence: cfg.DupExactConfidence,
			NearConfidence:  cfg.DupNearConfidence,
			DateWindowDays:  cfg.DupDateWindowDays,
		},
		cfg.MaxReadLimit,
	)
	container.Query = NewQueryService(
		repos.EntityRepo,
		repos.RelationshipRepo,
		repos.TransactionRepo,
		container.SmartCode,
		container.Organization,
		cfg.MaxReadLimit,
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.OrganizationSvcFacade = (*organizationService)(nil)
	_ portssvc.EntitySvcFacade       = (*entityService)(nil)
	_ portssvc.RelationshipSvcFacade = (*relationshipService)(nil)
	_ portssvc.TransactionSvcFacade  = (*transactionService)(nil)
	_ portssvc.SmartCodeSvcFacade    = (*smartCodeService)(nil)
	_ portssvc.QuerySvcFacade        = (*queryService)(nil)
)
