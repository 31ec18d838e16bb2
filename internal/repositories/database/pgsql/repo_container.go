package pgsql

import (
	portsrepo "github.com/herafoundry/hera_data_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	organizationRepo := newPgxOrganizationRepository(dbPool)
	entityRepo := newPgxEntityRepository(dbPool)
	relationshipRepo := newPgxRelationshipRepository(dbPool)
	transactionRepo := newPgxTransactionRepository(dbPool)
	smartCodeRepo := newPgxSmartCodeRepository(dbPool)

	return portsrepo.RepositoryProvider{
		OrganizationRepo: organizationRepo,
		EntityRepo:       entityRepo,
		RelationshipRepo: relationshipRepo,
		TransactionRepo:  transactionRepo,
		SmartCodeRepo:    smartCodeRepo,
	}
}
