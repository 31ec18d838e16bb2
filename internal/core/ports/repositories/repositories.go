package repositories

// RepositoryProvider aggregates the repository facades handed to the service layer.
type RepositoryProvider struct {
	OrganizationRepo OrganizationRepositoryFacade
	EntityRepo       EntityRepositoryFacade
	RelationshipRepo RelationshipRepositoryFacade
	TransactionRepo  TransactionRepositoryFacade
	SmartCodeRepo    SmartCodeRepositoryFacade
}
