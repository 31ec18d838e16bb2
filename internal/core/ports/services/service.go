package services

// ServiceContainer aggregates the service facades handed to route registration.
type ServiceContainer struct {
	Organization OrganizationSvcFacade
	Entity       EntitySvcFacade
	Relationship RelationshipSvcFacade
	Transaction  TransactionSvcFacade
	SmartCode    SmartCodeSvcFacade
	Query        QuerySvcFacade
}
