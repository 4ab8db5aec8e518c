package distribution

// Names of the events emitted by the engine.
const (
	EventInitialized                       = "Initialized"
	EventSetRecipients                     = "SetRecipients"
	EventSetImmutableRecipients            = "SetImmutableRecipients"
	EventSetAutoNativeCurrencyDistribution = "SetAutoNativeCurrencyDistribution"
	EventSetMinAutoDistributionAmount      = "SetMinAutoDistributionAmount"
	EventDistributeNativeCurrency          = "DistributeNativeCurrency"
	EventDistributeToken                   = "DistributeToken"
	EventRoleGranted                       = "RoleGranted"
	EventRoleRevoked                       = "RoleRevoked"
)
