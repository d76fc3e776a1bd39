package constants

const (
	AppCartService     = "cart-service"
	AppDeliveryService = "delivery-service"
	AppMain            = "main fooddelivery"
	AudienceCustomer   = "audience-customer"
)
