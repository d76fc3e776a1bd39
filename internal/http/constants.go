package http

const (
	HeaderContentType = "Content-Type"
	HeaderValueJson   = "application/json"
	HeaderRequestID   = "X-Request-Id"
)

const (
	DeliveryBaseURL = "http://delivery-service:8080/delivery"
	CartBaseURL     = "http://cart-service:8080/carts"
)
