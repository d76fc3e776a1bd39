package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyToken         = "token"
	KeyConfig        = "config"
	KeyUserID        = "userId"
	KeyCartID        = "cartId"
	KeyCart          = "cart"
	KeyCartItems     = "cartItems"
	KeyProductID     = "productId"
	KeyQuantity      = "quantity"
	KeyZoneID        = "zoneId"
	KeyZones         = "zones"
	KeySubtotal      = "subtotal"
	KeyQuote         = "quote"
	KeySettings      = "settings"
	KeyCacheKey      = "cacheKey"
	KeyDbURL         = "dbUrl"
	KeyPathValues    = "pathValues"
	KeyRequest       = "request"
	KeyRequestBody   = "requestBody"
	KeyRequestHost   = "host"
	KeyRequestIP     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyHeader        = "header"
	KeyBody          = "body"
)
