package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/edaexpress/fooddelivery/cart/internal/cache"
	"github.com/edaexpress/fooddelivery/cart/internal/otel"
	"github.com/edaexpress/fooddelivery/cart/pkg/aggregate"
	"github.com/edaexpress/fooddelivery/cart/pkg/request"
	"github.com/edaexpress/fooddelivery/cart/pkg/response"
	"github.com/edaexpress/fooddelivery/delivery/pkg/pricing"
	"github.com/edaexpress/fooddelivery/internal/config"
	inErrors "github.com/edaexpress/fooddelivery/internal/errors"
	inHttp "github.com/edaexpress/fooddelivery/internal/http"
	"github.com/edaexpress/fooddelivery/internal/log"
	"github.com/edaexpress/fooddelivery/internal/repository"
)

type CartService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
	config  config.Delivery
}

func NewCartService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
	config config.Delivery,
) CartService {
	return CartService{pool: pool, queries: queries, cache: cache, config: config}
}

func (s CartService) FindCartByUserId(
	c context.Context,
	userID uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService FindCartByUserId")
	defer span.End()

	cacheKey := fmt.Sprintf(cache.KeyCartsByUserID, userID.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService FindCartByUserId").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart in cache").Logger()
	cached, err := s.cache.Get(c, cacheKey).Result()
	if err == nil {
		cart := response.Cart{}
		if err := json.Unmarshal([]byte(cached), &cart); err == nil {
			logger.Info().Msg("found cart in cache")
			return cart, nil
		}
		logger.Info().Msg("cached cart is malformed, falling back to database")
	} else if !errors.Is(err, redis.Nil) {
		logger.Info().Err(err).Msg("failed reading cart from cache, falling back to database")
	}

	logger = logger.With().Str(log.KeyProcess, "finding cart in database").Logger()
	logger.Info().Msg("finding cart in database")
	row, err := s.queries.FindCartByUserId(c, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info().Msg("no cart stored yet, returning an empty cart")
			return response.Cart{UserID: userID, CartItems: []response.CartItem{}}, nil
		}
		err = fmt.Errorf("failed finding cart by userId=%s with error=%w", userID.String(), err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	cart, err := row.Response()
	if err != nil {
		err = fmt.Errorf("failed mapping cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found cart in database")

	logger = logger.With().Str(log.KeyProcess, "caching cart").Logger()
	if encoded, err := json.Marshal(cart); err == nil {
		if err := s.cache.Set(c, cacheKey, encoded, cache.TTL).Err(); err != nil {
			logger.Info().Err(err).Msg("failed caching cart")
		}
	}
	return cart, nil
}

// AddItem adds one unit of the product to the user's cart, creating the cart
// when it does not exist yet. The max-products-per-order limit is enforced
// before anything is persisted.
func (s CartService) AddItem(
	c context.Context,
	userID uuid.UUID,
	param request.AddCartItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, param.ProductID).
		Logger()

	c = logger.WithContext(c)
	cart, err := s.loadAggregate(c, userID)
	if err != nil {
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "adding item").Logger()
	if err := cart.AddItem(param.ProductID, param.Name, param.Price); err != nil {
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg("rejected adding item")
		return response.Cart{}, err
	}
	logger.Info().Msg("added item")

	return s.persist(c, span, userID, cart)
}

// UpdateItemQuantity sets the quantity of a product. Zero and negative
// quantities remove the line, an unknown product id is a no-op.
func (s CartService) UpdateItemQuantity(
	c context.Context,
	userID uuid.UUID,
	productID string,
	quantity int32,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateItemQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateItemQuantity").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID).
		Int32(log.KeyQuantity, quantity).
		Logger()

	c = logger.WithContext(c)
	cart, err := s.loadAggregate(c, userID)
	if err != nil {
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating quantity").Logger()
	if err := cart.UpdateQuantity(productID, quantity); err != nil {
		inErrors.HandleError(err, span)
		logger.Info().Err(err).Msg("rejected updating quantity")
		return response.Cart{}, err
	}
	logger.Info().Msg("updated quantity")

	return s.persist(c, span, userID, cart)
}

func (s CartService) RemoveItem(
	c context.Context,
	userID uuid.UUID,
	productID string,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID).
		Logger()

	c = logger.WithContext(c)
	cart, err := s.loadAggregate(c, userID)
	if err != nil {
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "removing item").Logger()
	cart.RemoveItem(productID)
	logger.Info().Msg("removed item")

	return s.persist(c, span, userID, cart)
}

func (s CartService) RemoveCart(c context.Context, userID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService RemoveCart")
	defer span.End()

	cacheKey := fmt.Sprintf(cache.KeyCartsByUserID, userID.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveCart").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "deleting cart from database").Logger()
	logger.Info().Msg("deleting cart from database")
	if err := s.queries.DeleteCartByUserId(c, userID); err != nil {
		err = fmt.Errorf("failed deleting cart by userId=%s with error=%w", userID.String(), err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted cart from database")

	logger = logger.With().Str(log.KeyProcess, "deleting cart from cache").Logger()
	if err := s.cache.Del(c, cacheKey).Err(); err != nil {
		logger.Info().Err(err).Msg("failed deleting cart from cache")
	}
	return nil
}

// CheckoutCart prices the current cart contents. The delivery quote comes
// from the delivery service; the cart itself is left untouched so a failed
// payment can retry.
func (s CartService) CheckoutCart(
	c context.Context,
	userID uuid.UUID,
	param request.Checkout,
) (response.Checkout, error) {
	c, span := otel.Tracer.Start(c, "CartService CheckoutCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService CheckoutCart").
		Str(log.KeyUserID, userID.String()).
		Logger()

	c = logger.WithContext(c)
	cart, err := s.loadAggregate(c, userID)
	if err != nil {
		return response.Checkout{}, err
	}
	if cart.ItemCount() == 0 {
		inErrors.HandleError(inErrors.ErrNoItemsCheckout, span)
		logger.Info().Msg("cart is empty, nothing to checkout")
		return response.Checkout{}, inErrors.ErrNoItemsCheckout
	}

	subtotal := cart.Subtotal()
	logger = logger.With().Str(log.KeySubtotal, subtotal.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "fetching delivery quote").Logger()
	logger.Info().Msg("fetching delivery quote")
	quote, err := s.fetchQuote(c, subtotal.String(), param.DeliveryZone, param.Address)
	if err != nil {
		err = fmt.Errorf("failed fetching delivery quote with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	cart.SetQuote(&quote)
	logger.Info().Str(log.KeyQuote, quote.Cost.String()).Msg("fetched delivery quote")

	cartResponse, err := s.FindCartByUserId(c, userID)
	if err != nil {
		return response.Checkout{}, err
	}
	return response.Checkout{
		Cart:       cartResponse,
		Delivery:   quote,
		GrandTotal: cart.GrandTotal(&quote),
	}, nil
}

// loadAggregate rehydrates the in-memory cart from the database row and
// applies the delivery service's max-products-per-order limit.
func (s CartService) loadAggregate(
	c context.Context,
	userID uuid.UUID,
) (*aggregate.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService loadAggregate")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService loadAggregate").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart in database").Logger()
	items := []aggregate.Item{}
	row, err := s.queries.FindCartByUserId(c, userID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding cart by userId=%s with error=%w", userID.String(), err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if err == nil {
		cartDb, err := row.Response()
		if err != nil {
			err = fmt.Errorf("failed mapping cart with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		for _, item := range cartDb.CartItems {
			items = append(items, aggregate.Item{
				ID:        item.ProductID,
				Name:      item.Name,
				UnitPrice: item.Price,
				Quantity:  item.Quantity,
			})
		}
	}

	cart := aggregate.Rehydrate(items, true)
	cart.SetMaxItems(s.fetchMaxItems(c))
	return cart, nil
}

// persist replaces the stored cart contents with the aggregate's items in
// one transaction and refreshes the cache.
func (s CartService) persist(
	c context.Context,
	span trace.Span,
	userID uuid.UUID,
	cart *aggregate.Cart,
) (response.Cart, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService persist").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	defer func(lg zerolog.Logger) {
		l := lg.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		if err := tx.Rollback(c); err != nil {
			if errors.Is(err, pgx.ErrTxClosed) {
				return
			}
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			inErrors.HandleError(err, span)
			l.Error().Err(err).Msg(err.Error())
		}
	}(logger)

	logger = logger.With().Str(log.KeyProcess, "upserting cart").Logger()
	logger.Info().Msg("upserting cart")
	cartDb, err := s.queries.WithTx(tx).InsertCart(c, userID)
	if err != nil {
		err = fmt.Errorf("failed upserting cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cartDb.ID.String()).Logger()
	logger.Info().Msg("upserted cart")

	logger = logger.With().Str(log.KeyProcess, "replacing cart items").Logger()
	logger.Info().Msg("replacing cart items")
	if err := s.queries.WithTx(tx).DeleteCartItemsByCartId(c, cartDb.ID); err != nil {
		err = fmt.Errorf("failed deleting cart items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	items := cart.Items()
	args := make([]repository.InsertCartItemsParams, len(items))
	for i, item := range items {
		args[i] = repository.InsertCartItemsParams{
			ID:        uuid.New(),
			CartID:    cartDb.ID,
			ProductID: item.ID,
			Name:      item.Name,
			Price:     repository.NumericFromDecimal(item.UnitPrice),
			Quantity:  item.Quantity,
		}
	}
	insertedCount, err := s.queries.WithTx(tx).InsertCartItems(c, args)
	if err != nil {
		err = fmt.Errorf("failed inserting cart items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msgf("inserted %d cart items", insertedCount)

	logger = logger.With().Str(log.KeyProcess, "finding cart by userId").Logger()
	row, err := s.queries.WithTx(tx).FindCartByUserId(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding cart by userId=%s with error=%w", userID.String(), err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	cartResponse, err := row.Response()
	if err != nil {
		err = fmt.Errorf("failed mapping cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("committed transaction")

	cacheKey := fmt.Sprintf(cache.KeyCartsByUserID, userID.String())
	logger = logger.With().
		Str(log.KeyProcess, "caching cart").
		Str(log.KeyCacheKey, cacheKey).
		Logger()
	if encoded, err := json.Marshal(cartResponse); err == nil {
		if err := s.cache.Set(c, cacheKey, encoded, cache.TTL).Err(); err != nil {
			logger.Info().Err(err).Msg("failed caching cart")
		}
	}
	return cartResponse, nil
}

// fetchMaxItems asks the delivery service for the current
// max-products-per-order limit. Any failure falls back to the configured
// default so cart mutations never depend on the delivery service being up.
func (s CartService) fetchMaxItems(c context.Context) *int32 {
	c, span := otel.Tracer.Start(c, "CartService fetchMaxItems")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService fetchMaxItems").
		Logger()

	fallback := s.config.MaxProductsPerOrder

	req, err := http.NewRequestWithContext(c, http.MethodGet, inHttp.DeliveryBaseURL+"/settings", nil)
	if err != nil {
		logger.Info().Err(err).Msg("failed building settings request, using configured limit")
		return &fallback
	}
	req.Header.Add(inHttp.HeaderRequestID, log.RequestIDFromContext(c))
	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		logger.Info().Err(err).Msg("failed fetching settings, using configured limit")
		return &fallback
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Info().
			Int("statusCode", resp.StatusCode).
			Msg("delivery service returned no settings, using configured limit")
		return &fallback
	}

	body := struct {
		Data struct {
			Settings struct {
				MaxProductsPerOrder int32 `json:"max_products_per_order"`
			} `json:"settings"`
		} `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logger.Info().Err(err).Msg("failed decoding settings, using configured limit")
		return &fallback
	}
	if body.Data.Settings.MaxProductsPerOrder <= 0 {
		return &fallback
	}
	limit := body.Data.Settings.MaxProductsPerOrder
	return &limit
}

func (s CartService) fetchQuote(
	c context.Context,
	orderAmount, deliveryZone, address string,
) (pricing.Quote, error) {
	c, span := otel.Tracer.Start(c, "CartService fetchQuote")
	defer span.End()

	query := url.Values{}
	query.Set("order_amount", orderAmount)
	if deliveryZone != "" {
		query.Set("delivery_zone", deliveryZone)
	}
	if address != "" {
		query.Set("address", address)
	}
	req, err := http.NewRequestWithContext(
		c,
		http.MethodGet,
		inHttp.DeliveryBaseURL+"/calculate?"+query.Encode(),
		nil,
	)
	if err != nil {
		return pricing.Quote{}, err
	}
	req.Header.Add(inHttp.HeaderRequestID, log.RequestIDFromContext(c))
	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		return pricing.Quote{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return pricing.Quote{}, fmt.Errorf(
			"delivery service responded with statusCode=%d",
			resp.StatusCode,
		)
	}

	body := struct {
		Data struct {
			Quote pricing.Quote `json:"quote"`
		} `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return pricing.Quote{}, err
	}
	return body.Data.Quote, nil
}
