package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertCart = `-- name: InsertCart :one
insert into carts (user_id)
values ($1)
on conflict (user_id) do update set updated_at = now()
returning id, user_id, created_at, updated_at
`

func (q *Queries) InsertCart(ctx context.Context, userID uuid.UUID) (Cart, error) {
	row := q.db.QueryRow(ctx, insertCart, userID)
	var i Cart
	err := row.Scan(&i.ID, &i.UserID, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const findCartByUserId = `-- name: FindCartByUserId :one
select c.id,
       c.user_id,
       coalesce(
               jsonb_agg(
                       jsonb_build_object(
                               'id', ci.product_id,
                               'name', ci.name,
                               'price', ci.price,
                               'quantity', ci.quantity
                       ) order by ci.created_at
               ) filter (where ci.id is not null),
               '[]'::jsonb
       ) as cart_items,
       c.created_at,
       c.updated_at
from carts c
         left join cart_items ci on ci.cart_id = c.id
where c.user_id = $1
group by c.id
`

type FindCartByUserIdRow struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CartItems []byte
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

func (q *Queries) FindCartByUserId(
	ctx context.Context,
	userID uuid.UUID,
) (FindCartByUserIdRow, error) {
	row := q.db.QueryRow(ctx, findCartByUserId, userID)
	var i FindCartByUserIdRow
	err := row.Scan(&i.ID, &i.UserID, &i.CartItems, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const deleteCartItemsByCartId = `-- name: DeleteCartItemsByCartId :exec
delete
from cart_items
where cart_id = $1
`

func (q *Queries) DeleteCartItemsByCartId(ctx context.Context, cartID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteCartItemsByCartId, cartID)
	return err
}

const deleteCartByUserId = `-- name: DeleteCartByUserId :exec
delete
from carts
where user_id = $1
`

func (q *Queries) DeleteCartByUserId(ctx context.Context, userID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteCartByUserId, userID)
	return err
}

type InsertCartItemsParams struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID string
	Name      string
	Price     pgtype.Numeric
	Quantity  int32
}

func (q *Queries) InsertCartItems(
	ctx context.Context,
	arg []InsertCartItemsParams,
) (int64, error) {
	return q.db.CopyFrom(
		ctx,
		[]string{"cart_items"},
		[]string{"id", "cart_id", "product_id", "name", "price", "quantity"},
		&iteratorForInsertCartItems{rows: arg},
	)
}

type iteratorForInsertCartItems struct {
	rows                 []InsertCartItemsParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertCartItems) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertCartItems) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].ID,
		r.rows[0].CartID,
		r.rows[0].ProductID,
		r.rows[0].Name,
		r.rows[0].Price,
		r.rows[0].Quantity,
	}, nil
}

func (r iteratorForInsertCartItems) Err() error {
	return nil
}
